package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rbright/neuroscan/internal/advice"
	"github.com/rbright/neuroscan/internal/audio"
	"github.com/rbright/neuroscan/internal/cli"
	"github.com/rbright/neuroscan/internal/config"
	"github.com/rbright/neuroscan/internal/indicator"
	"github.com/rbright/neuroscan/internal/ipc"
	"github.com/rbright/neuroscan/internal/pipeline"
	"github.com/rbright/neuroscan/internal/recorder"
	"github.com/rbright/neuroscan/internal/render"
	"github.com/rbright/neuroscan/internal/screening"
	"github.com/rbright/neuroscan/internal/session"
)

// screeningRun holds the collaborators of one screening invocation.
type screeningRun struct {
	controller *session.Controller
	notifier   *indicator.Notifier
	progress   *progressLine
	auth       screening.AuthContext
}

func (s *screeningRun) close() {
	s.progress.finish()
	s.controller.Close()
	s.notifier.Wait()
}

// newScreeningRun wires backend, advisor, pipelines, recorder, and indicator into a session.
func (r Runner) newScreeningRun(ctx context.Context, cfg config.Config, parsed cli.Parsed, withRecorder bool, logger *slog.Logger) (*screeningRun, error) {
	auth, source, err := resolveAuth(parsed, cfg.Auth, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("identity resolved", "source", source, "role", string(auth.Role), "anonymous", auth.Anonymous())
	if auth.Role != "" && !auth.Is(screening.RolePatient) {
		r.warn("screening is intended for patients (current role: %s)", roleLabel(auth.Role))
	}
	if auth.Anonymous() {
		r.warn("no patient identity; results will not be saved")
	}

	client, err := newBackendClient(cfg.Backend)
	if err != nil {
		return nil, err
	}

	handwriting := pipeline.New(pipeline.Options{
		Modality:   screening.ModalityHandwriting,
		Classifier: client,
		Advisor:    r.newAdvisor(ctx, cfg.Advice, logger),
		Saver:      client,
		Auth:       auth,
		Logger:     logger,
	})
	voice := pipeline.New(pipeline.Options{
		Modality:   screening.ModalityVoice,
		Classifier: client,
		Saver:      client,
		Auth:       auth,
		Logger:     logger,
	})

	var (
		rec      *recorder.Recorder
		progress *progressLine
	)
	if withRecorder {
		rec = recorder.New(
			audio.Source{Input: cfg.Audio.Input, Fallback: cfg.Audio.Fallback, Logger: logger},
			recorder.Options{
				Tick:        time.Duration(cfg.Recorder.TickMS) * time.Millisecond,
				StopTimeout: time.Duration(cfg.Recorder.StopTimeoutMS) * time.Millisecond,
				DebugDump:   cfg.Debug.EnableAudioDump,
			},
			logger,
		)
		progress = newProgressLine(r.Stderr)
		rec.OnTick(progress.update)
	}

	notifier := indicator.NewNotifier(cfg.Indicator, logger)
	controller := session.NewController(auth, handwriting, voice, rec, notifier, logger)
	return &screeningRun{controller: controller, notifier: notifier, progress: progress, auth: auth}, nil
}

// newAdvisor returns nil when advice is disabled or unavailable.
func (r Runner) newAdvisor(ctx context.Context, cfg config.AdviceConfig, logger *slog.Logger) pipeline.Advisor {
	if !cfg.Enable {
		return nil
	}
	advisor, err := advice.NewGeminiAdvisor(ctx, advice.GeminiConfig{
		APIKey:  cfg.APIKey(),
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout(),
	}, logger)
	if err != nil {
		if !errors.Is(err, advice.ErrMissingAPIKey) {
			r.warn("advice unavailable: %v", err)
		}
		logger.Warn("advice disabled", "error", err.Error())
		return nil
	}
	return advisor
}

func (r Runner) commandImage(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	run, err := r.newScreeningRun(ctx, cfg, parsed, false, logger)
	if err != nil {
		return r.fail(logger, "screening setup failed", err)
	}
	defer run.close()

	if err := r.analyzeHandwriting(ctx, run, parsed.ImagePath); err != nil {
		return r.fail(logger, "handwriting analysis failed", err)
	}
	if view := run.controller.View(); view.ProceedToVoice {
		fmt.Fprint(r.Stdout, "\n"+render.NextStep(binaryName, view.Handwriting.Result.Label))
	}
	return 0
}

func (r Runner) commandVoice(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	run, err := r.newScreeningRun(ctx, cfg, parsed, parsed.VoicePath == "", logger)
	if err != nil {
		return r.fail(logger, "screening setup failed", err)
	}
	defer run.close()

	run.controller.SetVoiceHint(parsed.Hint)
	if err := run.controller.SwitchStep(session.StepVoice); err != nil {
		return r.fail(logger, "switch step failed", err)
	}
	return r.voiceStep(ctx, run, parsed.VoicePath, logger)
}

func (r Runner) commandScreen(ctx context.Context, cfg config.Config, parsed cli.Parsed, logger *slog.Logger) int {
	run, err := r.newScreeningRun(ctx, cfg, parsed, parsed.VoicePath == "", logger)
	if err != nil {
		return r.fail(logger, "screening setup failed", err)
	}
	defer run.close()

	if err := r.analyzeHandwriting(ctx, run, parsed.ImagePath); err != nil {
		return r.fail(logger, "handwriting analysis failed", err)
	}
	if err := run.controller.ProceedToVoice(); err != nil {
		return r.fail(logger, "proceed to voice failed", err)
	}
	fmt.Fprintln(r.Stdout)
	return r.voiceStep(ctx, run, parsed.VoicePath, logger)
}

func (r Runner) analyzeHandwriting(ctx context.Context, run *screeningRun, path string) error {
	input, err := screening.InputFromFile(path)
	if err != nil {
		return err
	}
	_, err = run.controller.AnalyzeHandwriting(ctx, &input)
	fmt.Fprint(r.Stdout, render.Outcome(run.controller.View().Handwriting))
	return err
}

// voiceStep analyzes the voice file at path, or records one when path is empty.
func (r Runner) voiceStep(ctx context.Context, run *screeningRun, path string, logger *slog.Logger) int {
	if path != "" {
		input, err := screening.InputFromFile(path)
		if err != nil {
			return r.fail(logger, "read voice sample failed", err)
		}
		_, err = run.controller.AnalyzeVoice(ctx, &input)
		fmt.Fprint(r.Stdout, render.Outcome(run.controller.View().Voice))
		if err != nil {
			return r.fail(logger, "voice analysis failed", err)
		}
		return 0
	}
	return r.recordVoice(ctx, run, logger)
}

// recordVoice owns the control socket while recording so stop/cancel can reach it.
func (r Runner) recordVoice(ctx context.Context, run *screeningRun, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		return r.fail(logger, "resolve socket failed", err)
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8, nil)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			return r.fail(logger, "recording already active", err)
		}
		return r.fail(logger, "acquire socket failed", err)
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, run.controller)
	}()

	fmt.Fprintf(r.Stderr, "recording voice sample; run `%s stop` to analyze or `%s cancel` to discard\n", binaryName, binaryName)
	result := run.controller.RecordVoice(ctx)
	run.progress.finish()
	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}

	logSessionResult(logger, run.controller.ID(), result)

	if result.Cancelled {
		fmt.Fprintf(r.Stdout, "cancelled after %s\n", render.Elapsed(result.Elapsed))
		return 0
	}
	if result.Analyzed {
		fmt.Fprintf(r.Stdout, "recorded %s\n", render.Elapsed(result.Elapsed))
		fmt.Fprint(r.Stdout, render.Outcome(result.Outcome))
	}
	if result.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		return 1
	}
	return 0
}

func logSessionResult(logger *slog.Logger, sessionID string, result session.Result) {
	if logger == nil {
		return
	}
	fields := []any{
		"session_id", sessionID,
		"recorder", string(result.Recorder),
		"cancelled", result.Cancelled,
		"analyzed", result.Analyzed,
		"started_at", result.StartedAt.Format(time.RFC3339Nano),
		"finished_at", result.FinishedAt.Format(time.RFC3339Nano),
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
		"elapsed_s", result.Elapsed,
		"input", result.Input,
		"label", result.Outcome.Result.Label,
	}

	if result.Err != nil {
		logger.Error("recording session failed", append(fields, "error", result.Err.Error())...)
		return
	}
	logger.Info("recording session complete", fields...)
}
