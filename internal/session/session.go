// Package session composes the two-step screening flow: handwriting then voice.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rbright/neuroscan/internal/fsm"
	"github.com/rbright/neuroscan/internal/ipc"
	"github.com/rbright/neuroscan/internal/pipeline"
	"github.com/rbright/neuroscan/internal/recorder"
	"github.com/rbright/neuroscan/internal/screening"
)

type action int

const (
	actionStop action = iota + 1
	actionCancel
)

// Step is the active screening step.
type Step string

const (
	StepHandwriting Step = "handwriting"
	StepVoice       Step = "voice"
)

// ParseStep validates a step name.
func ParseStep(raw string) (Step, error) {
	switch Step(strings.ToLower(strings.TrimSpace(raw))) {
	case StepHandwriting:
		return StepHandwriting, nil
	case StepVoice:
		return StepVoice, nil
	default:
		return "", fmt.Errorf("unknown step %q", raw)
	}
}

var (
	// ErrNoRecorder indicates recording was requested without a capture source.
	ErrNoRecorder = errors.New("voice recording is not available")
	// ErrHandwritingIncomplete blocks moving to voice before a handwriting result exists.
	ErrHandwritingIncomplete = errors.New("complete the handwriting analysis first")
)

// Indicator is the session-facing subset of indicator behavior.
type Indicator interface {
	ShowRecording(context.Context)
	ShowAnalyzing(context.Context, screening.Modality)
	ShowError(context.Context, string)
	CueStop(context.Context)
	CueComplete(context.Context)
	CueCancel(context.Context)
	Hide(context.Context)
}

// noopIndicator preserves session flow when no indicator is wired.
type noopIndicator struct{}

func (noopIndicator) ShowRecording(context.Context)                     {}
func (noopIndicator) ShowAnalyzing(context.Context, screening.Modality) {}
func (noopIndicator) ShowError(context.Context, string)                 {}
func (noopIndicator) CueStop(context.Context)                           {}
func (noopIndicator) CueComplete(context.Context)                       {}
func (noopIndicator) CueCancel(context.Context)                         {}
func (noopIndicator) Hide(context.Context)                              {}

// Result is the output of one RecordVoice lifecycle.
type Result struct {
	Recorder   fsm.RecorderState
	Input      string
	Elapsed    int
	Cancelled  bool
	Analyzed   bool
	Outcome    pipeline.Outcome
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// View is a render snapshot of the whole session.
type View struct {
	SessionID      string
	Step           Step
	Auth           screening.AuthContext
	Handwriting    pipeline.Outcome
	Voice          pipeline.Outcome
	Recorder       fsm.RecorderState
	Elapsed        int
	ProceedToVoice bool
}

// Controller owns one session: two pipelines, an optional recorder, and the step selector.
type Controller struct {
	id          string
	logger      *slog.Logger
	auth        screening.AuthContext
	handwriting *pipeline.Pipeline
	voice       *pipeline.Pipeline
	recorder    *recorder.Recorder
	indicator   Indicator

	mu        sync.RWMutex
	step      Step
	voiceHint string

	actions chan action
}

// NewController constructs a session at the handwriting step.
func NewController(
	auth screening.AuthContext,
	handwriting *pipeline.Pipeline,
	voice *pipeline.Pipeline,
	rec *recorder.Recorder,
	indicator Indicator,
	logger *slog.Logger,
) *Controller {
	if indicator == nil {
		indicator = noopIndicator{}
	}
	id := uuid.NewString()
	if logger != nil {
		logger = logger.With("session_id", id)
	}
	return &Controller{
		id:          id,
		logger:      logger,
		auth:        auth,
		handwriting: handwriting,
		voice:       voice,
		recorder:    rec,
		indicator:   indicator,
		step:        StepHandwriting,
		actions:     make(chan action, 1),
	}
}

// ID returns the session correlation id.
func (c *Controller) ID() string {
	return c.id
}

// Auth returns the identity this session was created with.
func (c *Controller) Auth() screening.AuthContext {
	return c.auth
}

// Step returns the active step.
func (c *Controller) Step() Step {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.step
}

// SwitchStep changes the active step; it never touches pipeline state.
func (c *Controller) SwitchStep(step Step) error {
	if step != StepHandwriting && step != StepVoice {
		return fmt.Errorf("unknown step %q", step)
	}
	c.mu.Lock()
	c.step = step
	c.mu.Unlock()
	return nil
}

// CanProceedToVoice reports whether the handwriting step has a result.
func (c *Controller) CanProceedToVoice() bool {
	return c.handwriting != nil && c.handwriting.State() == fsm.SubmissionDone
}

// ProceedToVoice moves to the voice step once handwriting is done.
func (c *Controller) ProceedToVoice() error {
	if !c.CanProceedToVoice() {
		return ErrHandwritingIncomplete
	}
	return c.SwitchStep(StepVoice)
}

// AnalyzeHandwriting submits a spiral image.
func (c *Controller) AnalyzeHandwriting(ctx context.Context, input *screening.CaptureInput) (screening.Classification, error) {
	return c.analyze(ctx, c.handwriting, input, "")
}

// SetVoiceHint sets the hint used when the handwriting step has no result.
func (c *Controller) SetVoiceHint(hint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voiceHint = strings.TrimSpace(hint)
}

// AnalyzeVoice submits a voice sample with the handwriting label as hint.
func (c *Controller) AnalyzeVoice(ctx context.Context, input *screening.CaptureInput) (screening.Classification, error) {
	c.mu.RLock()
	hint := c.voiceHint
	c.mu.RUnlock()
	if c.handwriting != nil {
		if label := c.handwriting.LastLabel(); label != "" {
			hint = label
		}
	}
	return c.analyze(ctx, c.voice, input, hint)
}

func (c *Controller) analyze(ctx context.Context, p *pipeline.Pipeline, input *screening.CaptureInput, hint string) (screening.Classification, error) {
	if p == nil {
		return screening.Classification{}, errors.New("pipeline is not configured")
	}

	c.indicator.ShowAnalyzing(ctx, p.Modality())
	result, err := p.Submit(ctx, input, hint)
	if err != nil {
		if !errors.Is(err, screening.ErrValidation) && !errors.Is(err, screening.ErrBusy) {
			c.indicator.ShowError(context.Background(), p.Snapshot().Error)
		}
		c.logWarn("analysis failed", "modality", string(p.Modality()), "error", err.Error())
		return result, err
	}
	c.indicator.CueComplete(context.Background())
	c.hide()
	return result, nil
}

// StartRecording begins a voice capture, dropping any previous recording and voice result.
func (c *Controller) StartRecording(ctx context.Context) error {
	if c.recorder == nil {
		return ErrNoRecorder
	}
	if c.voice != nil {
		if err := c.voice.Reset(); err != nil {
			return err
		}
	}
	if err := c.recorder.Start(ctx); err != nil {
		if errors.Is(err, screening.ErrPermission) {
			if c.voice != nil {
				c.voice.Fail(err, pipeline.MessageMicUnavailable)
			}
			c.indicator.ShowError(context.Background(), pipeline.MessageMicUnavailable)
		}
		c.logWarn("recording start failed", "error", err.Error())
		return err
	}

	c.indicator.ShowRecording(ctx)
	c.logInfo("recording started")
	return nil
}

// StopRecording ends the capture and selects the recording into the voice pipeline.
func (c *Controller) StopRecording() (screening.CaptureInput, error) {
	if c.recorder == nil {
		return screening.CaptureInput{}, ErrNoRecorder
	}
	input, err := c.recorder.Stop()
	c.indicator.CueStop(context.Background())
	if err != nil {
		c.logWarn("recording stop failed", "error", err.Error())
		return screening.CaptureInput{}, err
	}
	if c.voice != nil {
		if err := c.voice.Select(input); err != nil {
			return input, err
		}
	}
	c.logInfo("recording stopped", "input", input.Name, "bytes", input.Size(), "elapsed_s", c.recorder.Elapsed())
	return input, nil
}

// CancelRecording ends the capture and discards it.
func (c *Controller) CancelRecording() error {
	if c.recorder == nil {
		return ErrNoRecorder
	}
	err := c.recorder.Discard()
	c.indicator.CueCancel(context.Background())
	c.hide()
	if err != nil {
		return err
	}
	c.logInfo("recording cancelled")
	return nil
}

// RecordVoice records until an IPC stop/cancel or ctx cancellation, then analyzes a stopped recording.
func (c *Controller) RecordVoice(ctx context.Context) Result {
	result := Result{StartedAt: time.Now()}
	c.drainActions()

	finish := func() Result {
		if c.recorder != nil {
			result.Recorder = c.recorder.Status()
		}
		result.FinishedAt = time.Now()
		return result
	}

	if err := c.StartRecording(ctx); err != nil {
		result.Err = err
		return finish()
	}

	select {
	case <-ctx.Done():
		result.Elapsed = c.recorder.Elapsed()
		_ = c.CancelRecording()
		result.Cancelled = true
		result.Err = ctx.Err()
		return finish()
	case a := <-c.actions:
		switch a {
		case actionCancel:
			result.Elapsed = c.recorder.Elapsed()
			if err := c.CancelRecording(); err != nil {
				result.Err = err
			}
			result.Cancelled = true
			return finish()
		case actionStop:
			input, err := c.StopRecording()
			result.Elapsed = c.recorder.Elapsed()
			if err != nil {
				result.Err = err
				return finish()
			}
			result.Input = input.Name

			_, err = c.AnalyzeVoice(ctx, &input)
			result.Analyzed = true
			result.Outcome = c.voice.Snapshot()
			result.Err = err
			return finish()
		default:
			_ = c.CancelRecording()
			result.Err = fmt.Errorf("unknown action %d", a)
			return finish()
		}
	}
}

// Handle serves IPC commands for the active recording.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status":
		return ipc.Response{OK: true, State: string(c.recorderState()), Message: "status", Elapsed: c.elapsed()}
	case "stop":
		return c.request(actionStop, "stop")
	case "cancel":
		return c.request(actionCancel, "cancel")
	default:
		return ipc.Response{OK: false, State: string(c.recorderState()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

// request enqueues a recording action when the recorder is live.
func (c *Controller) request(a action, verb string) ipc.Response {
	state := c.recorderState()
	if state != fsm.RecorderRecording {
		return ipc.Response{OK: false, State: string(state), Error: fmt.Sprintf("cannot %s from state %s", verb, state)}
	}

	select {
	case c.actions <- a:
		return ipc.Response{OK: true, State: string(state), Message: verb + " requested", Elapsed: c.elapsed()}
	default:
		return ipc.Response{OK: true, State: string(state), Message: "action already requested", Elapsed: c.elapsed()}
	}
}

// View snapshots the session for rendering.
func (c *Controller) View() View {
	view := View{
		SessionID:      c.id,
		Step:           c.Step(),
		Auth:           c.auth,
		Recorder:       c.recorderState(),
		Elapsed:        c.elapsed(),
		ProceedToVoice: c.CanProceedToVoice(),
	}
	if c.handwriting != nil {
		view.Handwriting = c.handwriting.Snapshot()
	}
	if c.voice != nil {
		view.Voice = c.voice.Snapshot()
	}
	return view
}

// Close releases the recorder and waits for pending result saves.
func (c *Controller) Close() {
	if c.recorder != nil {
		c.recorder.Close()
	}
	if c.handwriting != nil {
		c.handwriting.Wait()
	}
	if c.voice != nil {
		c.voice.Wait()
	}
}

func (c *Controller) recorderState() fsm.RecorderState {
	if c.recorder == nil {
		return fsm.RecorderIdle
	}
	return c.recorder.Status()
}

func (c *Controller) elapsed() int {
	if c.recorder == nil {
		return 0
	}
	return c.recorder.Elapsed()
}

func (c *Controller) drainActions() {
	for {
		select {
		case <-c.actions:
		default:
			return
		}
	}
}

func (c *Controller) hide() {
	cleanupCtx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
	defer cancel()
	c.indicator.Hide(cleanupCtx)
}

func (c *Controller) logInfo(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Info(msg, args...)
}

func (c *Controller) logWarn(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, args...)
}
