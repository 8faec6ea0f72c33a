// Package pipeline runs the classify -> advise -> persist sequence for one modality.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/neuroscan/internal/advice"
	"github.com/rbright/neuroscan/internal/backend"
	"github.com/rbright/neuroscan/internal/fsm"
	"github.com/rbright/neuroscan/internal/screening"
)

const defaultSaveTimeout = 10 * time.Second

// Classifier labels one input for a modality. hint is the prior step's label, or empty.
type Classifier interface {
	Classify(ctx context.Context, modality screening.Modality, input screening.CaptureInput, hint string) (screening.Classification, error)
}

// Advisor turns a prompt into free-form advice text.
type Advisor interface {
	Advise(ctx context.Context, prompt string) (string, error)
}

// ResultSaver persists one classification.
type ResultSaver interface {
	SaveResult(ctx context.Context, req backend.SaveRequest) error
}

// Options wires a Pipeline's collaborators. Advisor and Saver are optional.
type Options struct {
	Modality    screening.Modality
	Classifier  Classifier
	Advisor     Advisor
	Saver       ResultSaver
	Auth        screening.AuthContext
	Logger      *slog.Logger
	SaveTimeout time.Duration
}

// Outcome is a point-in-time copy of pipeline state for rendering.
type Outcome struct {
	Modality    screening.Modality
	State       fsm.SubmissionState
	Input       string
	HasResult   bool
	Result      screening.Classification
	Percent     string
	Polarity    screening.Polarity
	HasAdvice   bool
	Advice      advice.Sections
	AdviceText  string
	Error       string
	AdviceError string
}

// Pipeline owns one modality's submission lifecycle.
type Pipeline struct {
	modality    screening.Modality
	classifier  Classifier
	advisor     Advisor
	saver       ResultSaver
	auth        screening.AuthContext
	logger      *slog.Logger
	saveTimeout time.Duration

	mu         sync.Mutex
	state      fsm.SubmissionState
	selected   *screening.CaptureInput
	result     *screening.Classification
	sections   *advice.Sections
	adviceText string
	err        error
	errMsg     string
	adviceErr  error

	persist sync.WaitGroup
}

// New constructs an empty pipeline.
func New(opts Options) *Pipeline {
	timeout := opts.SaveTimeout
	if timeout <= 0 {
		timeout = defaultSaveTimeout
	}
	return &Pipeline{
		modality:    opts.Modality,
		classifier:  opts.Classifier,
		advisor:     opts.Advisor,
		saver:       opts.Saver,
		auth:        opts.Auth,
		logger:      opts.Logger,
		saveTimeout: timeout,
		state:       fsm.SubmissionEmpty,
	}
}

// Modality returns the pipeline's modality.
func (p *Pipeline) Modality() screening.Modality {
	return p.modality
}

// State returns the current submission state.
func (p *Pipeline) State() fsm.SubmissionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Select records a newly chosen input and clears the previous result and error.
func (p *Pipeline) Select(input screening.CaptureInput) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.InFlight() {
		return fmt.Errorf("%w: %s analysis in progress", screening.ErrBusy, p.modality)
	}
	next, err := fsm.SubmissionTransition(p.state, fsm.SubmissionSelect)
	if err != nil {
		return err
	}
	p.clearLocked()
	p.selected = &input
	p.state = next
	return nil
}

// Selected returns the input chosen by Select, if any.
func (p *Pipeline) Selected() (screening.CaptureInput, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return screening.CaptureInput{}, false
	}
	return *p.selected, true
}

// Submit classifies input and, for handwriting with an advisor, generates advice.
//
// A nil input fails validation without a state change. A second Submit while
// one is in flight returns ErrBusy. An advice failure keeps the
// classification and surfaces only through Snapshot.
func (p *Pipeline) Submit(ctx context.Context, input *screening.CaptureInput, hint string) (screening.Classification, error) {
	if input == nil || input.Size() == 0 {
		return screening.Classification{}, fmt.Errorf("%w: %s", screening.ErrValidation, MissingInputMessage(p.modality))
	}
	if p.classifier == nil {
		return screening.Classification{}, errors.New("pipeline has no classifier")
	}

	p.mu.Lock()
	if p.state.InFlight() {
		p.mu.Unlock()
		return screening.Classification{}, fmt.Errorf("%w: %s analysis in progress", screening.ErrBusy, p.modality)
	}
	next, err := fsm.SubmissionTransition(p.state, fsm.SubmissionClassify)
	if err != nil {
		p.mu.Unlock()
		return screening.Classification{}, err
	}
	p.clearLocked()
	selected := *input
	p.selected = &selected
	p.state = next
	p.mu.Unlock()

	started := time.Now()
	p.logInfo("classify started", "input", input.Name, "bytes", input.Size(), "hint", hint)

	result, err := p.classifier.Classify(ctx, p.modality, selected, hint)
	if err != nil {
		if !errors.Is(err, screening.ErrNetwork) {
			err = fmt.Errorf("%w: %w", screening.ErrNetwork, err)
		}
		p.mu.Lock()
		p.state, _ = fsm.SubmissionTransition(p.state, fsm.SubmissionFail)
		p.err = err
		p.errMsg = FailureMessage(p.modality)
		p.mu.Unlock()
		p.logWarn("classify failed", "error", err.Error(), "duration_ms", time.Since(started).Milliseconds())
		return screening.Classification{}, err
	}

	result.Confidence = screening.ClampConfidence(result.Confidence)
	advise := p.advisor != nil && p.modality == screening.ModalityHandwriting

	p.mu.Lock()
	p.result = &result
	if advise {
		p.state, _ = fsm.SubmissionTransition(p.state, fsm.SubmissionAdvise)
	} else {
		p.state, _ = fsm.SubmissionTransition(p.state, fsm.SubmissionComplete)
	}
	p.mu.Unlock()

	p.logInfo("classify finished",
		"label", result.Label,
		"confidence", result.Percent(),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	p.saveAsync(ctx, result)

	if advise {
		p.runAdvice(ctx, result)
	}
	return result, nil
}

// runAdvice is stage two; failures leave the pipeline done with AdviceError set.
func (p *Pipeline) runAdvice(ctx context.Context, result screening.Classification) {
	started := time.Now()
	text, err := p.advisor.Advise(ctx, advice.BuildPrompt(result.Label, result.Percent()))

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state, _ = fsm.SubmissionTransition(p.state, fsm.SubmissionComplete)
	if err != nil {
		if !errors.Is(err, screening.ErrNetwork) {
			err = fmt.Errorf("%w: %w", screening.ErrNetwork, err)
		}
		p.adviceErr = err
		p.logWarn("advice failed", "error", err.Error(), "duration_ms", time.Since(started).Milliseconds())
		return
	}
	sections := advice.Parse(text)
	p.sections = &sections
	p.adviceText = text
	p.logInfo("advice finished", "empty", sections.Empty(), "duration_ms", time.Since(started).Milliseconds())
}

// saveAsync persists result in the background; failures are logged and never retried.
func (p *Pipeline) saveAsync(ctx context.Context, result screening.Classification) {
	if p.saver == nil {
		return
	}
	if p.auth.Anonymous() {
		p.logInfo("result not saved: no patient identity")
		return
	}

	req := backend.SaveRequest{
		PatientID:  p.auth.PatientID,
		Type:       p.modality.ResultType(),
		Result:     result.Label,
		Confidence: result.PersistedConfidence(),
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.saveTimeout)

	p.persist.Add(1)
	go func() {
		defer p.persist.Done()
		defer cancel()
		if err := p.saver.SaveResult(saveCtx, req); err != nil {
			p.logWarn("save result failed", "error", err.Error(), "type", req.Type)
			return
		}
		p.logInfo("result saved", "type", req.Type)
	}()
}

// Wait blocks until in-progress result saves finish.
func (p *Pipeline) Wait() {
	p.persist.Wait()
}

// LastLabel returns the label of the current classification, or empty.
//
// Selecting a new input or resubmitting clears it.
func (p *Pipeline) LastLabel() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result == nil {
		return ""
	}
	return p.result.Label
}

// Err returns the last classify-stage error.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// AdviceErr returns the last advice-stage error.
func (p *Pipeline) AdviceErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.adviceErr
}

// Fail records an error message produced outside Submit (e.g. microphone denial).
func (p *Pipeline) Fail(err error, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
	p.errMsg = message
}

// Reset clears the pipeline back to empty.
func (p *Pipeline) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.InFlight() {
		return fmt.Errorf("%w: %s analysis in progress", screening.ErrBusy, p.modality)
	}
	next, err := fsm.SubmissionTransition(p.state, fsm.SubmissionReset)
	if err != nil {
		return err
	}
	p.clearLocked()
	p.selected = nil
	p.state = next
	return nil
}

// Snapshot returns a copy of the current outcome.
func (p *Pipeline) Snapshot() Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := Outcome{
		Modality:   p.modality,
		State:      p.state,
		Error:      p.errMsg,
		AdviceText: p.adviceText,
	}
	if p.selected != nil {
		out.Input = p.selected.Name
	}
	if p.result != nil {
		out.HasResult = true
		out.Result = *p.result
		out.Percent = p.result.Percent()
		out.Polarity = p.result.Polarity(p.modality)
	}
	if p.sections != nil {
		out.HasAdvice = true
		out.Advice = *p.sections
	}
	if p.adviceErr != nil {
		out.AdviceError = MessageAdviceFailed
	}
	return out
}

func (p *Pipeline) clearLocked() {
	p.result = nil
	p.sections = nil
	p.adviceText = ""
	p.err = nil
	p.errMsg = ""
	p.adviceErr = nil
}

func (p *Pipeline) logInfo(msg string, args ...any) {
	if p.logger == nil {
		return
	}
	p.logger.Info(msg, append([]any{"modality", string(p.modality)}, args...)...)
}

func (p *Pipeline) logWarn(msg string, args ...any) {
	if p.logger == nil {
		return
	}
	p.logger.Warn(msg, append([]any{"modality", string(p.modality)}, args...)...)
}
