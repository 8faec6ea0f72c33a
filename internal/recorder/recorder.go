// Package recorder wraps a capture stream in an idle/recording/stopped state machine.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rbright/neuroscan/internal/fsm"
	"github.com/rbright/neuroscan/internal/screening"
)

const (
	defaultTick        = time.Second
	defaultStopTimeout = 2 * time.Second
)

// ErrNoCaptureSource indicates the recorder was built without a capture source.
var ErrNoCaptureSource = errors.New("no audio capture source configured")

// Options tunes recorder timing and debug output.
type Options struct {
	Tick        time.Duration
	StopTimeout time.Duration
	DebugDump   bool
	Now         func() time.Time
}

// Recorder owns at most one capture stream and its elapsed-seconds counter.
type Recorder struct {
	source CaptureSource
	opts   Options
	logger *slog.Logger

	mu          sync.Mutex
	state       fsm.RecorderState
	active      *activeCapture
	output      *screening.CaptureInput
	lastElapsed int64
	observers   []func(int)

	// starting is set while StartCapture awaits the device; epoch advances on Close.
	starting bool
	epoch    uint64
}

// activeCapture is the per-recording buffer, tick counter, and stop signals.
type activeCapture struct {
	handle CaptureHandle
	format Format

	mu     sync.Mutex
	chunks [][]byte
	bytes  int

	elapsed atomic.Int64

	ended    chan struct{}
	endOnce  sync.Once
	halted   chan struct{}
	haltOnce sync.Once
}

// New constructs an idle recorder.
func New(source CaptureSource, opts Options, logger *slog.Logger) *Recorder {
	if opts.Tick <= 0 {
		opts.Tick = defaultTick
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = defaultStopTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Recorder{
		source: source,
		opts:   opts,
		logger: logger,
		state:  fsm.RecorderIdle,
	}
}

// Status returns the current recorder state.
func (r *Recorder) Status() fsm.RecorderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Elapsed returns whole seconds counted by the tick during the latest recording.
func (r *Recorder) Elapsed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return int(r.active.elapsed.Load())
	}
	return int(r.lastElapsed)
}

// Output returns the blob produced by the last stop, if still pending.
func (r *Recorder) Output() (screening.CaptureInput, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.output == nil {
		return screening.CaptureInput{}, false
	}
	return *r.output, true
}

// OnTick registers an observer called with the elapsed seconds on every tick.
func (r *Recorder) OnTick(fn func(int)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Start opens a capture stream and begins counting elapsed seconds.
//
// Starting from stopped discards the pending output. Capture failures wrap
// screening.ErrPermission and leave the recorder idle. The lock is not held
// while the source opens the device, so status queries stay responsive.
func (r *Recorder) Start(ctx context.Context) error {
	next, epoch, err := r.claimStart()
	if err != nil {
		return err
	}

	handle, err := r.source.StartCapture(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.starting = false

	if err != nil {
		r.state = fsm.RecorderIdle
		return fmt.Errorf("%w: %w", screening.ErrPermission, err)
	}
	if r.epoch != epoch {
		_ = handle.Stop()
		return errors.New("recorder closed while starting")
	}

	sess := &activeCapture{
		handle: handle,
		format: handle.Format(),
		ended:  make(chan struct{}),
		halted: make(chan struct{}),
	}
	handle.OnChunk(sess.append)
	handle.OnStop(sess.end)

	r.active = sess
	r.state = next

	observers := make([]func(int), len(r.observers))
	copy(observers, r.observers)
	go r.runTicker(sess, observers)
	go r.watchContext(ctx, sess)

	r.logInfo("recording started", "format", sess.format.MIMEType)
	return nil
}

// claimStart validates the start transition and marks a start in progress.
func (r *Recorder) claimStart() (fsm.RecorderState, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.starting {
		return "", 0, fmt.Errorf("%w: recording start in progress", screening.ErrBusy)
	}
	next, err := fsm.RecorderTransition(r.state, fsm.RecorderStart)
	if err != nil {
		return "", 0, err
	}
	if r.source == nil {
		return "", 0, fmt.Errorf("%w: %w", screening.ErrPermission, ErrNoCaptureSource)
	}

	r.output = nil
	r.lastElapsed = 0
	r.starting = true
	return next, r.epoch, nil
}

// Stop releases the stream and assembles buffered chunks into one blob.
func (r *Recorder) Stop() (screening.CaptureInput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := fsm.RecorderTransition(r.state, fsm.RecorderStop)
	if err != nil {
		return screening.CaptureInput{}, err
	}

	sess := r.active
	r.release(sess)
	r.awaitEnd(sess)

	input := sess.assemble(r.opts.Now())
	r.lastElapsed = sess.elapsed.Load()
	r.active = nil
	r.output = &input
	r.state = next

	r.logInfo("recording stopped",
		"name", input.Name,
		"bytes", input.Size(),
		"elapsed_s", r.lastElapsed,
	)
	if r.opts.DebugDump {
		r.writeDebugDump(input)
	}
	return input, nil
}

// Discard stops an active recording and drops everything it captured.
func (r *Recorder) Discard() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := fsm.RecorderTransition(r.state, fsm.RecorderDiscard)
	if err != nil {
		return err
	}
	r.discardLocked()
	r.state = next
	r.logInfo("recording discarded")
	return nil
}

// Reset drops a pending output and returns to idle.
func (r *Recorder) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := fsm.RecorderTransition(r.state, fsm.RecorderReset)
	if err != nil {
		return err
	}
	r.output = nil
	r.state = next
	return nil
}

// Close releases any active stream; safe on every exit path.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		r.discardLocked()
	}
	r.output = nil
	r.state = fsm.RecorderIdle
	r.epoch++
}

func (r *Recorder) discardLocked() {
	sess := r.active
	if sess == nil {
		return
	}
	r.release(sess)
	r.lastElapsed = sess.elapsed.Load()
	r.active = nil
}

// release halts the tick and context watcher and stops the device stream.
func (r *Recorder) release(sess *activeCapture) {
	if sess == nil {
		return
	}
	sess.halt()
	if err := sess.handle.Stop(); err != nil {
		r.logWarn("release capture stream failed", "error", err.Error())
	}
}

// awaitEnd waits for the final chunk callback, bounded by StopTimeout.
func (r *Recorder) awaitEnd(sess *activeCapture) {
	timer := time.NewTimer(r.opts.StopTimeout)
	defer timer.Stop()
	select {
	case <-sess.ended:
	case <-timer.C:
		r.logWarn("capture stop callback timed out; using buffered audio",
			"timeout_ms", r.opts.StopTimeout.Milliseconds())
	}
}

func (r *Recorder) runTicker(sess *activeCapture, observers []func(int)) {
	ticker := time.NewTicker(r.opts.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-sess.halted:
			return
		case <-ticker.C:
			select {
			case <-sess.halted:
				return
			default:
			}
			n := int(sess.elapsed.Add(1))
			for _, fn := range observers {
				fn(n)
			}
		}
	}
}

// watchContext discards the recording if ctx ends while it is still active.
func (r *Recorder) watchContext(ctx context.Context, sess *activeCapture) {
	select {
	case <-sess.halted:
		return
	case <-ctx.Done():
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != sess {
		return
	}
	r.discardLocked()
	r.state = fsm.RecorderIdle
	r.logWarn("recording abandoned", "error", ctx.Err().Error())
}

func (s *activeCapture) append(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	buf := make([]byte, len(chunk))
	copy(buf, chunk)

	s.mu.Lock()
	s.chunks = append(s.chunks, buf)
	s.bytes += len(buf)
	s.mu.Unlock()
}

func (s *activeCapture) end() {
	s.endOnce.Do(func() { close(s.ended) })
}

func (s *activeCapture) halt() {
	s.haltOnce.Do(func() { close(s.halted) })
}

// assemble joins buffered chunks into a named CaptureInput.
func (s *activeCapture) assemble(now time.Time) screening.CaptureInput {
	s.mu.Lock()
	raw := make([]byte, 0, s.bytes)
	for _, chunk := range s.chunks {
		raw = append(raw, chunk...)
	}
	s.mu.Unlock()

	mimeType := s.format.MIMEType
	ext := s.format.Extension
	data := raw
	if s.format.PCM16 {
		data = encodePCM16WAV(raw, s.format.SampleRate, s.format.Channels)
		mimeType = "audio/wav"
		ext = "wav"
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	if ext == "" {
		ext = "bin"
	}

	name := fmt.Sprintf("recording_%d.%s", now.UnixMilli(), ext)
	return screening.CaptureInput{Data: data, MIMEType: mimeType, Name: name}
}

func (r *Recorder) logInfo(msg string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Info(msg, args...)
}

func (r *Recorder) logWarn(msg string, args ...any) {
	if r.logger == nil {
		return
	}
	r.logger.Warn(msg, args...)
}
