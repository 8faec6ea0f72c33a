package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"

	"github.com/rbright/neuroscan/internal/recorder"
)

const (
	sampleRate     = 16000
	chunkSizeBytes = 640 // 20ms @ 16kHz mono s16
)

// captureFormat is the payload shape every Capture produces.
var captureFormat = recorder.Format{
	MIMEType:   "audio/wav",
	Extension:  "wav",
	SampleRate: sampleRate,
	Channels:   1,
	PCM16:      true,
}

// Source opens Pulse captures on the configured input device.
type Source struct {
	Input    string
	Fallback string
	Logger   *slog.Logger
}

// StartCapture selects a device and starts a record stream on it.
func (s Source) StartCapture(ctx context.Context) (recorder.CaptureHandle, error) {
	selection, err := SelectDevice(ctx, s.Input, s.Fallback)
	if err != nil {
		return nil, err
	}
	if selection.Warning != "" && s.Logger != nil {
		s.Logger.Warn(selection.Warning)
	}

	capture, err := StartCapture(ctx, selection.Device)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("audio capture started", "device", DescribeDevice(selection.Device))
	}
	return capture, nil
}

// Capture streams fixed-size PCM chunks from one Pulse source to registered callbacks.
type Capture struct {
	device Device

	client *pulse.Client
	stream *pulse.RecordStream

	stopCh chan struct{}

	mu      sync.Mutex
	pending []byte
	backlog [][]byte
	onChunk func([]byte)
	onStop  []func()
	stopped bool

	inflight sync.WaitGroup
	bytes    atomic.Int64
}

// StartCapture creates and starts a 16kHz mono s16 record stream.
func StartCapture(ctx context.Context, selected Device) (*Capture, error) {
	client, err := newClient()
	if err != nil {
		return nil, err
	}

	source, err := client.SourceByID(selected.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", selected.ID, err)
	}

	capture := newCapture(selected)
	capture.client = client

	writer := pulse.NewWriter(writerFunc(capture.onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(sampleRate),
		pulse.RecordBufferFragmentSize(chunkSizeBytes),
		pulse.RecordMediaName("neuroscan voice sample"),
	)
	if err != nil {
		_ = capture.Stop()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	capture.stream = stream
	stream.Start()

	go func() {
		select {
		case <-ctx.Done():
			_ = capture.Stop()
		case <-capture.stopCh:
		}
	}()

	return capture, nil
}

func newCapture(device Device) *Capture {
	return &Capture{device: device, stopCh: make(chan struct{})}
}

// Device returns capture metadata for logging.
func (c *Capture) Device() Device {
	return c.device
}

// Format reports 16kHz mono PCM16 payloads.
func (c *Capture) Format() recorder.Format {
	return captureFormat
}

// BytesCaptured reports total bytes accepted from Pulse.
func (c *Capture) BytesCaptured() int64 {
	return c.bytes.Load()
}

// OnChunk registers the chunk consumer and replays chunks captured before registration.
func (c *Capture) OnChunk(fn func([]byte)) {
	c.mu.Lock()
	c.onChunk = fn
	backlog := c.backlog
	c.backlog = nil
	c.mu.Unlock()

	if fn == nil {
		return
	}
	for _, chunk := range backlog {
		fn(chunk)
	}
}

// OnStop registers a callback fired once after the final chunk is delivered.
func (c *Capture) OnStop(fn func()) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		fn()
		return
	}
	c.onStop = append(c.onStop, fn)
	c.mu.Unlock()
}

// Stop halts the stream, releases the Pulse client, and flushes residual PCM exactly once.
func (c *Capture) Stop() error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	c.stopped = true
	close(c.stopCh)
	c.mu.Unlock()

	if c.stream != nil {
		c.stream.Stop()
		c.stream.Close()
	}
	if c.client != nil {
		c.client.Close()
	}

	c.inflight.Wait()

	c.mu.Lock()
	tail := c.pending
	c.pending = nil
	consumer := c.onChunk
	callbacks := c.onStop
	c.onStop = nil
	if consumer == nil && len(tail) > 0 {
		c.backlog = append(c.backlog, tail)
	}
	c.mu.Unlock()

	if consumer != nil && len(tail) > 0 {
		consumer(tail)
	}
	for _, fn := range callbacks {
		fn()
	}
	return nil
}

// onPCM receives raw Pulse frames and forwards chunkSizeBytes slices.
func (c *Capture) onPCM(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	select {
	case <-c.stopCh:
		return 0, io.EOF
	default:
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return 0, io.EOF
	}
	// Guard Add under the same mutex as c.stopped to avoid Add/Wait races.
	c.inflight.Add(1)
	defer c.inflight.Done()

	c.pending = append(c.pending, buffer...)
	chunks := make([][]byte, 0, len(c.pending)/chunkSizeBytes)
	for len(c.pending) >= chunkSizeBytes {
		chunk := make([]byte, chunkSizeBytes)
		copy(chunk, c.pending[:chunkSizeBytes])
		c.pending = c.pending[chunkSizeBytes:]
		chunks = append(chunks, chunk)
	}
	consumer := c.onChunk
	if consumer == nil {
		c.backlog = append(c.backlog, chunks...)
	}
	c.mu.Unlock()

	c.bytes.Add(int64(len(buffer)))

	if consumer != nil {
		for _, chunk := range chunks {
			consumer(chunk)
		}
	}
	return len(buffer), nil
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}

// DescribeDevice formats device metadata for logs.
func DescribeDevice(device Device) string {
	description := strings.TrimSpace(device.Description)
	id := strings.TrimSpace(device.ID)
	if description == "" {
		return id
	}
	if id == "" {
		return description
	}
	return fmt.Sprintf("%s (%s)", description, id)
}
