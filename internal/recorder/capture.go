package recorder

import "context"

// Format describes the payload a capture handle produces.
type Format struct {
	MIMEType   string
	Extension  string
	SampleRate int
	Channels   int
	// PCM16 marks raw little-endian 16-bit PCM that is wrapped as WAV on stop.
	PCM16 bool
}

// CaptureHandle is one live capture stream.
//
// Stop releases the underlying device. Implementations invoke the OnStop
// callback once after the final chunk has been delivered.
type CaptureHandle interface {
	OnChunk(func([]byte))
	OnStop(func())
	Stop() error
	Format() Format
}

// CaptureSource opens capture streams; denial is reported as an error.
type CaptureSource interface {
	StartCapture(context.Context) (CaptureHandle, error)
}

// CaptureSourceFunc adapts a function to CaptureSource.
type CaptureSourceFunc func(context.Context) (CaptureHandle, error)

func (f CaptureSourceFunc) StartCapture(ctx context.Context) (CaptureHandle, error) {
	return f(ctx)
}
