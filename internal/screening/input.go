package screening

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// CaptureInput is one immutable payload submitted to a modality pipeline.
type CaptureInput struct {
	Data     []byte
	MIMEType string
	Name     string
}

// NewCaptureInput copies data so later caller mutation cannot leak in.
func NewCaptureInput(name string, mimeType string, data []byte) CaptureInput {
	buf := make([]byte, len(data))
	copy(buf, data)
	return CaptureInput{Data: buf, MIMEType: mimeType, Name: name}
}

// Size returns the payload length in bytes.
func (c CaptureInput) Size() int {
	return len(c.Data)
}

// InputFromFile reads path into a CaptureInput, resolving MIME by extension then content.
func InputFromFile(path string) (CaptureInput, error) {
	if strings.TrimSpace(path) == "" {
		return CaptureInput{}, fmt.Errorf("%w: file path is empty", ErrValidation)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return CaptureInput{}, fmt.Errorf("%w: file %q not found", ErrValidation, path)
		}
		return CaptureInput{}, fmt.Errorf("read %q: %w", path, err)
	}
	if len(data) == 0 {
		return CaptureInput{}, fmt.Errorf("%w: file %q is empty", ErrValidation, path)
	}
	return CaptureInput{
		Data:     data,
		MIMEType: detectMIME(path, data),
		Name:     filepath.Base(path),
	}, nil
}

// detectMIME prefers the extension mapping and falls back to content sniffing.
func detectMIME(path string, data []byte) string {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		if base, _, err := mime.ParseMediaType(byExt); err == nil {
			return base
		}
		return byExt
	}
	sniffed := http.DetectContentType(data)
	if base, _, err := mime.ParseMediaType(sniffed); err == nil {
		return base
	}
	return sniffed
}
