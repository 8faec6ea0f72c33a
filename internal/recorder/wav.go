package recorder

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rbright/neuroscan/internal/logging"
	"github.com/rbright/neuroscan/internal/screening"
)

const (
	defaultSampleRate = 16000
	bitsPerSample     = 16
	wavHeaderSize     = 44
)

// encodePCM16WAV prefixes little-endian PCM with a minimal RIFF/WAVE header.
func encodePCM16WAV(pcm []byte, sampleRate int, channels int) []byte {
	if channels <= 0 {
		channels = 1
	}
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	byteRate := sampleRate * channels * (bitsPerSample / 8)
	blockAlign := channels * (bitsPerSample / 8)

	out := make([]byte, wavHeaderSize+len(pcm))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(pcm)))
	copy(out[wavHeaderSize:], pcm)
	return out
}

// writeDebugDump copies the stopped recording under state/neuroscan/debug.
func (r *Recorder) writeDebugDump(input screening.CaptureInput) {
	path, err := debugPath(input.Name)
	if err != nil {
		r.logWarn("unable to create debug audio dump", "error", err.Error())
		return
	}
	if err := os.WriteFile(path, input.Data, 0o600); err != nil {
		r.logWarn("unable to write debug audio dump", "error", err.Error())
		return
	}
	r.logInfo("debug audio dump written", "path", path)
}

// debugPath resolves and creates the debug directory for name.
func debugPath(name string) (string, error) {
	stateDir, err := logging.StateDir()
	if err != nil {
		return "", err
	}
	debugDir := filepath.Join(stateDir, "debug")
	if err := os.MkdirAll(debugDir, 0o700); err != nil {
		return "", fmt.Errorf("create debug dir: %w", err)
	}
	return filepath.Join(debugDir, filepath.Base(name)), nil
}
