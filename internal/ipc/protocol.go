// Package ipc carries recording control commands between neuroscan processes over a unix socket.
package ipc

import (
	"fmt"
	"strings"
)

// Recording control commands.
const (
	CommandStatus = "status"
	CommandStop   = "stop"
	CommandCancel = "cancel"
)

// Request is one JSON-line command: status, stop, or cancel.
type Request struct {
	Command string `json:"command"`
}

// Response reports the recorder state after handling a Request.
type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Message string `json:"message,omitempty"`
	Elapsed int    `json:"elapsed,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewRequest normalizes command and rejects anything outside the control set.
func NewRequest(command string) (Request, error) {
	command = strings.ToLower(strings.TrimSpace(command))
	switch command {
	case CommandStatus, CommandStop, CommandCancel:
		return Request{Command: command}, nil
	default:
		return Request{}, fmt.Errorf("unknown command %q", command)
	}
}

func rejected(format string, args ...any) Response {
	return Response{OK: false, Error: fmt.Sprintf(format, args...)}
}
