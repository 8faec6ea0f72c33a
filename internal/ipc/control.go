package ipc

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const defaultControlTimeout = 500 * time.Millisecond

// ErrNoActiveRecording means no process is listening on the recording socket.
var ErrNoActiveRecording = errors.New("no active neuroscan recording")

// Control sends command to the recording owner at path.
//
// A missing or refused socket yields ErrNoActiveRecording. A handler-side
// rejection is returned as an error carrying the handler's message.
func Control(ctx context.Context, path string, command string, timeout time.Duration) (Response, error) {
	if timeout <= 0 {
		timeout = defaultControlTimeout
	}
	resp, err := Send(ctx, path, Request{Command: command}, timeout)
	if err != nil {
		if ownerGone(err) {
			return Response{}, ErrNoActiveRecording
		}
		return Response{}, fmt.Errorf("send %s: %w", command, err)
	}
	if !resp.OK {
		msg := resp.Error
		if msg == "" {
			msg = "request rejected"
		}
		return resp, fmt.Errorf("%s: %s", command, msg)
	}
	return resp, nil
}
