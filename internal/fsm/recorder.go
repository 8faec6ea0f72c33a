// Package fsm holds the transition tables for recording and submission lifecycles.
package fsm

import "fmt"

type RecorderState string

type RecorderEvent string

const (
	RecorderIdle      RecorderState = "idle"
	RecorderRecording RecorderState = "recording"
	RecorderStopped   RecorderState = "stopped"
)

const (
	RecorderStart   RecorderEvent = "start"
	RecorderStop    RecorderEvent = "stop"
	RecorderDiscard RecorderEvent = "discard"
	RecorderReset   RecorderEvent = "reset"
)

// RecorderTransition applies one recorder event. Starting from stopped
// replaces the pending output.
func RecorderTransition(current RecorderState, event RecorderEvent) (RecorderState, error) {
	switch current {
	case RecorderIdle:
		switch event {
		case RecorderStart:
			return RecorderRecording, nil
		case RecorderReset:
			return RecorderIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case RecorderRecording:
		switch event {
		case RecorderStop:
			return RecorderStopped, nil
		case RecorderDiscard:
			return RecorderIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case RecorderStopped:
		switch event {
		case RecorderStart:
			return RecorderRecording, nil
		case RecorderReset:
			return RecorderIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition[S ~string, E ~string](state S, event E) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
