package fsm

import "fmt"

type SubmissionState string

type SubmissionEvent string

const (
	SubmissionEmpty       SubmissionState = "empty"
	SubmissionReady       SubmissionState = "ready"
	SubmissionClassifying SubmissionState = "classifying"
	SubmissionAdvising    SubmissionState = "advising"
	SubmissionDone        SubmissionState = "done"
	SubmissionFailed      SubmissionState = "failed"
)

const (
	SubmissionSelect   SubmissionEvent = "select"
	SubmissionClassify SubmissionEvent = "classify"
	SubmissionAdvise   SubmissionEvent = "advise"
	SubmissionComplete SubmissionEvent = "complete"
	SubmissionFail     SubmissionEvent = "fail"
	SubmissionReset    SubmissionEvent = "reset"
)

// InFlight reports whether a network stage is running.
func (s SubmissionState) InFlight() bool {
	return s == SubmissionClassifying || s == SubmissionAdvising
}

// SubmissionTransition applies one submission event.
func SubmissionTransition(current SubmissionState, event SubmissionEvent) (SubmissionState, error) {
	switch current {
	case SubmissionEmpty, SubmissionReady, SubmissionDone, SubmissionFailed:
		switch event {
		case SubmissionSelect:
			return SubmissionReady, nil
		case SubmissionClassify:
			return SubmissionClassifying, nil
		case SubmissionReset:
			return SubmissionEmpty, nil
		default:
			return current, invalidTransition(current, event)
		}
	case SubmissionClassifying:
		switch event {
		case SubmissionAdvise:
			return SubmissionAdvising, nil
		case SubmissionComplete:
			return SubmissionDone, nil
		case SubmissionFail:
			return SubmissionFailed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case SubmissionAdvising:
		switch event {
		case SubmissionComplete:
			return SubmissionDone, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}
