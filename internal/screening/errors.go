package screening

import "errors"

var (
	// ErrValidation indicates required input was not supplied.
	ErrValidation = errors.New("validation failed")
	// ErrPermission indicates microphone access was denied or unavailable.
	ErrPermission = errors.New("microphone permission denied")
	// ErrNetwork indicates a classify, advise, or persist call failed.
	ErrNetwork = errors.New("network request failed")
	// ErrBusy indicates a submission or recording start is already in flight.
	ErrBusy = errors.New("submission already in flight")
)
