package pipeline

import "github.com/rbright/neuroscan/internal/screening"

// User-facing messages recorded on a pipeline outcome.
const (
	MessageImageFailed    = "Could not complete analysis. Check network, backend server, and API key."
	MessageAdviceFailed   = "Advice is unavailable right now. The classification result is still valid."
	MessageVoiceFailed    = "Voice analysis failed. Please try again."
	MessageImageMissing   = "Please upload a spiral image to proceed."
	MessageVoiceMissing   = "Record or choose an audio file to proceed."
	MessageMicUnavailable = "Could not access microphone. Please allow permissions."
)

// FailureMessage is the classify-stage error text for modality m.
func FailureMessage(m screening.Modality) string {
	if m == screening.ModalityVoice {
		return MessageVoiceFailed
	}
	return MessageImageFailed
}

// MissingInputMessage is the validation text when no input was chosen for m.
func MissingInputMessage(m screening.Modality) string {
	if m == screening.ModalityVoice {
		return MessageVoiceMissing
	}
	return MessageImageMissing
}
