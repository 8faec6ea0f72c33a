package indicator

import (
	"os"
	"strings"

	"github.com/rbright/neuroscan/internal/screening"
)

type locale string

const (
	localeEnglish locale = "en"
)

type messages struct {
	recording     string
	recordingBody string
	analyzing     map[screening.Modality]string
	analyzingBody map[screening.Modality]string
	errorText     string
}

func indicatorMessagesFromEnv() messages {
	return indicatorMessages(resolveLocale(os.Getenv("LANG")))
}

func resolveLocale(raw string) locale {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(raw, "en") {
		return localeEnglish
	}
	return localeEnglish
}

func indicatorMessages(tag locale) messages {
	switch tag {
	case localeEnglish:
		fallthrough
	default:
		return messages{
			recording:     "Recording voice sample…",
			recordingBody: "neuroscan stop to analyze, neuroscan cancel to discard",
			analyzing: map[screening.Modality]string{
				screening.ModalityHandwriting: "Analyzing spiral…",
				screening.ModalityVoice:       "Analyzing voice…",
			},
			analyzingBody: map[screening.Modality]string{
				screening.ModalityHandwriting: "Spiral drawing sent for classification",
				screening.ModalityVoice:       "Voice sample sent for classification",
			},
			errorText: "Screening error",
		}
	}
}
