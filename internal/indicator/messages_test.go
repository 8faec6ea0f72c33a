package indicator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/neuroscan/internal/screening"
)

func TestResolveLocaleDefaultsToEnglish(t *testing.T) {
	require.Equal(t, localeEnglish, resolveLocale("en_US.UTF-8"))
	require.Equal(t, localeEnglish, resolveLocale("fr_FR.UTF-8"))
}

func TestIndicatorMessagesEnglish(t *testing.T) {
	msg := indicatorMessages(localeEnglish)
	require.Equal(t, "Recording voice sample…", msg.recording)
	require.Equal(t, "Analyzing spiral…", msg.analyzing[screening.ModalityHandwriting])
	require.Equal(t, "Analyzing voice…", msg.analyzing[screening.ModalityVoice])
	require.NotEmpty(t, msg.analyzingBody[screening.ModalityHandwriting])
	require.NotEmpty(t, msg.analyzingBody[screening.ModalityVoice])
	require.Equal(t, "Screening error", msg.errorText)
}
