package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/neuroscan/internal/advice"
	"github.com/rbright/neuroscan/internal/backend"
	"github.com/rbright/neuroscan/internal/fsm"
	"github.com/rbright/neuroscan/internal/pipeline"
	"github.com/rbright/neuroscan/internal/screening"
)

func TestElapsed(t *testing.T) {
	tests := map[int]string{
		-3: "00:00",
		0:  "00:00",
		7:  "00:07",
		42: "00:42",
		75: "01:15",
	}
	for in, want := range tests {
		require.Equal(t, want, Elapsed(in), in)
	}
}

func TestBarFillsProportionally(t *testing.T) {
	require.Equal(t, 10, strings.Count(Bar(0.5, 20), "█"))
	require.Equal(t, 20, strings.Count(Bar(1.7, 20), "█"))
	require.Equal(t, 0, strings.Count(Bar(0, 20), "█"))
	require.Empty(t, Bar(0.5, 0))
}

func TestOutcomeRendersResultAndAdvice(t *testing.T) {
	out := Outcome(pipeline.Outcome{
		Modality:  screening.ModalityHandwriting,
		State:     fsm.SubmissionDone,
		HasResult: true,
		Result:    screening.Classification{Label: "Positive", Confidence: 0.8734},
		Percent:   "87.34",
		Polarity:  screening.PolarityPositive,
		HasAdvice: true,
		Advice:    advice.Parse("[SUMMARY]Take it easy.\n[LIFESTYLE]\n• Eat well\n• Exercise"),
	})

	require.Contains(t, out, "Spiral Prediction")
	require.Contains(t, out, "Positive")
	require.Contains(t, out, "87.34%")
	require.Contains(t, out, "Summary")
	require.Contains(t, out, "Take it easy.")
	require.Contains(t, out, "Lifestyle Tips")
	require.Contains(t, out, "• Eat well")
	require.Contains(t, out, "• Exercise")
	require.NotContains(t, out, "Healthcare Steps")
	require.NotContains(t, out, "Prevention")
}

func TestNextStepCarriesHandwritingLabel(t *testing.T) {
	require.Contains(t, NextStep("neuroscan", "Positive"), `next: neuroscan voice --hint "Positive"`)
	require.Contains(t, NextStep("neuroscan", "  "), "next: neuroscan voice")
	require.NotContains(t, NextStep("neuroscan", ""), "--hint")
}

func TestOutcomeRendersErrors(t *testing.T) {
	out := Outcome(pipeline.Outcome{
		Modality:    screening.ModalityVoice,
		State:       fsm.SubmissionFailed,
		Error:       pipeline.MessageVoiceFailed,
		AdviceError: "advice unavailable",
	})

	require.Contains(t, out, "Voice Prediction")
	require.Contains(t, out, "error: "+pipeline.MessageVoiceFailed)
	require.Contains(t, out, "advice: advice unavailable")
	require.NotContains(t, out, "confidence:")
}

func TestResultsEmpty(t *testing.T) {
	require.Contains(t, Results(nil), "No records found.")
}

func TestResultsTable(t *testing.T) {
	age := 64
	out := Results([]backend.Record{
		{ID: 2, PatientName: "Ada", PatientAge: &age, PatientContact: "555-0101", Type: "voice", Result: "Parkinson", Confidence: 0.912, Timestamp: "2026-03-01T10:15:00.123456"},
		{ID: 1, Type: "spiral", Result: "Negative", Confidence: 0.5, Timestamp: "yesterday"},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "Test #")
	require.Contains(t, lines[0], "Confidence")

	require.Contains(t, lines[1], "#2")
	require.Contains(t, lines[1], "Ada")
	require.Contains(t, lines[1], "64")
	require.Contains(t, lines[1], "Voice")
	require.Contains(t, lines[1], "91.2%")
	require.Contains(t, lines[1], "2026-03-01 10:15")

	require.Contains(t, lines[2], "Anonymous")
	require.Contains(t, lines[2], "N/A")
	require.Contains(t, lines[2], "Spiral")
	require.Contains(t, lines[2], "50.0%")
	require.Contains(t, lines[2], "yesterday")
}

func TestFormatTimestampFallsBackToRaw(t *testing.T) {
	require.Equal(t, "2026-01-02 03:04", formatTimestamp("2026-01-02T03:04:05Z"))
	require.Equal(t, "2026-01-02 03:04", formatTimestamp("2026-01-02 03:04:05"))
	require.Equal(t, "not a date", formatTimestamp(" not a date "))
}
