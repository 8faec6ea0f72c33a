package fsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecorderHappyPath(t *testing.T) {
	s := RecorderIdle

	next, err := RecorderTransition(s, RecorderStart)
	require.NoError(t, err)
	require.Equal(t, RecorderRecording, next)

	next, err = RecorderTransition(next, RecorderStop)
	require.NoError(t, err)
	require.Equal(t, RecorderStopped, next)

	next, err = RecorderTransition(next, RecorderStart)
	require.NoError(t, err)
	require.Equal(t, RecorderRecording, next)

	next, err = RecorderTransition(next, RecorderDiscard)
	require.NoError(t, err)
	require.Equal(t, RecorderIdle, next)
}

func TestRecorderInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		state RecorderState
		event RecorderEvent
	}{
		{name: "idle stop", state: RecorderIdle, event: RecorderStop},
		{name: "idle discard", state: RecorderIdle, event: RecorderDiscard},
		{name: "recording start", state: RecorderRecording, event: RecorderStart},
		{name: "recording reset", state: RecorderRecording, event: RecorderReset},
		{name: "stopped stop", state: RecorderStopped, event: RecorderStop},
		{name: "stopped discard", state: RecorderStopped, event: RecorderDiscard},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := RecorderTransition(tc.state, tc.event)
			require.Error(t, err)
			require.Contains(t, err.Error(), "invalid transition")
			require.Equal(t, tc.state, next)
		})
	}
}

func TestSubmissionHappyPaths(t *testing.T) {
	s, err := SubmissionTransition(SubmissionEmpty, SubmissionSelect)
	require.NoError(t, err)
	require.Equal(t, SubmissionReady, s)

	s, err = SubmissionTransition(s, SubmissionClassify)
	require.NoError(t, err)
	require.Equal(t, SubmissionClassifying, s)
	require.True(t, s.InFlight())

	s, err = SubmissionTransition(s, SubmissionAdvise)
	require.NoError(t, err)
	require.Equal(t, SubmissionAdvising, s)
	require.True(t, s.InFlight())

	s, err = SubmissionTransition(s, SubmissionComplete)
	require.NoError(t, err)
	require.Equal(t, SubmissionDone, s)
	require.False(t, s.InFlight())

	s, err = SubmissionTransition(s, SubmissionClassify)
	require.NoError(t, err)
	s, err = SubmissionTransition(s, SubmissionFail)
	require.NoError(t, err)
	require.Equal(t, SubmissionFailed, s)
}

func TestSubmissionInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		state SubmissionState
		event SubmissionEvent
	}{
		{name: "empty advise", state: SubmissionEmpty, event: SubmissionAdvise},
		{name: "ready complete", state: SubmissionReady, event: SubmissionComplete},
		{name: "classifying select", state: SubmissionClassifying, event: SubmissionSelect},
		{name: "classifying classify", state: SubmissionClassifying, event: SubmissionClassify},
		{name: "advising fail", state: SubmissionAdvising, event: SubmissionFail},
		{name: "advising reset", state: SubmissionAdvising, event: SubmissionReset},
		{name: "done fail", state: SubmissionDone, event: SubmissionFail},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := SubmissionTransition(tc.state, tc.event)
			require.Error(t, err)
			require.Contains(t, err.Error(), "invalid transition")
			require.Equal(t, tc.state, next)
		})
	}
}

func TestUnknownStates(t *testing.T) {
	next, err := RecorderTransition(RecorderState("mystery"), RecorderStart)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown state")
	require.Equal(t, RecorderState("mystery"), next)

	sub, err := SubmissionTransition(SubmissionState("mystery"), SubmissionSelect)
	require.Error(t, err)
	require.Equal(t, SubmissionState("mystery"), sub)
}
