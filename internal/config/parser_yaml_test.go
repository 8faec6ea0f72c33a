package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseYAMLAppliesSections(t *testing.T) {
	cfg, warnings, err := Parse(`
backend:
  url: https://screening.example.org
  timeout_ms: 5000
advice:
  enable: false
auth:
  role: patient
  patient_id: "42"
  name: Ada
recorder:
  tick_ms: 250
debug:
  audio_dump: true
`, Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, "https://screening.example.org", cfg.Backend.URL)
	require.Equal(t, 5000, cfg.Backend.TimeoutMS)
	require.Equal(t, "/health", cfg.Backend.HealthPath)
	require.False(t, cfg.Advice.Enable)
	require.Equal(t, AuthConfig{Role: "patient", PatientID: "42", Name: "Ada"}, cfg.Auth)
	require.Equal(t, 250, cfg.Recorder.TickMS)
	require.Equal(t, Default().Recorder.StopTimeoutMS, cfg.Recorder.StopTimeoutMS)
	require.True(t, cfg.Debug.EnableAudioDump)
}

func TestParseYAMLRejectsUnknownField(t *testing.T) {
	_, _, err := Parse("backend:\n  grpc: 127.0.0.1:50051\n", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "yaml")
}

func TestParseYAMLPropagatesValidation(t *testing.T) {
	_, _, err := Parse("backend:\n  url: ftp://example.org\n", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "backend.url")
}

func TestParseEmptyContentKeepsBase(t *testing.T) {
	t.Setenv(DefaultAPIKeyEnv, "key")
	cfg, warnings, err := Parse("   \n", Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, Default(), cfg)
}
