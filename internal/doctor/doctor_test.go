package doctor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rbright/neuroscan/internal/config"
	"github.com/stretchr/testify/require"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckBinaryFound(t *testing.T) {
	check := checkBinary("sh", "shell available")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "shell available")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func healthServer(t *testing.T, status int, body string) config.BackendConfig {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	cfg := config.Default().Backend
	cfg.URL = server.URL
	return cfg
}

func TestCheckBackendHealthSuccess(t *testing.T) {
	cfg := healthServer(t, http.StatusOK, `{"status":"healthy","model_loaded":true,"timestamp":"2026-01-01T00:00:00"}`)

	check := checkBackendHealth(context.Background(), cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "healthy at")
}

func TestCheckBackendHealthModelNotLoaded(t *testing.T) {
	cfg := healthServer(t, http.StatusOK, `{"status":"unhealthy","model_loaded":false}`)

	check := checkBackendHealth(context.Background(), cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "model_loaded=false")
}

func TestCheckBackendHealthFailureStatusCode(t *testing.T) {
	cfg := healthServer(t, http.StatusServiceUnavailable, `{"error":"Model not loaded"}`)

	check := checkBackendHealth(context.Background(), cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "Model not loaded")
}

func TestCheckBackendHealthInvalidURL(t *testing.T) {
	cfg := config.Default().Backend
	cfg.URL = "ftp://example.org"

	check := checkBackendHealth(context.Background(), cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "http or https")
}

func TestCheckAdviceKey(t *testing.T) {
	cfg := config.Default().Advice

	t.Setenv(config.DefaultAPIKeyEnv, "")
	check := checkAdviceKey(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, config.DefaultAPIKeyEnv)

	t.Setenv(config.DefaultAPIKeyEnv, "secret")
	check = checkAdviceKey(cfg)
	require.True(t, check.Pass)
	require.NotContains(t, check.Message, "secret")

	cfg.Enable = false
	check = checkAdviceKey(cfg)
	require.True(t, check.Pass)
	require.Equal(t, "advice disabled", check.Message)
}

func TestCheckAudioSelectionFailureWithInvalidPulseServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	check := checkAudioSelection(context.Background(), config.Default())
	require.False(t, check.Pass)
	require.Contains(t, check.Name, "audio.device")
}

func TestRunIncludesBusctlOnlyWhenIndicatorEnabled(t *testing.T) {
	binDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "busctl"), []byte("#!/usr/bin/env sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	cfg := config.Default()
	cfg.Backend = healthServer(t, http.StatusOK, `{"status":"healthy","model_loaded":true}`)

	report := Run(context.Background(), config.Loaded{Path: "/tmp/config.jsonc", Format: config.FormatJSONC, Config: cfg, Exists: true})
	names := checkNames(report)
	require.Equal(t, `loaded "/tmp/config.jsonc" (jsonc)`, report.Checks[0].Message)
	require.Contains(t, names, "config")
	require.Contains(t, names, "backend.health")
	require.Contains(t, names, "advice.key")
	require.Contains(t, names, "busctl")
	require.Contains(t, names, "audio.device")
	require.False(t, report.OK())

	cfg.Indicator.Enable = false
	report = Run(context.Background(), config.Loaded{Path: "/tmp/config.jsonc", Config: cfg})
	require.NotContains(t, checkNames(report), "busctl")
	require.Contains(t, report.Checks[0].Message, "using defaults")
}

func checkNames(report Report) []string {
	names := make([]string, 0, len(report.Checks))
	for _, check := range report.Checks {
		names = append(names, check.Name)
	}
	return names
}
