// Package doctor runs runtime readiness diagnostics for config, backend, advice, and audio.
package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rbright/neuroscan/internal/audio"
	"github.com/rbright/neuroscan/internal/backend"
	"github.com/rbright/neuroscan/internal/config"
)

const backendProbeTimeout = 2 * time.Second

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{checkConfig(cfg)}

	checks = append(checks, checkBackendHealth(ctx, cfg.Config.Backend))
	checks = append(checks, checkAdviceKey(cfg.Config.Advice))

	if cfg.Config.Indicator.Enable {
		checks = append(checks, checkBinary("busctl", "desktop notifications"))
	}

	checks = append(checks, checkAudioSelection(ctx, cfg.Config))

	return Report{Checks: checks}
}

func checkConfig(cfg config.Loaded) Check {
	if !cfg.Exists {
		return Check{Name: "config", Pass: true, Message: fmt.Sprintf("%q not found; using defaults", cfg.Path)}
	}
	return Check{Name: "config", Pass: true, Message: fmt.Sprintf("loaded %q (%s)", cfg.Path, cfg.Format)}
}

// checkBackendHealth probes the inference service health endpoint.
func checkBackendHealth(ctx context.Context, cfg config.BackendConfig) Check {
	client, err := backend.New(backend.Options{
		BaseURL:    cfg.URL,
		HealthPath: cfg.HealthPath,
		Timeout:    backendProbeTimeout,
	})
	if err != nil {
		return Check{Name: "backend.health", Pass: false, Message: err.Error()}
	}

	probeCtx, cancel := context.WithTimeout(ctx, backendProbeTimeout)
	defer cancel()

	url := client.BaseURL() + cfg.HealthPath
	health, err := client.Health(probeCtx)
	if err != nil {
		return Check{Name: "backend.health", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	if !health.Healthy() {
		return Check{
			Name:    "backend.health",
			Pass:    false,
			Message: fmt.Sprintf("status=%s model_loaded=%t at %s", health.Status, health.ModelLoaded, url),
		}
	}
	return Check{Name: "backend.health", Pass: true, Message: fmt.Sprintf("healthy at %s", url)}
}

// checkAdviceKey reports whether the Gemini key is present when advice is enabled.
func checkAdviceKey(cfg config.AdviceConfig) Check {
	if !cfg.Enable {
		return Check{Name: "advice.key", Pass: true, Message: "advice disabled"}
	}
	if cfg.APIKey() == "" {
		return Check{Name: "advice.key", Pass: false, Message: fmt.Sprintf("$%s is not set", cfg.APIKeyEnv)}
	}
	return Check{Name: "advice.key", Pass: true, Message: fmt.Sprintf("$%s is set (model %s)", cfg.APIKeyEnv, cfg.Model)}
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.Config) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}
