package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	rawURL := strings.TrimSpace(cfg.Backend.URL)
	if rawURL == "" {
		return nil, fmt.Errorf("backend.url must not be empty")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("backend.url must be an http(s) URL, got %q", rawURL)
	}
	if !strings.HasPrefix(strings.TrimSpace(cfg.Backend.HealthPath), "/") {
		return nil, fmt.Errorf("backend.health_path must start with '/'")
	}
	if cfg.Backend.TimeoutMS <= 0 {
		return nil, fmt.Errorf("backend.timeout_ms must be > 0")
	}

	if cfg.Advice.Enable {
		if strings.TrimSpace(cfg.Advice.Model) == "" {
			return nil, fmt.Errorf("advice.model must not be empty when advice.enable=true")
		}
		if cfg.Advice.TimeoutMS <= 0 {
			return nil, fmt.Errorf("advice.timeout_ms must be > 0")
		}
		if cfg.Advice.APIKey() == "" {
			warnings = append(warnings, Warning{
				Message: fmt.Sprintf("advice enabled but $%s is not set; advice will be unavailable", adviceKeyName(cfg.Advice)),
			})
		}
	}

	if cfg.Recorder.TickMS <= 0 {
		return nil, fmt.Errorf("recorder.tick_ms must be > 0")
	}
	if cfg.Recorder.StopTimeoutMS <= 0 {
		return nil, fmt.Errorf("recorder.stop_timeout_ms must be > 0")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Auth.Role)) {
	case "", "patient", "doctor":
	default:
		return nil, fmt.Errorf("auth.role must be one of: patient, doctor")
	}

	if cfg.Indicator.Enable && strings.TrimSpace(cfg.Indicator.DesktopAppName) == "" {
		return nil, fmt.Errorf("indicator.desktop_app_name must not be empty when indicator.enable=true")
	}
	if cfg.Indicator.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.error_timeout_ms must be >= 0")
	}

	return warnings, nil
}

func adviceKeyName(cfg AdviceConfig) string {
	if name := strings.TrimSpace(cfg.APIKeyEnv); name != "" {
		return name
	}
	return DefaultAPIKeyEnv
}
