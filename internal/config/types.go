// Package config resolves, parses, validates, and defaults neuroscan configuration.
package config

import (
	"os"
	"strings"
	"time"
)

// Config is the fully materialized runtime configuration.
type Config struct {
	Backend   BackendConfig
	Advice    AdviceConfig
	Audio     AudioConfig
	Recorder  RecorderConfig
	Auth      AuthConfig
	Indicator IndicatorConfig
	Debug     DebugConfig
}

// BackendConfig locates the inference/persistence service.
type BackendConfig struct {
	URL        string
	TimeoutMS  int
	HealthPath string
}

// Timeout converts TimeoutMS to a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutMS) * time.Millisecond
}

// AdviceConfig controls Gemini advice generation for handwriting results.
type AdviceConfig struct {
	Enable    bool
	Model     string
	APIKeyEnv string
	BaseURL   string
	TimeoutMS int
}

// Timeout converts TimeoutMS to a duration.
func (a AdviceConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutMS) * time.Millisecond
}

// APIKey reads the key from the configured environment variable.
func (a AdviceConfig) APIKey() string {
	name := strings.TrimSpace(a.APIKeyEnv)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(name))
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string
	Fallback string
}

// RecorderConfig tunes the elapsed tick and stop wait.
type RecorderConfig struct {
	TickMS        int
	StopTimeoutMS int
}

// AuthConfig is a static identity used when no login identity file exists.
type AuthConfig struct {
	Role      string
	PatientID string
	Name      string
}

// IndicatorConfig controls desktop notification and audio cue behavior.
type IndicatorConfig struct {
	Enable         bool
	SoundEnable    bool
	DesktopAppName string
	SoundStartFile string
	SoundStopFile  string
	ErrorTimeoutMS int
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
