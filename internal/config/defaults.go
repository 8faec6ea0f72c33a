package config

// DefaultAPIKeyEnv is the environment variable holding the Gemini key.
const DefaultAPIKeyEnv = "GEMINI_API_KEY"

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			URL:        "http://127.0.0.1:5000",
			TimeoutMS:  30000,
			HealthPath: "/health",
		},
		Advice: AdviceConfig{
			Enable:    true,
			Model:     "gemini-2.5-flash",
			APIKeyEnv: DefaultAPIKeyEnv,
			TimeoutMS: 60000,
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Recorder: RecorderConfig{
			TickMS:        1000,
			StopTimeoutMS: 2000,
		},
		Indicator: IndicatorConfig{
			Enable:         true,
			SoundEnable:    true,
			DesktopAppName: "neuroscan",
			ErrorTimeoutMS: 1600,
		},
		Debug: DebugConfig{},
	}
}
