package config

import "strings"

// fileConfig is the on-disk shape shared by the JSONC and YAML formats.
// Nil pointers leave the base value untouched.
type fileConfig struct {
	Backend   *fileBackend   `json:"backend" yaml:"backend"`
	Advice    *fileAdvice    `json:"advice" yaml:"advice"`
	Audio     *fileAudio     `json:"audio" yaml:"audio"`
	Recorder  *fileRecorder  `json:"recorder" yaml:"recorder"`
	Auth      *fileAuth      `json:"auth" yaml:"auth"`
	Indicator *fileIndicator `json:"indicator" yaml:"indicator"`
	Debug     *fileDebug     `json:"debug" yaml:"debug"`
}

type fileBackend struct {
	URL        *string `json:"url" yaml:"url"`
	TimeoutMS  *int    `json:"timeout_ms" yaml:"timeout_ms"`
	HealthPath *string `json:"health_path" yaml:"health_path"`
}

type fileAdvice struct {
	Enable    *bool   `json:"enable" yaml:"enable"`
	Model     *string `json:"model" yaml:"model"`
	APIKeyEnv *string `json:"api_key_env" yaml:"api_key_env"`
	BaseURL   *string `json:"base_url" yaml:"base_url"`
	TimeoutMS *int    `json:"timeout_ms" yaml:"timeout_ms"`
}

type fileAudio struct {
	Input    *string `json:"input" yaml:"input"`
	Fallback *string `json:"fallback" yaml:"fallback"`
}

type fileRecorder struct {
	TickMS        *int `json:"tick_ms" yaml:"tick_ms"`
	StopTimeoutMS *int `json:"stop_timeout_ms" yaml:"stop_timeout_ms"`
}

type fileAuth struct {
	Role      *string `json:"role" yaml:"role"`
	PatientID *string `json:"patient_id" yaml:"patient_id"`
	Name      *string `json:"name" yaml:"name"`
}

type fileIndicator struct {
	Enable         *bool   `json:"enable" yaml:"enable"`
	SoundEnable    *bool   `json:"sound_enable" yaml:"sound_enable"`
	DesktopAppName *string `json:"desktop_app_name" yaml:"desktop_app_name"`
	SoundStartFile *string `json:"sound_start_file" yaml:"sound_start_file"`
	SoundStopFile  *string `json:"sound_stop_file" yaml:"sound_stop_file"`
	ErrorTimeoutMS *int    `json:"error_timeout_ms" yaml:"error_timeout_ms"`
}

type fileDebug struct {
	AudioDump *bool `json:"audio_dump" yaml:"audio_dump"`
}

func (payload fileConfig) applyTo(cfg *Config) {
	if b := payload.Backend; b != nil {
		setString(&cfg.Backend.URL, b.URL)
		setInt(&cfg.Backend.TimeoutMS, b.TimeoutMS)
		setString(&cfg.Backend.HealthPath, b.HealthPath)
	}

	if a := payload.Advice; a != nil {
		setBool(&cfg.Advice.Enable, a.Enable)
		setString(&cfg.Advice.Model, a.Model)
		setString(&cfg.Advice.APIKeyEnv, a.APIKeyEnv)
		setString(&cfg.Advice.BaseURL, a.BaseURL)
		setInt(&cfg.Advice.TimeoutMS, a.TimeoutMS)
	}

	if a := payload.Audio; a != nil {
		setString(&cfg.Audio.Input, a.Input)
		setString(&cfg.Audio.Fallback, a.Fallback)
	}

	if r := payload.Recorder; r != nil {
		setInt(&cfg.Recorder.TickMS, r.TickMS)
		setInt(&cfg.Recorder.StopTimeoutMS, r.StopTimeoutMS)
	}

	if a := payload.Auth; a != nil {
		setString(&cfg.Auth.Role, a.Role)
		setString(&cfg.Auth.PatientID, a.PatientID)
		setString(&cfg.Auth.Name, a.Name)
	}

	if i := payload.Indicator; i != nil {
		setBool(&cfg.Indicator.Enable, i.Enable)
		setBool(&cfg.Indicator.SoundEnable, i.SoundEnable)
		setString(&cfg.Indicator.DesktopAppName, i.DesktopAppName)
		setString(&cfg.Indicator.SoundStartFile, i.SoundStartFile)
		setString(&cfg.Indicator.SoundStopFile, i.SoundStopFile)
		setInt(&cfg.Indicator.ErrorTimeoutMS, i.ErrorTimeoutMS)
	}

	if d := payload.Debug; d != nil {
		setBool(&cfg.Debug.EnableAudioDump, d.AudioDump)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
