package config

import (
	"fmt"
	"strings"
)

// Parse reads configuration content as JSONC or YAML, chosen by DetectFormat.
func Parse(content string, base Config) (Config, []Warning, error) {
	if strings.TrimSpace(content) == "" {
		warnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, warnings, nil
	}

	payload, err := decode(DetectFormat(content), content)
	if err != nil {
		return Config{}, nil, err
	}

	cfg := base
	payload.applyTo(&cfg)

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func decode(format Format, content string) (fileConfig, error) {
	switch format {
	case FormatJSONC:
		return decodeJSONC(content)
	case FormatYAML:
		return decodeYAML(content)
	default:
		return fileConfig{}, fmt.Errorf("unsupported config format %q", format)
	}
}
