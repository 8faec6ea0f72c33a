package config

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// decodeYAML strictly decodes YAML content; unknown keys are rejected.
func decodeYAML(content string) (fileConfig, error) {
	var payload fileConfig
	if err := yaml.UnmarshalWithOptions([]byte(content), &payload, yaml.DisallowUnknownField()); err != nil {
		return fileConfig{}, fmt.Errorf("yaml: %w", err)
	}
	return payload, nil
}
