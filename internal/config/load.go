package config

import (
	"errors"
	"fmt"
	"os"
)

// Loaded is the resolved config file and the settings parsed from it.
//
// Format is empty when no file exists and defaults are in effect.
type Loaded struct {
	Path     string
	Format   Format
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves the config path and parses the file there over Default.
// A missing file is not an error.
func Load(explicitPath string) (Loaded, error) {
	path, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return defaultsFor(path)
	case err != nil:
		return Loaded{}, fmt.Errorf("read config %q: %w", path, err)
	}

	format := DetectFormat(string(content))
	cfg, warnings, err := Parse(string(content), Default())
	if err != nil {
		return Loaded{}, fmt.Errorf("parse %s config %q: %w", format, path, err)
	}
	return Loaded{Path: path, Format: format, Config: cfg, Warnings: warnings, Exists: true}, nil
}

func defaultsFor(path string) (Loaded, error) {
	cfg := Default()
	warnings, err := Validate(cfg)
	if err != nil {
		return Loaded{}, err
	}
	missing := Warning{Message: fmt.Sprintf("config file %q not found; using defaults (write JSONC or YAML there to override)", path)}
	return Loaded{
		Path:     path,
		Config:   cfg,
		Warnings: append([]Warning{missing}, warnings...),
	}, nil
}
