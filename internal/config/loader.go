package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"agentcanvas/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/agentcanvas"
	configFileName = "config.yaml"
)

// Overrides carries command-line settings. Anything set here wins over both
// the built-in defaults and config.yaml.
type Overrides struct {
	// ConfigPath is the directory holding config.yaml. Empty means the
	// per-user directory under $HOME.
	ConfigPath string

	// ProjectsRoot replaces the configured projects root when non-empty.
	ProjectsRoot string
}

// Load resolves the effective configuration in three layers: built-in
// defaults, then config.yaml if present, then command-line overrides. A
// missing config.yaml is not an error.
func Load(o Overrides) (CanvasConfig, error) {
	dir := o.ConfigPath
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return CanvasConfig{}, fmt.Errorf("could not determine user config directory: %w", err)
		}
		dir = filepath.Join(home, userConfigDir)
	}

	cfg := GetDefaultConfig()
	path := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("Config", "No config.yaml at %s, using defaults", path)
	case err != nil:
		return CanvasConfig{}, fmt.Errorf("failed to read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return CanvasConfig{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		logging.Info("Config", "Loaded configuration from %s", path)
	}

	if o.ProjectsRoot != "" {
		cfg.Projects.Root = o.ProjectsRoot
	}
	return cfg, nil
}
