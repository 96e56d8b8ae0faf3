// Package config resolves panehist settings from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ToolConfig names an external helper command and its arguments.
type ToolConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
}

// Config holds the user-tunable settings.
type Config struct {
	History   string     `yaml:"history"`
	Picker    ToolConfig `yaml:"picker"`
	Clipboard ToolConfig `yaml:"clipboard"`
}

// Load reads the config file and applies environment overrides. A missing
// file yields defaults; a malformed file is an error.
func Load() (Config, error) {
	var cfg Config

	if path, err := configPath(); err == nil {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if fromEnv := os.Getenv("PANEHIST_HISTORY"); fromEnv != "" {
		cfg.History = fromEnv
	}
	if cfg.History == "" {
		path, err := DefaultHistoryPath()
		if err != nil {
			return cfg, err
		}
		cfg.History = path
	}

	return cfg, nil
}

// DefaultHistoryPath returns the shared prompt log location.
func DefaultHistoryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".claude", "history.jsonl"), nil
}

func configPath() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "panehist", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "panehist", "config.yaml"), nil
}
