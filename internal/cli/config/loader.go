// Package config defines the CLI configuration structure.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Dir returns the per-user tokcodec directory.
func Dir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".tokcodec")
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "cli.yaml")
}

// DefaultHistoryPath returns the default REPL history file path.
func DefaultHistoryPath() string {
	return filepath.Join(Dir(), "history")
}

// Load loads CLI configuration from file.
// A missing file yields the defaults.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes CLI configuration to file with owner-only permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Override keys accepted by Merge.
const (
	KeyServer      = "server"
	KeyOutput      = "output"
	KeyHistoryFile = "history-file"
)

// Merge returns a copy of cfg with explicitly set flag or environment
// values applied on top.
func Merge(cfg *CLIConfig, overrides map[string]string) *CLIConfig {
	merged := *cfg

	if v, ok := overrides[KeyServer]; ok {
		merged.DefaultServer = v
	}
	if v, ok := overrides[KeyOutput]; ok {
		merged.DefaultOutput = v
	}
	if v, ok := overrides[KeyHistoryFile]; ok {
		merged.HistoryFile = v
	}

	return &merged
}

// HistoryPath returns the configured history file.
func (c *CLIConfig) HistoryPath() string {
	if c.HistoryFile != "" {
		return c.HistoryFile
	}
	return DefaultHistoryPath()
}
