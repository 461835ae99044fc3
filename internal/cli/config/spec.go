// Package config defines the CLI configuration structure.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/yndnr/tokcodec-go/internal/cli/output"
)

// DefaultHistorySize caps the REPL history.
const DefaultHistorySize = 1000

// CLIConfig is the configuration for tokcodec-cli.
type CLIConfig struct {
	// DefaultServer is the tokcodec-server to use. Empty runs the codec
	// in-process.
	DefaultServer string `json:"default_server" yaml:"default_server"`

	// DefaultOutput is table, json or yaml.
	DefaultOutput string `json:"default_output" yaml:"default_output"`

	// HistoryFile overrides ~/.tokcodec/history.
	HistoryFile string `json:"history_file,omitempty" yaml:"history_file,omitempty"`

	// HistorySize caps the number of remembered REPL lines.
	HistorySize int `json:"history_size" yaml:"history_size"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		DefaultServer: "",
		DefaultOutput: string(output.FormatTable),
		HistorySize:   DefaultHistorySize,
	}
}

// Validate checks the configuration values.
func (c *CLIConfig) Validate() error {
	var errs []error

	if _, err := output.ParseFormat(c.DefaultOutput); err != nil {
		errs = append(errs, fmt.Errorf("default_output: %w", err))
	}

	if c.DefaultServer != "" {
		addr := c.DefaultServer
		if !strings.Contains(addr, "://") {
			addr = "http://" + addr
		}
		u, err := url.Parse(addr)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("default_server: %w", err))
		case u.Scheme == "unix":
			if u.Path == "" {
				errs = append(errs, errors.New("default_server: missing socket path"))
			}
		case u.Scheme != "http" && u.Scheme != "https":
			errs = append(errs, fmt.Errorf("default_server: unsupported scheme %q", u.Scheme))
		case u.Host == "":
			errs = append(errs, errors.New("default_server: missing host"))
		}
	}

	if c.HistorySize < 0 {
		errs = append(errs, errors.New("history_size must not be negative"))
	}

	return errors.Join(errs...)
}
