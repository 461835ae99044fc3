// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

// Verify validates the configuration and reports every problem found.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyLog(&cfg.Log),
		verifyMetrics(&cfg.Metrics),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error

	if cfg.HTTP.Addr == "" {
		errs = append(errs, errors.New("server.http.addr is required"))
	} else if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.http.addr %q: %w", cfg.HTTP.Addr, err))
	}

	tls := cfg.HTTP.TLS
	if (tls.Cert == "") != (tls.Key == "") {
		errs = append(errs, errors.New("server.http.tls.cert and server.http.tls.key must be set together"))
	}
	for _, f := range []struct{ key, path string }{
		{"server.http.tls.cert", tls.Cert},
		{"server.http.tls.key", tls.Key},
	} {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.key, err))
		}
	}

	if rl := cfg.HTTP.RateLimit; rl.Enabled {
		if rl.RPS <= 0 {
			errs = append(errs, errors.New("server.http.ratelimit.rps must be positive"))
		}
		if rl.Burst < 1 {
			errs = append(errs, errors.New("server.http.ratelimit.burst must be at least 1"))
		}
	}

	if resp := cfg.RESP; resp.Enabled {
		if _, _, err := net.SplitHostPort(resp.Addr); err != nil {
			errs = append(errs, fmt.Errorf("server.resp.addr %q: %w", resp.Addr, err))
		} else if resp.Addr == cfg.HTTP.Addr {
			errs = append(errs, errors.New("server.resp.addr must differ from server.http.addr"))
		}
		if resp.IdleTimeout <= 0 {
			errs = append(errs, errors.New("server.resp.idletimeout must be positive"))
		}
		if resp.RateLimit < 0 {
			errs = append(errs, errors.New("server.resp.ratelimit must not be negative"))
		}
	}

	if sock := cfg.Local.Socket; sock != "" && strings.TrimSpace(sock) != sock {
		errs = append(errs, fmt.Errorf("server.local.socket %q has surrounding whitespace", sock))
	}

	if cfg.Shutdown.Timeout <= 0 {
		errs = append(errs, errors.New("server.shutdown.timeout must be positive"))
	}

	return errors.Join(errs...)
}

func verifyLog(cfg *LogSection) error {
	var errs []error

	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level))
	}

	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of json, text", cfg.Format))
	}

	switch strings.ToLower(cfg.Backend) {
	case "", "slog", "zap":
	default:
		errs = append(errs, fmt.Errorf("log.backend %q is not one of slog, zap", cfg.Backend))
	}

	return errors.Join(errs...)
}

func verifyMetrics(cfg *MetricsSection) error {
	if cfg.Enabled && !strings.HasPrefix(cfg.Path, "/") {
		return fmt.Errorf("metrics.path %q must start with /", cfg.Path)
	}
	return nil
}
