// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for tokcodec-server.
//
// Keys avoid underscores so every value can be set from the environment
// (TOKCODEC_SERVER_HTTP_RATELIMIT_RPS -> server.http.ratelimit.rps).
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Log     LogSection     `koanf:"log"`
	Metrics MetricsSection `koanf:"metrics"`
	Tracing TracingSection `koanf:"tracing"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP     HTTPConfig     `koanf:"http"`
	RESP     RESPConfig     `koanf:"resp"`
	Local    LocalConfig    `koanf:"local"`
	Shutdown ShutdownConfig `koanf:"shutdown"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr      string          `koanf:"addr"`
	TLS       TLSConfig       `koanf:"tls"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	CORS      CORSConfig      `koanf:"cors"`
}

// TLSConfig enables HTTPS when both files are set.
type TLSConfig struct {
	Cert string `koanf:"cert"`
	Key  string `koanf:"key"`
}

// Enabled reports whether TLS is configured.
func (c TLSConfig) Enabled() bool {
	return c.Cert != "" && c.Key != ""
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// CORSConfig lists the allowed cross-origin callers. Empty disables CORS
// headers; "*" allows any origin.
type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

// RESPConfig configures the Redis-protocol listener. It shares the HTTP
// TLS certificate when one is configured.
type RESPConfig struct {
	Enabled     bool          `koanf:"enabled"`
	Addr        string        `koanf:"addr"`
	IdleTimeout time.Duration `koanf:"idletimeout"`
	// RateLimit is commands per second per client IP (0 = unlimited).
	RateLimit float64 `koanf:"ratelimit"`
}

// LocalConfig configures the Unix socket that serves the HTTP API to
// local tools. An empty socket path disables it.
type LocalConfig struct {
	Socket string `koanf:"socket"`
}

// ShutdownConfig bounds graceful shutdown.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// LogSection configures logging.
type LogSection struct {
	Level   string `koanf:"level"`
	Format  string `koanf:"format"`
	Backend string `koanf:"backend"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// TracingSection configures OpenTelemetry export. An empty endpoint keeps
// spans in-process.
type TracingSection struct {
	Endpoint string            `koanf:"endpoint"`
	Service  string            `koanf:"service"`
	Headers  map[string]string `koanf:"headers"`
}
