// Package config defines the server configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr = "127.0.0.1:5080"

	DefaultRESPAddr        = "127.0.0.1:6380"
	DefaultRESPIdleTimeout = 5 * time.Minute
	DefaultRESPRateLimit   = 1000

	DefaultRateLimitRPS   = 100
	DefaultRateLimitBurst = 200

	DefaultShutdownTimeout = 10 * time.Second

	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	DefaultLogBackend = "slog"

	DefaultMetricsPath = "/metrics"

	DefaultTracingService = "tokcodec-server"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr: DefaultHTTPAddr,
				RateLimit: RateLimitConfig{
					Enabled: true,
					RPS:     DefaultRateLimitRPS,
					Burst:   DefaultRateLimitBurst,
				},
			},
			RESP: RESPConfig{
				Enabled:     false,
				Addr:        DefaultRESPAddr,
				IdleTimeout: DefaultRESPIdleTimeout,
				RateLimit:   DefaultRESPRateLimit,
			},
			Shutdown: ShutdownConfig{
				Timeout: DefaultShutdownTimeout,
			},
		},
		Log: LogSection{
			Level:   DefaultLogLevel,
			Format:  DefaultLogFormat,
			Backend: DefaultLogBackend,
		},
		Metrics: MetricsSection{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
		Tracing: TracingSection{
			Service: DefaultTracingService,
		},
	}
}
