package config

import (
	"maps"
	"slices"
	"strings"
)

// LogAttrs summarizes cfg as logger key/value pairs. Exporter headers
// usually carry API keys, so only their names are listed.
func LogAttrs(cfg *ServerConfig) []any {
	var rps float64
	if cfg.Server.HTTP.RateLimit.Enabled {
		rps = cfg.Server.HTTP.RateLimit.RPS
	}
	attrs := []any{
		"http_addr", cfg.Server.HTTP.Addr,
		"http_tls", cfg.Server.HTTP.TLS.Enabled(),
		"http_rps", rps,
		"cors_origins", strings.Join(cfg.Server.HTTP.CORS.Origins, ","),
		"resp_enabled", cfg.Server.RESP.Enabled,
	}
	if cfg.Server.RESP.Enabled {
		attrs = append(attrs, "resp_addr", cfg.Server.RESP.Addr)
	}
	if cfg.Server.Local.Socket != "" {
		attrs = append(attrs, "local_socket", cfg.Server.Local.Socket)
	}
	attrs = append(attrs,
		"shutdown_timeout", cfg.Server.Shutdown.Timeout.String(),
		"log_level", cfg.Log.Level,
		"log_format", cfg.Log.Format,
		"metrics_enabled", cfg.Metrics.Enabled,
	)
	if cfg.Tracing.Endpoint != "" {
		attrs = append(attrs,
			"tracing_endpoint", cfg.Tracing.Endpoint,
			"tracing_headers", strings.Join(slices.Sorted(maps.Keys(cfg.Tracing.Headers)), ","),
		)
	}
	return attrs
}
