package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.Server.HTTP.Addr, DefaultHTTPAddr)
	}
	if !cfg.Server.HTTP.RateLimit.Enabled {
		t.Error("rate limit should be enabled by default")
	}
	if cfg.Server.Shutdown.Timeout != 10*time.Second {
		t.Errorf("Shutdown.Timeout = %v", cfg.Server.Shutdown.Timeout)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" || cfg.Log.Backend != "slog" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if cfg.Tracing.Endpoint != "" {
		t.Error("tracing export should be off by default")
	}
	if cfg.Server.Local.Socket != "" {
		t.Errorf("Local.Socket = %q, want disabled", cfg.Server.Local.Socket)
	}
	if cfg.Server.RESP.Enabled || cfg.Server.RESP.Addr != DefaultRESPAddr {
		t.Errorf("RESP = %+v, want disabled on %s", cfg.Server.RESP, DefaultRESPAddr)
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) = %v", err)
	}
}

func TestTLSConfig_Enabled(t *testing.T) {
	if (TLSConfig{}).Enabled() {
		t.Error("empty TLS config should be disabled")
	}
	if (TLSConfig{Cert: "c"}).Enabled() {
		t.Error("cert without key should be disabled")
	}
	if !(TLSConfig{Cert: "c", Key: "k"}).Enabled() {
		t.Error("cert and key should enable TLS")
	}
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "cert.pem")
	key := filepath.Join(dir, "key.pem")
	for _, p := range []string{cert, key} {
		if err := os.WriteFile(p, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{"valid", func(*ServerConfig) {}, ""},
		{"valid tls", func(c *ServerConfig) {
			c.Server.HTTP.TLS = TLSConfig{Cert: cert, Key: key}
		}, ""},
		{"empty addr", func(c *ServerConfig) { c.Server.HTTP.Addr = "" }, "server.http.addr is required"},
		{"addr without port", func(c *ServerConfig) { c.Server.HTTP.Addr = "localhost" }, "server.http.addr"},
		{"cert only", func(c *ServerConfig) {
			c.Server.HTTP.TLS = TLSConfig{Cert: cert}
		}, "must be set together"},
		{"missing cert file", func(c *ServerConfig) {
			c.Server.HTTP.TLS = TLSConfig{Cert: filepath.Join(dir, "nope.pem"), Key: key}
		}, "server.http.tls.cert"},
		{"zero rps", func(c *ServerConfig) { c.Server.HTTP.RateLimit.RPS = 0 }, "ratelimit.rps"},
		{"zero burst", func(c *ServerConfig) { c.Server.HTTP.RateLimit.Burst = 0 }, "ratelimit.burst"},
		{"disabled rate limit skips checks", func(c *ServerConfig) {
			c.Server.HTTP.RateLimit = RateLimitConfig{}
		}, ""},
		{"resp enabled", func(c *ServerConfig) { c.Server.RESP.Enabled = true }, ""},
		{"local socket", func(c *ServerConfig) { c.Server.Local.Socket = "/run/tokcodec.sock" }, ""},
		{"local socket whitespace", func(c *ServerConfig) { c.Server.Local.Socket = " /run/x.sock" }, "server.local.socket"},
		{"resp bad addr", func(c *ServerConfig) {
			c.Server.RESP.Enabled = true
			c.Server.RESP.Addr = "6380"
		}, "server.resp.addr"},
		{"resp shares http addr", func(c *ServerConfig) {
			c.Server.RESP.Enabled = true
			c.Server.RESP.Addr = c.Server.HTTP.Addr
		}, "must differ"},
		{"resp zero idle timeout", func(c *ServerConfig) {
			c.Server.RESP.Enabled = true
			c.Server.RESP.IdleTimeout = 0
		}, "idletimeout"},
		{"resp disabled skips checks", func(c *ServerConfig) { c.Server.RESP.Addr = "" }, ""},
		{"zero shutdown timeout", func(c *ServerConfig) { c.Server.Shutdown.Timeout = 0 }, "shutdown.timeout"},
		{"bad level", func(c *ServerConfig) { c.Log.Level = "trace" }, "log.level"},
		{"bad format", func(c *ServerConfig) { c.Log.Format = "xml" }, "log.format"},
		{"bad backend", func(c *ServerConfig) { c.Log.Backend = "logrus" }, "log.backend"},
		{"zap backend", func(c *ServerConfig) { c.Log.Backend = "zap" }, ""},
		{"relative metrics path", func(c *ServerConfig) { c.Metrics.Path = "metrics" }, "metrics.path"},
		{"disabled metrics skips path", func(c *ServerConfig) {
			c.Metrics = MetricsSection{}
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Verify() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Verify() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.HTTP.Addr = ""
	cfg.Log.Level = "loud"
	cfg.Metrics.Path = "x"

	err := Verify(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"server.http.addr", "log.level", "metrics.path"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func attrMap(t *testing.T, attrs []any) map[string]any {
	t.Helper()
	if len(attrs)%2 != 0 {
		t.Fatalf("odd attribute list: %v", attrs)
	}
	m := make(map[string]any, len(attrs)/2)
	for i := 0; i < len(attrs); i += 2 {
		m[attrs[i].(string)] = attrs[i+1]
	}
	return m
}

func TestLogAttrs_HidesHeaderValues(t *testing.T) {
	cfg := Default()
	cfg.Tracing.Endpoint = "otel:4317"
	cfg.Tracing.Headers = map[string]string{
		"x-api-key":     "supersecretvalue",
		"authorization": "Bearer abc",
	}

	m := attrMap(t, LogAttrs(cfg))
	if m["tracing_headers"] != "authorization,x-api-key" {
		t.Errorf("tracing_headers = %v", m["tracing_headers"])
	}
	for k, v := range m {
		if s, ok := v.(string); ok && (strings.Contains(s, "supersecret") || strings.Contains(s, "Bearer")) {
			t.Errorf("%s leaks a header value: %q", k, s)
		}
	}
}

func TestLogAttrs_Optional(t *testing.T) {
	cfg := Default()
	m := attrMap(t, LogAttrs(cfg))
	for _, k := range []string{"resp_addr", "local_socket", "tracing_endpoint"} {
		if _, ok := m[k]; ok {
			t.Errorf("%s should be omitted by default", k)
		}
	}
	if m["http_addr"] != cfg.Server.HTTP.Addr {
		t.Errorf("http_addr = %v", m["http_addr"])
	}

	cfg.Server.RESP.Enabled = true
	cfg.Server.Local.Socket = "/run/tokcodec.sock"
	cfg.Server.HTTP.RateLimit.Enabled = false
	m = attrMap(t, LogAttrs(cfg))
	if m["resp_addr"] != cfg.Server.RESP.Addr || m["local_socket"] != "/run/tokcodec.sock" {
		t.Errorf("attrs = %v", m)
	}
	if m["http_rps"] != float64(0) {
		t.Errorf("http_rps = %v, want 0 when rate limiting is off", m["http_rps"])
	}
}
