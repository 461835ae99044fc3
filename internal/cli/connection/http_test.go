package connection

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/tokcodec-go/internal/core/domain"
	"github.com/yndnr/tokcodec-go/internal/core/service"
	"github.com/yndnr/tokcodec-go/internal/server/httpserver"
	"github.com/yndnr/tokcodec-go/internal/telemetry/logger"
	"github.com/yndnr/tokcodec-go/internal/telemetry/metric"
)

var fixedNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestService() *service.TokenService {
	return service.NewTokenService(
		service.WithLogger(logger.Nop()),
		service.WithMetrics(metric.NewRegistry()),
		service.WithClock(func() time.Time { return fixedNow }),
	)
}

// newTestServer runs the real HTTP API in-process.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := httpserver.DefaultRouterConfig()
	cfg.TokenService = newTestService()
	cfg.Logger = logger.Nop()
	cfg.Metrics = metric.NewRegistry()
	cfg.EnableAudit = false
	srv := httptest.NewServer(httpserver.NewRouter(cfg))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewHTTPClient(t *testing.T) {
	tests := []struct {
		name       string
		server     string
		wantPrefix string
	}{
		{"with http prefix", "http://localhost:8080", "http://localhost:8080"},
		{"with https prefix", "https://localhost:8080", "https://localhost:8080"},
		{"without prefix", "localhost:8080", "http://localhost:8080"},
		{"trailing slash", "localhost:8080/", "http://localhost:8080"},
		{"hostname only", "api.example.com", "http://api.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewHTTPClient(tt.server)
			if client.BaseURL() != tt.wantPrefix {
				t.Errorf("BaseURL() = %q, want %q", client.BaseURL(), tt.wantPrefix)
			}
			if client.Target() != tt.wantPrefix {
				t.Errorf("Target() = %q", client.Target())
			}
		})
	}
}

func TestHTTPClient_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "tokcodec-cli/") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		if r.Method == http.MethodPost && r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		w.Write([]byte(`{"code":"OK","data":{"status":"healthy"}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	if _, err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if _, err := client.Encode(context.Background(), "a"); err != nil {
		t.Fatalf("Encode: %v", err)
	}
}

func TestHTTPClient_AgainstServer(t *testing.T) {
	srv := newTestServer(t)
	client := NewHTTPClient(srv.URL)
	ctx := context.Background()

	enc, err := client.Encode(ctx, "L1&DB1&O1")
	if err != nil || enc.EncodedToken != "TDEmREIxJk8x" {
		t.Fatalf("Encode = %+v, %v", enc, err)
	}

	dec, err := client.Decode(ctx, "TDEmREIxJk8x")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dec.PlainToken != "L1&DB1&O1" || dec.Fields.Value("OrgID") != "O1" {
		t.Errorf("Decode = %+v", dec)
	}

	norm, err := client.Normalize(ctx, "a&b&c&d&e")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if norm.Form != "plain" || norm.EncodedToken != "YSZiJmMmZCZl" || norm.Fields.Len() != 5 {
		t.Errorf("Normalize = %+v", norm)
	}

	gen, err := client.Generate(ctx, domain.Identity{LoginMasterID: "L1", DatabaseName: "DB1", OrgID: "O1"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gen.PlainToken != "2024-01-02T00:00:00+00:00&L1&DB1&2024-01-01T00:00:00+00:00&O1" {
		t.Errorf("Generate = %+v", gen)
	}

	insp, err := client.Inspect(ctx, gen.EncodedToken)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !insp.ShowFields || insp.Generated == nil || insp.PlainToken != gen.PlainToken {
		t.Errorf("Inspect = %+v", insp)
	}

	health, err := client.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Status != "healthy" || health.Target != srv.URL {
		t.Errorf("Health = %+v", health)
	}
}

func TestHTTPClient_DomainErrors(t *testing.T) {
	srv := newTestServer(t)
	client := NewHTTPClient(srv.URL)
	ctx := context.Background()

	_, err := client.Decode(ctx, "not base64!")
	if !errors.Is(err, domain.ErrTokenMalformed) {
		t.Errorf("Decode error = %v, want ErrTokenMalformed", err)
	}
	var de *domain.DomainError
	if errors.As(err, &de) && de.Details != "invalid_encoding" {
		t.Errorf("Details = %q", de.Details)
	}

	_, err = client.Inspect(ctx, "   ")
	if !errors.Is(err, domain.ErrTokenRequired) {
		t.Errorf("Inspect error = %v, want ErrTokenRequired", err)
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"success", 200, `{"code":"OK","data":{"status":"ok"}}`, ""},
		{"domain error", 400, `{"code":"TC-ARG-1001","message":"invalid request body"}`, "[TC-ARG-1001] invalid request body"},
		{"plain error", 502, `bad gateway`, "request failed with status 502"},
		{"bad json", 200, `{`, "parse response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rec.WriteHeader(tt.status)
			rec.WriteString(tt.body)

			var out struct {
				Status string `json:"status"`
			}
			err := ParseResponse(rec.Result(), &out)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if out.Status != "ok" {
					t.Errorf("Status = %q", out.Status)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPClient_Unreachable(t *testing.T) {
	client := NewHTTPClient("127.0.0.1:1")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := client.Encode(ctx, "a"); err == nil || !strings.Contains(err.Error(), "request failed") {
		t.Errorf("error = %v", err)
	}
}

func TestHTTPClient_TLS(t *testing.T) {
	cfg := httpserver.DefaultRouterConfig()
	cfg.TokenService = newTestService()
	cfg.Logger = logger.Nop()
	cfg.Metrics = metric.NewRegistry()
	srv := httptest.NewTLSServer(httpserver.NewRouter(cfg))
	defer srv.Close()

	trusted := srv.Client().Transport.(*http.Transport).TLSClientConfig

	client := NewHTTPClient(srv.URL, WithTLSConfig(trusted), WithTimeout(5*time.Second))
	enc, err := client.Encode(context.Background(), "a")
	if err != nil {
		t.Fatalf("Encode over TLS: %v", err)
	}
	if enc.EncodedToken != "YQ==" {
		t.Errorf("EncodedToken = %q", enc.EncodedToken)
	}

	untrusted := NewHTTPClient(srv.URL, WithTimeout(5*time.Second))
	if _, err := untrusted.Encode(context.Background(), "a"); err == nil {
		t.Error("expected certificate verification failure")
	}
}

func TestHTTPClient_UnixSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tc.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatal(err)
	}

	cfg := httpserver.DefaultRouterConfig()
	cfg.TokenService = newTestService()
	cfg.Logger = logger.Nop()
	cfg.Metrics = metric.NewRegistry()
	srv := httptest.NewUnstartedServer(httpserver.NewRouter(cfg))
	srv.Listener.Close()
	srv.Listener = ln
	srv.Start()
	defer srv.Close()

	client := NewHTTPClient("unix://"+path, WithTimeout(5*time.Second))
	if client.SocketPath() != path {
		t.Errorf("SocketPath() = %q", client.SocketPath())
	}
	if client.Target() != "unix://"+path {
		t.Errorf("Target() = %q", client.Target())
	}

	enc, err := client.Encode(context.Background(), "L1&DB1&O1")
	if err != nil {
		t.Fatalf("Encode over socket: %v", err)
	}
	if enc.EncodedToken != "TDEmREIxJk8x" {
		t.Errorf("EncodedToken = %q", enc.EncodedToken)
	}
}
