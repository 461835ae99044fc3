// Package connection selects where tokcodec-cli runs token operations.
package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/tokcodec-go/internal/core/domain"
	"github.com/yndnr/tokcodec-go/internal/core/service"
	"github.com/yndnr/tokcodec-go/internal/infra/buildinfo"
	"github.com/yndnr/tokcodec-go/internal/telemetry/tracer"
)

// DefaultTimeout bounds each HTTP request.
const DefaultTimeout = 30 * time.Second

// HTTPClient provides HTTP communication with a tokcodec-server.
// It implements Backend.
type HTTPClient struct {
	baseURL string
	target  string
	socket  string
	client  *http.Client
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithTLSConfig sets the TLS config used for https servers.
func WithTLSConfig(cfg *tls.Config) ClientOption {
	return func(c *HTTPClient) {
		c.client.Transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: cfg,
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// UnixScheme addresses a server listening on a Unix socket:
// unix:///run/tokcodec.sock.
const UnixScheme = "unix://"

// NewHTTPClient creates a new HTTP client. server is a host:port, an
// http(s) URL or a unix:// socket path.
func NewHTTPClient(server string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	if path, ok := strings.CutPrefix(server, UnixScheme); ok {
		c.socket = path
		c.baseURL = "http://unix"
		c.target = server
	} else {
		// Ensure baseURL has http:// prefix
		c.baseURL = strings.TrimRight(server, "/")
		if !strings.HasPrefix(c.baseURL, "http://") && !strings.HasPrefix(c.baseURL, "https://") {
			c.baseURL = "http://" + c.baseURL
		}
		c.target = c.baseURL
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.socket != "" {
		socket := c.socket
		c.client.Transport = &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socket)
			},
		}
	}
	return c
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.addHeaders(ctx, req)
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.addHeaders(ctx, req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.client.Do(req)
}

// addHeaders adds tracing and common headers.
func (c *HTTPClient) addHeaders(ctx context.Context, req *http.Request) {
	tracer.Inject(ctx, req.Header)
	req.Header.Set("User-Agent", "tokcodec-cli/"+buildinfo.Get().Version)
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Target returns the server URL, or the unix:// address for socket
// connections.
func (c *HTTPClient) Target() string {
	return c.target
}

// SocketPath returns the Unix socket path, or "" for TCP servers.
func (c *HTTPClient) SocketPath() string {
	return c.socket
}

func (c *HTTPClient) Encode(ctx context.Context, text string) (*service.EncodeResponse, error) {
	return post[service.EncodeResponse](ctx, c, "/tokens/encode", map[string]string{"text": text})
}

func (c *HTTPClient) Decode(ctx context.Context, token string) (*service.DecodeResponse, error) {
	return post[service.DecodeResponse](ctx, c, "/tokens/decode", map[string]string{"token": token})
}

func (c *HTTPClient) Normalize(ctx context.Context, token string) (*service.NormalizeResponse, error) {
	return post[service.NormalizeResponse](ctx, c, "/tokens/normalize", map[string]string{"token": token})
}

func (c *HTTPClient) Generate(ctx context.Context, id domain.Identity) (*service.GenerateResponse, error) {
	return post[service.GenerateResponse](ctx, c, "/tokens/generate", id)
}

func (c *HTTPClient) Inspect(ctx context.Context, token string) (*service.InspectResponse, error) {
	return post[service.InspectResponse](ctx, c, "/tokens/inspect", map[string]string{"token": token})
}

// Health checks GET /health.
func (c *HTTPClient) Health(ctx context.Context) (*Health, error) {
	resp, err := c.Get(ctx, "/health")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var out Health
	if err := ParseResponse(resp, &out); err != nil {
		return nil, err
	}
	out.Target = c.target
	return &out, nil
}

// post sends body to path and decodes the response data as T.
func post[T any](ctx context.Context, c *HTTPClient, path string, body any) (*T, error) {
	resp, err := c.Post(ctx, path, body)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var out T
	if err := ParseResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// envelope is the server's response wrapper.
type envelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Details map[string]string `json:"details"`
}

// ParseResponse unwraps the response envelope into target.
//
// Error envelopes become *domain.DomainError values carrying the server's
// code, so errors.Is works against the domain sentinels.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode >= 400 {
		if decodeErr == nil && env.Code != "" {
			de := domain.NewDomainError(env.Code, env.Message)
			if reason := env.Details["reason"]; reason != "" {
				de = de.WithDetails(reason)
			}
			return de
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if decodeErr != nil {
		return fmt.Errorf("parse response: %w", decodeErr)
	}

	if target != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return fmt.Errorf("parse response data: %w", err)
		}
	}

	return nil
}
