package httpserver

import (
	"net/http"

	"github.com/yndnr/tokcodec-go/internal/core/service"
	"github.com/yndnr/tokcodec-go/internal/server/httpserver/handler"
	"github.com/yndnr/tokcodec-go/internal/telemetry/logger"
	"github.com/yndnr/tokcodec-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// TokenService handles token operations.
	TokenService *service.TokenService

	// Logger for request logging.
	Logger logger.Logger

	// Metrics receives request metrics and backs the metrics endpoint.
	Metrics *metric.Registry

	// MetricsPath serves Prometheus metrics. Empty disables the endpoint.
	MetricsPath string

	// CORSAllowedOrigins is the list of allowed CORS origins (empty = no CORS headers).
	CORSAllowedOrigins []string

	// RateLimitRPS is the per-client rate limit (0 = unlimited).
	RateLimitRPS float64

	// RateLimitBurst is the per-client bucket size.
	RateLimitBurst int

	// EnableAudit enables access logging for token requests.
	EnableAudit bool
}

// Router is the top-level HTTP handler.
type Router struct {
	mux     *http.ServeMux
	handler *handler.Handler
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// SetReady toggles the readiness probe.
func (rt *Router) SetReady(ready bool) {
	rt.handler.SetReady(ready)
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) *Router {
	l := cfg.Logger
	if l == nil {
		l = logger.Default()
	}
	reg := cfg.Metrics
	if reg == nil {
		reg = metric.Global()
	}

	h := handler.New(cfg.TokenService, l)
	mux := http.NewServeMux()

	// Probes: no rate limiting, no audit
	probe := Chain(h, Recover(l), RequestID())
	mux.Handle("GET /health", probe)
	mux.Handle("GET /ready", probe)

	if cfg.MetricsPath != "" {
		mux.Handle("GET "+cfg.MetricsPath, Chain(reg.Handler(), Recover(l)))
	}

	// Token API
	// Order: Recover -> CORS -> RequestID -> Trace -> RateLimit -> Metrics -> Audit -> Handler
	chain := []Middleware{Recover(l), CORS(cfg.CORSAllowedOrigins), RequestID(), Trace()}
	if cfg.RateLimitRPS > 0 {
		chain = append(chain, RateLimit(cfg.RateLimitRPS, max(cfg.RateLimitBurst, 1)))
	}
	chain = append(chain, Metrics(reg))
	if cfg.EnableAudit {
		chain = append(chain, Audit(l))
	}
	api := Chain(h, chain...)

	for _, route := range handler.Routes() {
		if route == "GET /health" || route == "GET /ready" {
			continue
		}
		mux.Handle(route, api)
	}
	mux.Handle("OPTIONS /tokens/", Chain(http.NotFoundHandler(), Recover(l), CORS(cfg.CORSAllowedOrigins)))

	return &Router{mux: mux, handler: h}
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		MetricsPath:    "/metrics",
		RateLimitRPS:   100,
		RateLimitBurst: 200,
		EnableAudit:    true,
	}
}
