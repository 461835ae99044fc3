// Package metric provides Prometheus metrics for tokcodec.
//
// It exposes metrics in Prometheus format for monitoring
// token operations, request rates and latencies.
package metric

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/tokcodec-go/internal/infra/buildinfo"
)

// Namespace prefixes every metric name.
const Namespace = "tokcodec"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Token metrics
	TokensEncoded    prometheus.Counter
	TokensDecoded    *prometheus.CounterVec // result: ok, error
	TokensNormalized *prometheus.CounterVec // form: plain, encoded
	TokensGenerated  prometheus.Counter

	// Request metrics
	RequestsTotal   *prometheus.CounterVec   // method, route, status
	RequestDuration *prometheus.HistogramVec // method, route

	// RESP listener metrics
	CommandsTotal     *prometheus.CounterVec // command, result
	ConnectionsActive prometheus.Gauge
}

// NewRegistry creates a new metrics registry with Go runtime, process and
// build info collectors registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		TokensEncoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tokens_encoded_total",
			Help:      "Total number of texts encoded into tokens",
		}),
		TokensDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tokens_decoded_total",
			Help:      "Total number of explicit token decodes by result",
		}, []string{"result"}),
		TokensNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tokens_normalized_total",
			Help:      "Total number of normalized tokens by detected form",
		}, []string{"form"}),
		TokensGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tokens_generated_total",
			Help:      "Total number of generated auth tokens",
		}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "resp",
			Name:      "commands_total",
			Help:      "Total number of RESP commands by command and result",
		}, []string{"command", "result"}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "resp",
			Name:      "connections_active",
			Help:      "Number of open RESP connections",
		}),
	}

	r.registry.MustRegister(
		r.TokensEncoded,
		r.TokensDecoded,
		r.TokensNormalized,
		r.TokensGenerated,
		r.RequestsTotal,
		r.RequestDuration,
		r.CommandsTotal,
		r.ConnectionsActive,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		NewCollector(buildinfo.Get()),
	)

	return r
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Handler returns an HTTP handler for the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler exposing this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry: r.registry,
	})
}

// Gatherer exposes the underlying registry for tests and tooling.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RecordNormalize counts one normalization by detected form.
func (r *Registry) RecordNormalize(form string) {
	r.TokensNormalized.WithLabelValues(form).Inc()
}

// RecordDecode counts one explicit decode.
func (r *Registry) RecordDecode(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.TokensDecoded.WithLabelValues(result).Inc()
}

// RecordRequest records a finished HTTP request.
func (r *Registry) RecordRequest(method, route string, status int, elapsed time.Duration) {
	r.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordCommand counts one RESP command.
func (r *Registry) RecordCommand(command string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.CommandsTotal.WithLabelValues(command, result).Inc()
}
