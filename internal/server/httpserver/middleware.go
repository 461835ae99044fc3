package httpserver

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/tokcodec-go/internal/core/domain"
	"github.com/yndnr/tokcodec-go/internal/server/httpserver/handler"
	"github.com/yndnr/tokcodec-go/internal/telemetry/logger"
	"github.com/yndnr/tokcodec-go/internal/telemetry/metric"
	"github.com/yndnr/tokcodec-go/internal/telemetry/tracer"
)

// Middleware decorates an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain wraps h so that middlewares run in the order given.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for _, m := range slices.Backward(middlewares) {
		h = m(h)
	}
	return h
}

// RequestID tags the request with the caller's X-Request-ID, or a fresh
// "req-<ulid>" when none was sent, and echoes it in the response.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = "req-" + ulid.Make().String()
			}
			w.Header().Set("X-Request-ID", id)

			ctx := logger.WithScope(r.Context(), logger.Scope{Transport: "http", RequestID: id})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Trace opens a server span per request. Incoming W3C trace context is
// continued and the trace ID is attached to the request's log scope.
func Trace() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.StartSpan(tracer.Extract(r.Context(), r.Header), "HTTP "+routeOf(r))
			defer span.End()
			span.SetAttribute("http.request.method", r.Method)
			span.SetAttribute("url.path", r.URL.Path)
			if id := tracer.TraceID(ctx); id != "" {
				ctx = logger.WithTraceID(ctx, id)
			}

			rec := record(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			span.SetAttribute("http.response.status_code", rec.status)
			if rec.status >= http.StatusInternalServerError {
				span.RecordError(fmt.Errorf("http status %d", rec.status))
			}
		})
	}
}

// Metrics counts requests and observes their latency per route.
func Metrics(reg *metric.Registry) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec, took := serveRecorded(next, w, r)
			reg.RecordRequest(r.Method, routeOf(r), rec.status, took)
		})
	}
}

// Audit writes one access log line per request. The level follows the
// response class.
func Audit(l logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec, took := serveRecorded(next, w, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", took.Milliseconds(),
				"client_ip", clientIP(r),
			}
			log := l.WithContext(r.Context())
			switch {
			case rec.status >= 500:
				log.Error("request completed with error", attrs...)
			case rec.status >= 400:
				log.Warn("request completed with client error", attrs...)
			default:
				log.Info("request completed", attrs...)
			}
		})
	}
}

// Recover turns a handler panic into a TC-SYS-5000 response.
// http.ErrAbortHandler is re-raised.
func Recover(l logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				l.WithContext(r.Context()).Error("panic recovered", "panic", v, "path", r.URL.Path)
				writeError(w, r, domain.ErrInternalServer)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORS sets Access-Control headers for the listed origins ("*" allows
// any) and answers preflight requests with 204.
func CORS(allowedOrigins []string) Middleware {
	anyOrigin := slices.Contains(allowedOrigins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (anyOrigin || slices.Contains(allowedOrigins, origin)) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, traceparent")
				h.Set("Access-Control-Max-Age", "86400")
				h.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder remembers the first status written through it.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

// record wraps w, reusing w when it is already a statusRecorder.
func record(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.written {
		s.status, s.written = code, true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func serveRecorded(next http.Handler, w http.ResponseWriter, r *http.Request) (*statusRecorder, time.Duration) {
	start := time.Now()
	rec := record(w)
	next.ServeHTTP(rec, r)
	return rec, time.Since(start)
}

// routeOf returns the matched route path without its method, or
// "unmatched" when the mux found no route.
func routeOf(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}

// writeError answers with de before the request reaches the handler.
func writeError(w http.ResponseWriter, r *http.Request, de *domain.DomainError) {
	_ = handler.WriteResponse(w, de.Status(), handler.ErrorResponse(logger.RequestIDFromContext(r.Context()), de))
}
