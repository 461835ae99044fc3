// Package handler provides HTTP request handlers for tokcodec.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/yndnr/tokcodec-go/internal/core/domain"
	"github.com/yndnr/tokcodec-go/internal/core/service"
	"github.com/yndnr/tokcodec-go/internal/telemetry/logger"
)

// maxBodyBytes bounds request bodies. Tokens are short.
const maxBodyBytes = 64 << 10

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	tokenSvc *service.TokenService
	logger   logger.Logger
	mux      *http.ServeMux
	ready    atomic.Bool
}

// New creates a new Handler with the given service.
func New(tokenSvc *service.TokenService, l logger.Logger) *Handler {
	if l == nil {
		l = logger.Default()
	}
	h := &Handler{
		tokenSvc: tokenSvc,
		logger:   l.With("component", "http_handler"),
		mux:      http.NewServeMux(),
	}
	h.ready.Store(true)

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// SetReady toggles the readiness probe. The server clears it while draining.
func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	// Health endpoints
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	// Token endpoints
	h.mux.HandleFunc("POST /tokens/encode", h.handleEncode)
	h.mux.HandleFunc("POST /tokens/decode", h.handleDecode)
	h.mux.HandleFunc("POST /tokens/normalize", h.handleNormalize)
	h.mux.HandleFunc("POST /tokens/generate", h.handleGenerate)
	h.mux.HandleFunc("POST /tokens/inspect", h.handleInspect)
}

// Routes lists the method patterns served by the handler.
func Routes() []string {
	return []string{
		"GET /health",
		"GET /ready",
		"POST /tokens/encode",
		"POST /tokens/decode",
		"POST /tokens/normalize",
		"POST /tokens/generate",
		"POST /tokens/inspect",
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	if err := WriteResponse(w, status, NewResponse(getRequestID(r), data)); err != nil {
		h.logger.WithContext(r.Context()).Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, de *domain.DomainError) {
	_ = WriteResponse(w, de.Status(), ErrorResponse(getRequestID(r), de))
}

// decodeBody reads a JSON request body of at most maxBodyBytes into v.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		h.writeError(w, r, domain.ErrInvalidBody)
		return false
	}
	return true
}

// getRequestID extracts request ID from context or header.
func getRequestID(r *http.Request) string {
	// Set by the RequestID middleware
	if reqID := logger.RequestIDFromContext(r.Context()); reqID != "" {
		return reqID
	}
	return r.Header.Get("X-Request-ID")
}

// handleServiceError answers with the domain error in err's chain, or
// with a 500 for anything else.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		h.logger.WithContext(r.Context()).Error("internal error", "error", err)
		de = domain.ErrInternalServer
	}
	h.writeError(w, r, de)
}
