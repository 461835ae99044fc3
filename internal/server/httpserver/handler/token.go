// Package handler provides HTTP request handlers for tokcodec.
package handler

import (
	"net/http"

	"github.com/yndnr/tokcodec-go/internal/core/domain"
)

// handleEncode handles POST /tokens/encode.
func (h *Handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req EncodeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if req.Text == nil {
		h.handleServiceError(w, r, domain.ErrMissingArgument.WithDetails("text"))
		return
	}

	h.writeJSON(w, r, http.StatusOK, h.tokenSvc.Encode(r.Context(), *req.Text))
}

// handleDecode handles POST /tokens/decode.
func (h *Handler) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if req.Token == nil {
		h.handleServiceError(w, r, domain.ErrTokenRequired)
		return
	}

	resp, err := h.tokenSvc.Decode(r.Context(), *req.Token)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}

// handleNormalize handles POST /tokens/normalize.
func (h *Handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if req.Token == nil {
		h.handleServiceError(w, r, domain.ErrTokenRequired)
		return
	}

	h.writeJSON(w, r, http.StatusOK, h.tokenSvc.Normalize(r.Context(), *req.Token))
}

// handleGenerate handles POST /tokens/generate.
// Identity values are not validated; empty segments are allowed.
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	h.writeJSON(w, r, http.StatusOK, h.tokenSvc.Generate(r.Context(), domain.Identity(req)))
}

// handleInspect handles POST /tokens/inspect. Unlike the other token
// endpoints a blank token is rejected, by the service.
func (h *Handler) handleInspect(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	resp, err := h.tokenSvc.Inspect(r.Context(), req.token())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}
