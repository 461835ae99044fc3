package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yndnr/tokcodec-go/internal/core/domain"
)

// codeOK marks a successful envelope.
const codeOK = "OK"

// Response is the JSON envelope of every endpoint except /metrics.
type Response struct {
	Code      string        `json:"code"`
	Message   string        `json:"message"`
	RequestID string        `json:"request_id"`
	Timestamp int64         `json:"timestamp"` // Unix milliseconds
	Data      any           `json:"data,omitempty"`
	Details   *ErrorDetails `json:"details,omitempty"`
}

// ErrorDetails narrows an error code, e.g. {"reason": "invalid_utf8"}.
type ErrorDetails struct {
	Reason string `json:"reason"`
}

// NewResponse wraps data in a success envelope.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      codeOK,
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// ErrorResponse renders de. Its Details become details.reason.
func ErrorResponse(requestID string, de *domain.DomainError) *Response {
	resp := &Response{
		Code:      de.Code,
		Message:   de.Message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
	if de.Details != "" {
		resp.Details = &ErrorDetails{Reason: de.Details}
	}
	return resp
}

// WriteResponse writes resp with status. The request ID is echoed in
// X-Request-ID and error codes in X-Error-Code.
func WriteResponse(w http.ResponseWriter, status int, resp *Response) error {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	if resp.RequestID != "" {
		h.Set("X-Request-ID", resp.RequestID)
	}
	if resp.Code != codeOK {
		h.Set("X-Error-Code", resp.Code)
	}
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}

// EncodeRequest is the body of POST /tokens/encode.
// A nil Text means the field was absent; "" is a valid input.
type EncodeRequest struct {
	Text *string `json:"text"`
}

// TokenRequest is the body of the endpoints taking one token. A nil
// Token means the field was absent.
type TokenRequest struct {
	Token *string `json:"token"`
}

// token returns the token, or "" when absent.
func (r TokenRequest) token() string {
	if r.Token == nil {
		return ""
	}
	return *r.Token
}

// GenerateRequest is the body of POST /tokens/generate. Its layout
// matches domain.Identity so one converts to the other.
type GenerateRequest struct {
	LoginMasterID string `json:"login_master_id"`
	DatabaseName  string `json:"database_name"`
	OrgID         string `json:"org_id"`
}

// HealthResponse is the data of /health and /ready.
type HealthResponse struct {
	Status  string `json:"status"`
	Time    string `json:"time"`
	Version string `json:"version,omitempty"`
}
