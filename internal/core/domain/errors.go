package domain

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// DomainError is an error with a stable code shared by the HTTP API, the
// RESP listener and the CLI.
//
// Codes read TC-<AREA>-<NNNN>. In the TOKN and SYS areas NNNN is the HTTP
// status times ten; ARG codes are numbered and always map to 400.
type DomainError struct {
	Code    string
	Message string
	Details string
	Cause   error
}

// NewDomainError returns an error without details or cause.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString("[" + e.Code + "] " + e.Message)
	if e.Details != "" {
		b.WriteString(": " + e.Details)
	}
	return b.String()
}

func (e *DomainError) Unwrap() error { return e.Cause }

// Is matches any *DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// WithDetails returns a copy with Details set.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// Status returns the HTTP status for e.
func (e *DomainError) Status() int {
	return HTTPStatus(e.Code)
}

// HTTPStatus maps an error code to an HTTP status. Unknown codes map
// to 500.
func HTTPStatus(code string) int {
	parts := strings.Split(code, "-")
	if len(parts) != 3 || parts[0] != "TC" {
		return http.StatusInternalServerError
	}
	if parts[1] == "ARG" {
		return http.StatusBadRequest
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n%10 != 0 || http.StatusText(n/10) == "" || n/10 < 400 {
		return http.StatusInternalServerError
	}
	return n / 10
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Token errors.
var (
	ErrTokenMalformed = NewDomainError("TC-TOKN-4000", "malformed token")
)

// System errors.
var (
	ErrBadRequest     = NewDomainError("TC-SYS-4000", "bad request")
	ErrRateLimited    = NewDomainError("TC-SYS-4290", "too many requests")
	ErrInternalServer = NewDomainError("TC-SYS-5000", "internal server error")
	// ErrNotReady is returned by /ready while the server drains.
	ErrNotReady = NewDomainError("TC-SYS-5030", "service not ready")
)

// Argument errors.
var (
	ErrInvalidArgument = NewDomainError("TC-ARG-1001", "invalid argument")
	ErrInvalidBody     = NewDomainError("TC-ARG-1001", "invalid request body")
	ErrMissingArgument = NewDomainError("TC-ARG-1002", "missing required argument")
	// ErrTokenRequired shares the code of ErrMissingArgument, so
	// errors.Is matches either.
	ErrTokenRequired = NewDomainError("TC-ARG-1002", "token is required")
)
