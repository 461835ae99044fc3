// Package token implements the auth token codec.
package token

import (
	"errors"
	"fmt"
)

// ErrDecode matches every *DecodeError via errors.Is.
var ErrDecode = errors.New("token: decode failed")

// DecodeReason tells why a decode failed.
type DecodeReason string

const (
	// ReasonInvalidEncoding means the input violates the base64 alphabet or padding.
	ReasonInvalidEncoding DecodeReason = "invalid_encoding"

	// ReasonInvalidUTF8 means the decoded bytes are not UTF-8 text.
	ReasonInvalidUTF8 DecodeReason = "invalid_utf8"
)

// DecodeError is returned when an encoded token cannot be decoded.
type DecodeError struct {
	Reason DecodeReason
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("token: decode failed (%s): %v", e.Reason, e.Err)
	default:
		return fmt.Sprintf("token: decode failed (%s)", e.Reason)
	}
}

// Unwrap returns the underlying base64 error, if any.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
