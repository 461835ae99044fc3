// Package domain defines the core domain models for tokcodec.
//
// Domain models are pure values without any IO dependencies or framework
// coupling. This package contains:
//
//   - Identity: the caller-supplied fields of a generated auth token
//   - Errors: coded domain errors shared by the HTTP and CLI layers
//
// The token wire format itself lives in pkg/token.
package domain
