// Package service provides domain services for tokcodec.
//
// Domain services orchestrate the token codec for the presentation layers
// (HTTP handlers, CLI commands, REPL). This package contains:
//
//   - TokenService: encode, decode, normalize, generate and inspect
//
// Services are stateless apart from injected infrastructure (logger,
// metrics registry, clock) and are safe for concurrent use.
package service
