// Package logger is the structured logging layer of tokcodec.
//
// Loggers are built from Config with either the log/slog backend (the
// default) or go.uber.org/zap. Both share one level, changed at runtime
// with SetLevel, and the same redaction rules: values under keys such as
// "token" or "secret" are replaced and values shaped like a plain token
// are masked.
//
// Request identifiers travel in a Scope stored on the context. A logger
// bound with WithContext, or obtained with L, appends the transport,
// request_id and trace_id of that scope to each entry.
package logger
