// Package tracer provides distributed tracing for tokcodec.
//
// This package wraps the OpenTelemetry SDK:
//
//   - otel.go: tracer provider setup and span helpers
//
// When no OTLP endpoint is configured, spans are still created and
// propagated (so trace IDs appear in logs) but nothing is exported.
package tracer
