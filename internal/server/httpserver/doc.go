// Package httpserver provides the HTTP/HTTPS server for tokcodec.
//
// This package implements the JSON API using stdlib net/http:
//
//   - Token endpoints: /tokens/{encode,decode,normalize,generate,inspect}
//   - Health endpoints: /health, /ready
//   - Prometheus metrics at a configurable path
//
// Features:
//
//   - Optional TLS
//   - Middleware chain: Recover, CORS, RequestID, Trace, RateLimit, Metrics, Audit
//   - Graceful shutdown driven by internal/infra/shutdown
package httpserver
