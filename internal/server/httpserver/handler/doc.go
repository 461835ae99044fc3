// Package handler serves the tokcodec JSON API on a net/http ServeMux.
//
// Every response is a Response envelope. Token endpoints take a JSON
// body, call the token service and answer 200 with the result in data;
// domain errors keep their TC-* code and map to the HTTP status derived
// from it. /health and /ready are the liveness and readiness probes.
package handler
