// Package metric holds the Prometheus collectors shared by the codec
// service and its transports, and serves them over HTTP.
package metric
