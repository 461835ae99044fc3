// Command tokcodec-server serves the token codec over HTTP(S), and
// optionally over the Redis protocol and a local Unix socket.
//
//	tokcodec-server --config /etc/tokcodec/server.yaml
//	TOKCODEC_HTTP_ADDR=:8080 tokcodec-server
//
// Flags override TOKCODEC_* variables, which override the file. Changes to
// the file re-apply the log level without a restart.
package main
