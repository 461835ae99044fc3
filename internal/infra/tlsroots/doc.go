// Package tlsroots holds the TLS material of tokcodec.
//
// Clients trust the system roots plus an optional CA bundle (LoadPool,
// ClientConfig). Servers take their certificate from a CertReloader,
// which swaps in a new pair when the files are rewritten and keeps the
// old one when the new pair does not load.
package tlsroots
