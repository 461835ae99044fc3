// Package connection selects where tokcodec-cli runs token operations.
//
// A Backend either calls the codec in-process (Local) or talks to a
// tokcodec-server over HTTP (Remote). The Manager picks one from the
// --server flag.
package connection
