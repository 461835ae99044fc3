// Package localserver serves the HTTP API on a Unix domain socket.
//
// The socket gives local tools access to the token API without opening a
// TCP port. Access is controlled by file system permissions: the socket
// is created with mode 0600.
//
// tokcodec-cli reaches it with --server unix:///path/to/tokcodec.sock.
package localserver
