// Package command builds the tokcodec-cli application on urfave/cli/v2.
//
// Token commands run against a connection.Backend: the in-process codec by
// default, or the HTTP API of a tokcodec-server when --server or the
// config file names one. Global flags are merged over the CLI config file
// in the Before hook.
package command
