// Package repl runs the interactive shell of tokcodec-cli.
//
// Lines starting with a known verb (encode, decode, fields, normalize,
// generate, inspect) run that operation. Any other line is inspected as a
// token. History survives restarts through a small line-per-entry file.
package repl
