// Package config reads and writes ~/.tokcodec/cli.yaml.
//
// The file picks the default server (empty runs the codec in-process),
// the output format and the REPL history file and size.
package config
