// Package confloader loads layered configuration with koanf and watches
// the configuration file with fsnotify.
//
// Layers, lowest to highest: defaults, YAML file, TOKCODEC_* environment
// variables, overrides (command-line flags). Environment variables map
// to keys by dropping the prefix, lowercasing and turning underscores
// into dots, so keys settable from the environment contain no
// underscores.
package confloader
