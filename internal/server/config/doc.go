// Package config defines ServerConfig, its defaults and its validation.
//
// Values reach ServerConfig through internal/infra/confloader, so a field
// can be set from the YAML file, from TOKCODEC_<SECTION>_<KEY> variables
// or from command line overrides. LogAttrs summarizes the result for the
// startup log without exporter header values.
package config
