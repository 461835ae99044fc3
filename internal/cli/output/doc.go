// Package output renders tokcodec-cli results as tables, JSON or YAML.
//
// Tables are the interactive view: an inspected token shows its plain
// and encoded forms, the decoded fields when it has five of them, and a
// freshly generated token built from them. JSON and YAML keep the field
// order of token mappings so scripted output matches the token layout.
package output
