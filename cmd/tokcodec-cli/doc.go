// Command tokcodec-cli encodes, decodes, normalizes and generates auth
// tokens. It runs in-process by default and talks to a tokcodec-server
// when --server is given:
//
//	tokcodec-cli encode 'L1&DB1&O1'
//	tokcodec-cli inspect TDEmREIxJk8x
//	tokcodec-cli -s localhost:5080 -o json generate -l L1 -d DB1 --org-id O1
//	tokcodec-cli shell
//
// A lone token argument is inspected. No arguments start the shell.
package main
