// Package benchmark measures the codec and its HTTP and RESP front ends.
//
//	go test -run=^$ -bench=. -benchmem ./internal/tests/benchmark/...
//
// Compare two runs with benchstat.
package benchmark
