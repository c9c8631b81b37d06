package util

import "runtime"

// GetOptimalPoolSize returns the number of parsers per grammar, and of
// indexing workers: min(max(NumCPU*2, 4), 32).
//
// Parsing runs in cgo, so twice the core count keeps cores busy while
// goroutines block in C. Workers and parsers share the figure so that a
// worker never waits on an empty parser pool.
func GetOptimalPoolSize() int {
	size := runtime.NumCPU() * 2
	if size < 4 {
		size = 4
	}
	if size > 32 {
		size = 32
	}
	return size
}

// GetOptimalPoolSizeWithOverride returns override when positive, otherwise
// GetOptimalPoolSize().
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
