package util

import "runtime"

// GetOptimalPoolSize returns the concurrency limit for file-bound work such
// as reading content files or parsing config sources.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
//   - 1-2 cores: 4
//   - 4 cores: 8
//   - 16+ cores: 32
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2
	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}
	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when positive and
// GetOptimalPoolSize() otherwise.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
