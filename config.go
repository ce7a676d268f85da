// Package spmv configuration constants
package spmv

// Group widths benchmarked by the harness, in the order they are reported.
var GroupWidths = []int{2, 4, 8, 16, 32}

// Kernel launch parameters
const (
	// MaxGroupWidth is the widest supported vector group
	MaxGroupWidth = 32

	// DefaultBlockSize is the threads-per-block used for SpMV launches
	DefaultBlockSize = 128

	// MaxThreadsPerBlock caps any single block (CUDA compatibility)
	MaxThreadsPerBlock = 1024
)

// Benchmark parameters
const (
	// WarmupIterations is the number of untimed launches before the clock starts
	WarmupIterations = 1

	// BenchmarkIterations is the number of timed launches per width
	BenchmarkIterations = 100
)

// Modelled per-multiprocessor resource limits for the CPU device. The values
// track a contemporary accelerator generation so the occupancy arithmetic
// exercises the same constraints a real device query would return.
const (
	MaxThreadsPerMultiprocessor = 2048
	MaxBlocksPerMultiprocessor  = 32
	SharedMemPerMultiprocessor  = 64 * 1024
	RegistersPerMultiprocessor  = 64 * 1024
)

// Memory pool parameters
const (
	// MemoryAlignment for allocations, sized to a cache line
	MemoryAlignment = 64
)
