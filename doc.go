// Package spmv benchmarks sparse matrix-vector multiplication throughput
// across a family of vector-group kernels, using a CUDA-style execution
// model mapped onto CPU goroutines.
//
// A kernel launch is described by a grid of thread blocks. For the SpMV
// kernels each launched thread drives one vector group: a bundle of V lanes
// that cooperate on a single matrix row, accumulating lane-local partial
// dot products and tree-reducing them into the row's output slot. Groups
// grid-stride over rows until the matrix is exhausted.
//
// Example usage:
//
//	m, _ := matrix.Band(160000, 8).ToCSR()
//	results, _ := spmv.BenchmarkMatrix("band-8", m, spmv.ReadCached, nil)
//	for _, r := range results {
//	    fmt.Printf("V=%d: %.4f GFLOP/s\n", r.Width, r.GFLOPS)
//	}
//
// Launch geometry is sized through the occupancy calculator: given a
// kernel's resource footprint and a block size, it reports how many blocks
// the device can keep resident, and the harness clamps the grid to the
// matrix's row count. The dense input vector can optionally be read through
// a process-wide read-only texture binding, modelling the spatially cached
// gather path of the original accelerator kernels.
package spmv
