package spmv

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Dim3 represents 3D dimensions for grid and block configurations,
// matching CUDA's dim3 launch parameters.
type Dim3 struct {
	X, Y, Z int
}

// Size returns the total number of elements
func (d Dim3) Size() int {
	return d.X * d.Y * d.Z
}

// ThreadID identifies a thread's position within the execution hierarchy,
// with the same indexing semantics as CUDA's built-in variables.
// The SpMV kernels launch one thread per vector group, so for them a
// "thread" is a whole group and lanes are iterated inside the kernel.
type ThreadID struct {
	BlockIdx  Dim3 // Block index within the grid
	ThreadIdx Dim3 // Thread index within the block
	BlockDim  Dim3 // Dimensions of the block
	GridDim   Dim3 // Dimensions of the grid
}

// Global returns the global linear thread index
func (tid ThreadID) Global() int {
	return tid.BlockIdx.X*tid.BlockDim.X + tid.ThreadIdx.X
}

// GridSize returns the total number of threads in the launch
func (tid ThreadID) GridSize() int {
	return tid.GridDim.Size() * tid.BlockDim.Size()
}

// KernelFunc is a function that can be launched as a kernel.
// Implementations must be safe for concurrent execution across threads.
type KernelFunc func(tid ThreadID)

// Stream represents an ordered sequence of operations that execute
// asynchronously. Operations within a stream execute in order.
type Stream struct {
	id    int
	tasks chan func()
	wg    sync.WaitGroup
}

// Context manages device resources, memory allocation, and stream execution.
type Context struct {
	device        *Device
	memory        *MemoryPool
	streamID      int32
	mu            sync.Mutex
	streams       map[int]*Stream
	defaultStream *Stream
}

var (
	defaultContext *Context
	contextOnce    sync.Once
)

func getContext() *Context {
	contextOnce.Do(func() {
		defaultContext = &Context{
			device:  GetDevice(),
			memory:  NewMemoryPool(),
			streams: make(map[int]*Stream),
		}
		defaultContext.defaultStream = defaultContext.CreateStream()
	})
	return defaultContext
}

// CreateStream creates a new execution stream
func (ctx *Context) CreateStream() *Stream {
	id := int(atomic.AddInt32(&ctx.streamID, 1))
	stream := &Stream{
		id:    id,
		tasks: make(chan func(), 1000),
	}
	go stream.worker()

	ctx.mu.Lock()
	ctx.streams[id] = stream
	ctx.mu.Unlock()
	return stream
}

// worker processes tasks for a stream
func (s *Stream) worker() {
	for task := range s.tasks {
		task()
		s.wg.Done()
	}
}

// Submit adds a task to the stream
func (s *Stream) Submit(task func()) {
	s.wg.Add(1)
	s.tasks <- task
}

// Synchronize waits for all tasks in the stream to complete
func (s *Stream) Synchronize() {
	s.wg.Wait()
}

// Launch executes a kernel on the default stream across a grid of blocks.
//
// Example:
//
//	spmv.Launch(kernel, spmv.Dim3{X: blocks, Y: 1, Z: 1}, spmv.Dim3{X: 128, Y: 1, Z: 1})
func Launch(fn KernelFunc, grid, block Dim3) error {
	return getContext().Launch(fn, grid, block)
}

// Synchronize waits for all operations on all streams to complete.
// This is the full-device barrier the harness issues at the end of a
// timed batch.
func Synchronize() error {
	return getContext().Synchronize()
}

// Launch executes a kernel on the default stream
func (ctx *Context) Launch(fn KernelFunc, grid, block Dim3) error {
	return ctx.LaunchStream(fn, grid, block, ctx.defaultStream)
}

// LaunchStream executes a kernel on a specific stream
func (ctx *Context) LaunchStream(fn KernelFunc, grid, block Dim3, stream *Stream) error {
	gridSize := grid.Size()
	blockSize := block.Size()

	if gridSize <= 0 || blockSize <= 0 {
		return NewInvalidArgError("Launch", "grid and block dimensions must be positive")
	}
	if blockSize > ctx.device.limits.MaxThreadsPerBlock {
		return NewInvalidArgError("Launch", "block size exceeds device limit")
	}

	// Each worker goroutine stands in for a multiprocessor and executes a
	// contiguous run of blocks; threads within a block run sequentially,
	// which maximizes cache reuse on the host.
	numWorkers := runtime.NumCPU()
	if gridSize < numWorkers {
		numWorkers = gridSize
	}
	blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers

	stream.Submit(func() {
		var wg sync.WaitGroup
		wg.Add(numWorkers)

		for workerID := 0; workerID < numWorkers; workerID++ {
			startBlock := workerID * blocksPerWorker
			endBlock := startBlock + blocksPerWorker
			if endBlock > gridSize {
				endBlock = gridSize
			}

			go func(start, end int) {
				defer wg.Done()
				for blockID := start; blockID < end; blockID++ {
					blockIdx := linearTo3D(blockID, grid)
					for threadID := 0; threadID < blockSize; threadID++ {
						fn(ThreadID{
							BlockIdx:  blockIdx,
							ThreadIdx: linearTo3D(threadID, block),
							BlockDim:  block,
							GridDim:   grid,
						})
					}
				}
			}(startBlock, endBlock)
		}

		wg.Wait()
	})

	return nil
}

// Synchronize waits for all streams to complete
func (ctx *Context) Synchronize() error {
	ctx.mu.Lock()
	streams := make([]*Stream, 0, len(ctx.streams))
	for _, s := range ctx.streams {
		streams = append(streams, s)
	}
	ctx.mu.Unlock()

	for _, s := range streams {
		s.Synchronize()
	}
	return nil
}

// linearTo3D converts a linear index to 3D coordinates
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}
