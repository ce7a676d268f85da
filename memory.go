package spmv

import (
	"sync"
	"unsafe"
)

// DevicePtr represents a pointer to device memory. Use the typed view
// methods (Float32, Int32) to access the underlying data.
type DevicePtr struct {
	ptr  unsafe.Pointer
	size int
}

// MemoryPool manages device memory allocation with free-list reuse to
// reduce allocation churn across benchmark iterations.
type MemoryPool struct {
	mu         sync.Mutex
	allocated  map[uintptr]*allocation
	freeList   []*allocation
	totalAlloc int64
	peakAlloc  int64
}

type allocation struct {
	ptr  unsafe.Pointer
	buf  []byte // keeps the backing array reachable
	size int
	used bool
}

// NewMemoryPool creates a new memory pool
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		allocated: make(map[uintptr]*allocation),
	}
}

// Malloc allocates device memory of the specified size in bytes, aligned
// for SIMD access.
//
// Example:
//
//	d_x, err := spmv.Malloc(n * 4) // n float32s
//	if err != nil {
//	    return err
//	}
//	defer spmv.Free(d_x)
func Malloc(size int) (DevicePtr, error) {
	return getContext().memory.Allocate(size)
}

// Free releases device memory allocated by Malloc. The block is retained
// in the pool for reuse.
func Free(ptr DevicePtr) error {
	return getContext().memory.Free(ptr)
}

// Allocate allocates memory from the pool
func (mp *MemoryPool) Allocate(size int) (DevicePtr, error) {
	if size <= 0 {
		return DevicePtr{}, ErrInvalidSize
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	alignedSize := (size + MemoryAlignment - 1) &^ (MemoryAlignment - 1)

	// Try to reuse from free list
	for i, alloc := range mp.freeList {
		if alloc.size >= alignedSize {
			mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
			alloc.used = true
			mp.account(int64(alloc.size))
			return DevicePtr{ptr: alloc.ptr, size: size}, nil
		}
	}

	buf := make([]byte, alignedSize)
	alloc := &allocation{
		ptr:  unsafe.Pointer(&buf[0]),
		buf:  buf,
		size: alignedSize,
		used: true,
	}
	mp.allocated[uintptr(alloc.ptr)] = alloc
	mp.account(int64(alignedSize))

	return DevicePtr{ptr: alloc.ptr, size: size}, nil
}

func (mp *MemoryPool) account(delta int64) {
	mp.totalAlloc += delta
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}
}

// Free returns memory to the pool
func (mp *MemoryPool) Free(ptr DevicePtr) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	alloc, ok := mp.allocated[uintptr(ptr.ptr)]
	if !ok {
		return NewMemoryError("Free", "pointer not found in allocation pool", nil)
	}
	if !alloc.used {
		return ErrDoubleFree
	}

	alloc.used = false
	mp.freeList = append(mp.freeList, alloc)
	mp.totalAlloc -= int64(alloc.size)
	return nil
}

// GetStats returns memory pool statistics
func (mp *MemoryPool) GetStats() (allocated, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.totalAlloc, mp.peakAlloc
}

// Float32 returns a float32 slice view of the device memory.
//
// Example:
//
//	d_x, _ := spmv.Malloc(n * 4)
//	x := d_x.Float32()
//	x[0] = 3.14
func (d DevicePtr) Float32() []float32 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*float32)(d.ptr), d.size/4)
}

// Int32 returns an int32 slice view of the device memory.
func (d DevicePtr) Int32() []int32 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*int32)(d.ptr), d.size/4)
}

// Size returns the size in bytes of the memory region
func (d DevicePtr) Size() int {
	return d.size
}
