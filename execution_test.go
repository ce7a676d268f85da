package spmv

import (
	"sync/atomic"
	"testing"
)

func TestLaunchCoversAllThreads(t *testing.T) {
	const blocks, blockSize = 7, 32
	seen := make([]int32, blocks*blockSize)

	fn := func(tid ThreadID) {
		atomic.AddInt32(&seen[tid.Global()], 1)
	}
	if err := Launch(fn, Dim3{X: blocks, Y: 1, Z: 1}, Dim3{X: blockSize, Y: 1, Z: 1}); err != nil {
		t.Fatal(err)
	}
	if err := Synchronize(); err != nil {
		t.Fatal(err)
	}

	for i, n := range seen {
		if n != 1 {
			t.Fatalf("thread %d executed %d times", i, n)
		}
	}
}

func TestLaunchGridStride(t *testing.T) {
	// Fewer groups than rows: every row still visited exactly once.
	const rows = 1000
	visits := make([]int32, rows)

	fn := func(tid ThreadID) {
		stride := tid.GridSize()
		for row := tid.Global(); row < rows; row += stride {
			atomic.AddInt32(&visits[row], 1)
		}
	}
	if err := Launch(fn, Dim3{X: 3, Y: 1, Z: 1}, Dim3{X: 16, Y: 1, Z: 1}); err != nil {
		t.Fatal(err)
	}
	if err := Synchronize(); err != nil {
		t.Fatal(err)
	}

	for row, n := range visits {
		if n != 1 {
			t.Fatalf("row %d visited %d times", row, n)
		}
	}
}

func TestLaunchRejectsBadGeometry(t *testing.T) {
	fn := func(tid ThreadID) {}

	if err := Launch(fn, Dim3{X: 0, Y: 1, Z: 1}, Dim3{X: 1, Y: 1, Z: 1}); err == nil {
		t.Error("expected error for empty grid")
	}
	if err := Launch(fn, Dim3{X: 1, Y: 1, Z: 1}, Dim3{X: 0, Y: 1, Z: 1}); err == nil {
		t.Error("expected error for empty block")
	}
	if err := Launch(fn, Dim3{X: 1, Y: 1, Z: 1}, Dim3{X: MaxThreadsPerBlock * 2, Y: 1, Z: 1}); err == nil {
		t.Error("expected error for oversized block")
	}
}

func TestStreamOrdering(t *testing.T) {
	// Tasks on one stream run in submission order.
	s := getContext().CreateStream()
	var order []int
	for i := 0; i < 10; i++ {
		i := i
		s.Submit(func() { order = append(order, i) })
	}
	s.Synchronize()

	for i, v := range order {
		if v != i {
			t.Fatalf("task %d ran out of order: %v", i, order)
		}
	}
}

func TestDim3Size(t *testing.T) {
	if (Dim3{X: 4, Y: 3, Z: 2}).Size() != 24 {
		t.Error("Dim3.Size wrong")
	}
}
