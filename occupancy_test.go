package spmv

import (
	"testing"
)

// fixedLimits is a stand-in capability provider for occupancy tests.
type fixedLimits struct {
	limits DeviceLimits
}

func (f fixedLimits) Limits() DeviceLimits { return f.limits }

func testLimits() DeviceLimits {
	return DeviceLimits{
		MultiprocessorCount:         4,
		MaxThreadsPerMultiprocessor: 2048,
		MaxBlocksPerMultiprocessor:  32,
		SharedMemPerMultiprocessor:  64 * 1024,
		RegistersPerMultiprocessor:  64 * 1024,
		MaxThreadsPerBlock:          1024,
	}
}

func TestMaxActiveBlocksThreadLimited(t *testing.T) {
	p := fixedLimits{testLimits()}

	// 2048 threads/SM at 256 threads/block allows 8 blocks/SM across 4 SMs.
	got, err := MaxActiveBlocks(p, KernelFootprint{}, 256)
	if err != nil {
		t.Fatal(err)
	}
	if got != 8*4 {
		t.Errorf("got %d blocks, want %d", got, 8*4)
	}
}

func TestMaxActiveBlocksSharedMemLimited(t *testing.T) {
	p := fixedLimits{testLimits()}

	// 64KB/SM with 32KB static shared memory per block caps at 2 blocks/SM.
	fp := KernelFootprint{SharedMemPerBlock: 32 * 1024}
	got, err := MaxActiveBlocks(p, fp, 64)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2*4 {
		t.Errorf("got %d blocks, want %d", got, 2*4)
	}
}

func TestMaxActiveBlocksRegisterLimited(t *testing.T) {
	p := fixedLimits{testLimits()}

	// 64K registers/SM, 128 regs/thread at 128 threads/block = 4 blocks/SM.
	fp := KernelFootprint{RegistersPerThread: 128}
	got, err := MaxActiveBlocks(p, fp, 128)
	if err != nil {
		t.Fatal(err)
	}
	if got != 4*4 {
		t.Errorf("got %d blocks, want %d", got, 4*4)
	}
}

func TestMaxActiveBlocksZeroWhenOversubscribed(t *testing.T) {
	p := fixedLimits{testLimits()}

	// A block demanding more shared memory than an SM carries cannot be
	// resident at all; the harness clamp is what rescues the launch.
	fp := KernelFootprint{SharedMemPerBlock: 128 * 1024}
	got, err := MaxActiveBlocks(p, fp, 64)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("got %d blocks, want 0", got)
	}
	if blocks := LaunchBlocks(got, 1000, 16); blocks != 1 {
		t.Errorf("LaunchBlocks = %d, want clamp to 1", blocks)
	}
}

func TestMaxActiveBlocksRejectsBadBlockSize(t *testing.T) {
	p := fixedLimits{testLimits()}

	if _, err := MaxActiveBlocks(p, KernelFootprint{}, 0); err == nil {
		t.Error("expected error for zero block size")
	}
	if _, err := MaxActiveBlocks(p, KernelFootprint{}, 2048); err == nil {
		t.Error("expected error for block size beyond device limit")
	}
}

func TestLaunchBlocks(t *testing.T) {
	tests := []struct {
		maxActive, work, perBlock, want int
	}{
		{128, 160000, 16, 128},  // occupancy-limited
		{128, 100, 16, 7},       // work-limited: ceil(100/16)
		{128, 1, 64, 1},         // tiny matrix clamps to one block
		{0, 5, 16, 1},           // zero occupancy still launches one block
		{128, 160, 16, 10},      // exact division
	}
	for _, tc := range tests {
		if got := LaunchBlocks(tc.maxActive, tc.work, tc.perBlock); got != tc.want {
			t.Errorf("LaunchBlocks(%d,%d,%d) = %d, want %d",
				tc.maxActive, tc.work, tc.perBlock, got, tc.want)
		}
	}
}

func TestKernelFootprints(t *testing.T) {
	for _, width := range GroupWidths {
		direct, _ := VectorKernel(width, ReadDirect)
		cachedK, _ := VectorKernel(width, ReadCached)

		if direct.Footprint().RegistersPerThread <= 0 {
			t.Errorf("width %d: non-positive register footprint", width)
		}
		if cachedK.Footprint().RegistersPerThread <= direct.Footprint().RegistersPerThread {
			t.Errorf("width %d: cached variant should claim more registers", width)
		}
	}
}
