package spmv

// KernelFootprint describes the static per-launch resource usage the
// occupancy calculator sizes against.
type KernelFootprint struct {
	// RegistersPerThread is the register count the compiled kernel claims
	// per thread.
	RegistersPerThread int

	// SharedMemPerBlock is the static shared-memory allocation in bytes.
	SharedMemPerBlock int
}

// MaxActiveBlocks returns the maximum number of blocks that can be
// concurrently resident on the device for a kernel with the given
// footprint at the given block size.
//
// The result is the tightest of the per-multiprocessor constraints
// (threads, block slots, shared memory, registers) multiplied by the
// multiprocessor count. Callers launching real work must clamp the grid
// they derive from this to at least one block; a zero here means the
// configuration oversubscribes the device.
func MaxActiveBlocks(p LimitsProvider, fp KernelFootprint, blockSize int) (int, error) {
	lim := p.Limits()

	if blockSize <= 0 {
		return 0, NewInvalidArgError("MaxActiveBlocks", "block size must be positive")
	}
	if blockSize > lim.MaxThreadsPerBlock {
		return 0, NewDeviceError("MaxActiveBlocks", "block size exceeds device limit")
	}

	perSM := lim.MaxBlocksPerMultiprocessor

	if byThreads := lim.MaxThreadsPerMultiprocessor / blockSize; byThreads < perSM {
		perSM = byThreads
	}
	if fp.SharedMemPerBlock > 0 {
		if bySmem := lim.SharedMemPerMultiprocessor / fp.SharedMemPerBlock; bySmem < perSM {
			perSM = bySmem
		}
	}
	if fp.RegistersPerThread > 0 {
		if byRegs := lim.RegistersPerMultiprocessor / (fp.RegistersPerThread * blockSize); byRegs < perSM {
			perSM = byRegs
		}
	}

	if perSM < 0 {
		perSM = 0
	}
	return perSM * lim.MultiprocessorCount, nil
}

// LaunchBlocks derives the grid width actually launched: the occupancy
// limit capped by the amount of work, clamped to at least one block so a
// small matrix never produces a degenerate empty launch.
func LaunchBlocks(maxActive, workItems, itemsPerBlock int) int {
	needed := (workItems + itemsPerBlock - 1) / itemsPerBlock
	blocks := maxActive
	if needed < blocks {
		blocks = needed
	}
	if blocks < 1 {
		blocks = 1
	}
	return blocks
}
