package spmv

// CacheMode selects how the SpMV kernels read the dense input vector.
type CacheMode int

const (
	// ReadDirect gathers x straight from device memory
	ReadDirect CacheMode = iota
	// ReadCached gathers x through the bound read-only texture path
	ReadCached
)

// String returns the cache mode name
func (m CacheMode) String() string {
	if m == ReadCached {
		return "cached"
	}
	return "direct"
}

// SpMVOperands are the device-resident arrays a kernel launch runs over.
// Texture must carry the binding for x when the cached variant is used.
type SpMVOperands struct {
	Rows          int
	RowOffsets    []int32
	ColumnIndices []int32
	Values        []float32
	X             []float32
	Y             []float32
	Texture       *TextureBinding
}

// SpMVKernel binds operands into a launchable kernel function.
type SpMVKernel interface {
	Width() int
	Mode() CacheMode
	Bind(op SpMVOperands) (KernelFunc, error)
	Footprint() KernelFootprint
}

type kernelKey struct {
	width int
	mode  CacheMode
}

// The specialization table: one kernel variant per (width, cache-flag)
// combination, built once and selected per benchmark configuration
// rather than branched on per element.
var vectorKernels = map[kernelKey]*vectorKernel{}

func init() {
	for _, v := range GroupWidths {
		vectorKernels[kernelKey{v, ReadDirect}] = &vectorKernel{width: v, mode: ReadDirect}
		vectorKernels[kernelKey{v, ReadCached}] = &vectorKernel{width: v, mode: ReadCached}
	}
}

// VectorKernel returns the kernel variant for the given group width and
// cache mode. Widths outside GroupWidths yield ErrUnsupportedWidth.
func VectorKernel(width int, mode CacheMode) (SpMVKernel, error) {
	k, ok := vectorKernels[kernelKey{width, mode}]
	if !ok {
		return nil, ErrUnsupportedWidth
	}
	return k, nil
}

type vectorKernel struct {
	width int
	mode  CacheMode
}

func (k *vectorKernel) Width() int      { return k.width }
func (k *vectorKernel) Mode() CacheMode { return k.mode }

// Footprint reports the static resource usage the occupancy calculator
// sizes against. Registers grow with the live lane state; the cached
// variant holds the texture descriptor in two extra registers. Shared
// memory covers one partial-sum slot per thread in the block.
func (k *vectorKernel) Footprint() KernelFootprint {
	regs := 14 + k.width/4
	if k.mode == ReadCached {
		regs += 2
	}
	return KernelFootprint{
		RegistersPerThread: regs,
		SharedMemPerBlock:  DefaultBlockSize * 4,
	}
}

// Bind closes the kernel over its operands. Each launched thread drives
// one vector group: lanes stride the assigned row's nonzero span with
// per-lane bound checks, then the lane partials collapse through a
// halving tree reduction and lane 0 writes the row's output slot.
// Groups grid-stride over rows until every row has been visited once.
func (k *vectorKernel) Bind(op SpMVOperands) (KernelFunc, error) {
	if op.Rows < 0 || len(op.RowOffsets) < op.Rows+1 {
		return nil, NewInvalidArgError("Bind", "row offsets shorter than row count")
	}
	if len(op.Y) < op.Rows {
		return nil, NewInvalidArgError("Bind", "output vector shorter than row count")
	}

	fetch := func(i int32) float32 { return op.X[i] }
	if k.mode == ReadCached {
		if op.Texture == nil {
			return nil, NewTextureError("Bind", "cached kernel requires a bound texture")
		}
		fetch = op.Texture.Fetch
	}

	v := k.width
	rows := op.Rows
	rowOffsets := op.RowOffsets
	columnIndices := op.ColumnIndices
	values := op.Values
	y := op.Y

	return func(tid ThreadID) {
		numGroups := tid.GridSize()
		var partial [MaxGroupWidth]float32

		for row := tid.Global(); row < rows; row += numGroups {
			start := rowOffsets[row]
			end := rowOffsets[row+1]

			// Lane-local accumulation. A lane whose next index passes the
			// row's end offset contributes a zero partial and never reads
			// out of range; an empty row falls straight through to y[row]=0.
			for lane := 0; lane < v; lane++ {
				var sum float32
				for j := start + int32(lane); j < end; j += int32(v) {
					sum += values[j] * fetch(columnIndices[j])
				}
				partial[lane] = sum
			}

			// Tree reduction, halving the active span each step. Lanes run
			// sequentially on the host, so the reduction shape alone fixes
			// the accumulation order; no barrier is needed.
			for span := v >> 1; span > 0; span >>= 1 {
				for lane := 0; lane < span; lane++ {
					partial[lane] += partial[lane+span]
				}
			}

			y[row] = partial[0]
		}
	}, nil
}
