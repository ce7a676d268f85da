// Package matrix provides the sparse matrix containers consumed by the
// SpMV benchmark: compressed sparse row (CSR) storage, diagonal (DIA)
// storage with lowering to CSR, a banded synthetic generator, and a
// Matrix Market reader.
package matrix

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zeebo/xxh3"
)

// ErrInvalid reports a malformed sparse matrix structure.
var ErrInvalid = errors.New("invalid sparse matrix")

// CSR is a sparse matrix in compressed sparse row format. Row r's nonzeros
// occupy ColumnIndices[RowOffsets[r]:RowOffsets[r+1]] and the parallel
// span of Values; entry order within a row is immaterial.
type CSR struct {
	Rows, Cols    int
	RowOffsets    []int32 // length Rows+1, non-decreasing, first 0, last NNZ
	ColumnIndices []int32 // length NNZ, each in [0, Cols)
	Values        []float32
}

// NNZ returns the number of stored entries.
func (m *CSR) NNZ() int {
	return len(m.Values)
}

// Validate checks the CSR structural invariants. Kernels trust validated
// matrices; out-of-range indices past this point are undefined behavior.
func (m *CSR) Validate() error {
	if m.Rows < 0 || m.Cols < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalid, m.Rows, m.Cols)
	}
	if len(m.RowOffsets) != m.Rows+1 {
		return fmt.Errorf("%w: row offsets length %d, want %d", ErrInvalid, len(m.RowOffsets), m.Rows+1)
	}
	if len(m.ColumnIndices) != len(m.Values) {
		return fmt.Errorf("%w: %d column indices for %d values", ErrInvalid, len(m.ColumnIndices), len(m.Values))
	}
	if m.RowOffsets[0] != 0 {
		return fmt.Errorf("%w: first row offset %d, want 0", ErrInvalid, m.RowOffsets[0])
	}
	if int(m.RowOffsets[m.Rows]) != len(m.Values) {
		return fmt.Errorf("%w: last row offset %d, want %d", ErrInvalid, m.RowOffsets[m.Rows], len(m.Values))
	}
	for r := 0; r < m.Rows; r++ {
		if m.RowOffsets[r] > m.RowOffsets[r+1] {
			return fmt.Errorf("%w: row offsets decrease at row %d", ErrInvalid, r)
		}
	}
	for k, c := range m.ColumnIndices {
		if c < 0 || int(c) >= m.Cols {
			return fmt.Errorf("%w: column index %d at entry %d outside [0,%d)", ErrInvalid, c, k, m.Cols)
		}
	}
	return nil
}

// MulVec computes y = M*x sequentially, accumulating each row strictly
// left to right. It is the ground-truth oracle the parallel kernels are
// verified against.
func (m *CSR) MulVec(x, y []float32) error {
	if len(x) < m.Cols {
		return fmt.Errorf("%w: input vector length %d, want %d", ErrInvalid, len(x), m.Cols)
	}
	if len(y) < m.Rows {
		return fmt.Errorf("%w: output vector length %d, want %d", ErrInvalid, len(y), m.Rows)
	}
	for r := 0; r < m.Rows; r++ {
		var sum float32
		for k := m.RowOffsets[r]; k < m.RowOffsets[r+1]; k++ {
			sum += m.Values[k] * x[m.ColumnIndices[k]]
		}
		y[r] = sum
	}
	return nil
}

// Fingerprint returns a content hash of the matrix structure and values,
// used to identify inputs across benchmark sessions.
func (m *CSR) Fingerprint() uint64 {
	h := xxh3.New()
	binary.Write(h, binary.LittleEndian, int64(m.Rows))
	binary.Write(h, binary.LittleEndian, int64(m.Cols))
	binary.Write(h, binary.LittleEndian, m.RowOffsets)
	binary.Write(h, binary.LittleEndian, m.ColumnIndices)
	binary.Write(h, binary.LittleEndian, m.Values)
	return h.Sum64()
}
