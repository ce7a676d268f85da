package matrix

import (
	"fmt"
	"sort"
)

// DIA is a sparse matrix in diagonal format. Diagonals[i] stores the
// diagonal at Offsets[i]: entry r holds A[r][r+Offsets[i]] for rows where
// that column is in range, and is ignored elsewhere.
type DIA struct {
	Rows, Cols int
	Offsets    []int
	Diagonals  [][]float32 // each of length Rows
}

// Band builds an n×n matrix with d unit-valued diagonals at offsets
// 0..d-1. Sweeping d varies the bandwidth of the sparsity structure as an
// independent benchmarking axis.
func Band(n, d int) *DIA {
	m := &DIA{
		Rows:      n,
		Cols:      n,
		Offsets:   make([]int, d),
		Diagonals: make([][]float32, d),
	}
	for i := 0; i < d; i++ {
		m.Offsets[i] = i
		diag := make([]float32, n)
		for r := 0; r < n; r++ {
			diag[r] = 1
		}
		m.Diagonals[i] = diag
	}
	return m
}

// ToCSR lowers the diagonal storage to CSR, emitting each row's in-range
// entries in ascending column order and dropping explicit zeros.
func (m *DIA) ToCSR() (*CSR, error) {
	if len(m.Offsets) != len(m.Diagonals) {
		return nil, fmt.Errorf("%w: %d offsets for %d diagonals", ErrInvalid, len(m.Offsets), len(m.Diagonals))
	}
	for i, diag := range m.Diagonals {
		if len(diag) != m.Rows {
			return nil, fmt.Errorf("%w: diagonal %d has length %d, want %d", ErrInvalid, i, len(diag), m.Rows)
		}
	}

	// Visit diagonals in ascending offset order so columns come out sorted.
	order := make([]int, len(m.Offsets))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return m.Offsets[order[a]] < m.Offsets[order[b]] })

	csr := &CSR{
		Rows:       m.Rows,
		Cols:       m.Cols,
		RowOffsets: make([]int32, m.Rows+1),
	}
	for r := 0; r < m.Rows; r++ {
		for _, i := range order {
			c := r + m.Offsets[i]
			if c < 0 || c >= m.Cols {
				continue
			}
			v := m.Diagonals[i][r]
			if v == 0 {
				continue
			}
			csr.ColumnIndices = append(csr.ColumnIndices, int32(c))
			csr.Values = append(csr.Values, v)
		}
		csr.RowOffsets[r+1] = int32(len(csr.Values))
	}
	return csr, nil
}
