package matrix

import (
	"errors"
	"testing"
)

func TestBandIdentity(t *testing.T) {
	m, err := Band(4, 1).ToCSR()
	if err != nil {
		t.Fatal(err)
	}

	if m.Rows != 4 || m.Cols != 4 || m.NNZ() != 4 {
		t.Fatalf("bad shape: %dx%d nnz %d", m.Rows, m.Cols, m.NNZ())
	}
	for r := 0; r < 4; r++ {
		if m.RowOffsets[r+1]-m.RowOffsets[r] != 1 {
			t.Fatalf("row %d: not exactly one entry", r)
		}
		k := m.RowOffsets[r]
		if m.ColumnIndices[k] != int32(r) || m.Values[k] != 1 {
			t.Fatalf("row %d: entry (%d, %v), want (%d, 1)", r, m.ColumnIndices[k], m.Values[k], r)
		}
	}
}

func TestBandEntryCount(t *testing.T) {
	// d diagonals at offsets 0..d-1 over n×n: diagonal i has n-i entries.
	const n, d = 10, 3
	m, err := Band(n, d).ToCSR()
	if err != nil {
		t.Fatal(err)
	}

	want := 0
	for i := 0; i < d; i++ {
		want += n - i
	}
	if m.NNZ() != want {
		t.Fatalf("nnz = %d, want %d", m.NNZ(), want)
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}

	// Rows near the bottom edge lose out-of-range diagonals.
	last := m.RowOffsets[n] - m.RowOffsets[n-1]
	if last != 1 {
		t.Errorf("last row has %d entries, want 1", last)
	}
}

func TestToCSRSortsColumns(t *testing.T) {
	// Offsets given out of order still lower to ascending columns per row.
	m := &DIA{
		Rows:    3,
		Cols:    3,
		Offsets: []int{1, -1, 0},
		Diagonals: [][]float32{
			{2, 2, 2},
			{3, 3, 3},
			{1, 1, 1},
		},
	}
	csr, err := m.ToCSR()
	if err != nil {
		t.Fatal(err)
	}
	if err := csr.Validate(); err != nil {
		t.Fatal(err)
	}

	for r := 0; r < csr.Rows; r++ {
		for k := csr.RowOffsets[r] + 1; k < csr.RowOffsets[r+1]; k++ {
			if csr.ColumnIndices[k-1] >= csr.ColumnIndices[k] {
				t.Fatalf("row %d: columns not ascending", r)
			}
		}
	}

	// Middle row carries all three diagonals.
	if csr.RowOffsets[2]-csr.RowOffsets[1] != 3 {
		t.Errorf("middle row entry count = %d, want 3", csr.RowOffsets[2]-csr.RowOffsets[1])
	}
}

func TestToCSRDropsExplicitZeros(t *testing.T) {
	m := &DIA{
		Rows:      2,
		Cols:      2,
		Offsets:   []int{0},
		Diagonals: [][]float32{{1, 0}},
	}
	csr, err := m.ToCSR()
	if err != nil {
		t.Fatal(err)
	}
	if csr.NNZ() != 1 {
		t.Errorf("nnz = %d, want 1", csr.NNZ())
	}
}

func TestToCSRRejectsMismatchedDiagonals(t *testing.T) {
	m := &DIA{
		Rows:      3,
		Cols:      3,
		Offsets:   []int{0},
		Diagonals: [][]float32{{1, 2}}, // wrong length
	}
	if _, err := m.ToCSR(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("got %v, want ErrInvalid", err)
	}

	m2 := &DIA{Rows: 2, Cols: 2, Offsets: []int{0, 1}, Diagonals: [][]float32{{1, 1}}}
	if _, err := m2.ToCSR(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("got %v, want ErrInvalid", err)
	}
}
