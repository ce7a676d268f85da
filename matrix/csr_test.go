package matrix

import (
	"errors"
	"testing"
)

func validCSR() *CSR {
	return &CSR{
		Rows:          3,
		Cols:          3,
		RowOffsets:    []int32{0, 2, 2, 3},
		ColumnIndices: []int32{0, 2, 1},
		Values:        []float32{1, 2, 3},
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := validCSR().Validate(); err != nil {
		t.Fatal(err)
	}

	empty := &CSR{Rows: 0, Cols: 0, RowOffsets: []int32{0}}
	if err := empty.Validate(); err != nil {
		t.Fatalf("empty matrix: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*CSR){
		"short row offsets":    func(m *CSR) { m.RowOffsets = m.RowOffsets[:2] },
		"nonzero first offset": func(m *CSR) { m.RowOffsets[0] = 1 },
		"dangling last offset": func(m *CSR) { m.RowOffsets[3] = 5 },
		"decreasing offsets":   func(m *CSR) { m.RowOffsets[1] = 3; m.RowOffsets[2] = 2 },
		"column out of range":  func(m *CSR) { m.ColumnIndices[1] = 3 },
		"negative column":      func(m *CSR) { m.ColumnIndices[0] = -1 },
		"misaligned values":    func(m *CSR) { m.Values = m.Values[:2] },
	}

	for name, corrupt := range cases {
		m := validCSR()
		corrupt(m)
		err := m.Validate()
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: error %v does not wrap ErrInvalid", name, err)
		}
	}
}

func TestMulVec(t *testing.T) {
	m := validCSR()
	x := []float32{1, 10, 100}
	y := make([]float32, 3)
	if err := m.MulVec(x, y); err != nil {
		t.Fatal(err)
	}

	want := []float32{1*1 + 2*100, 0, 3 * 10}
	for i := range want {
		if y[i] != want[i] {
			t.Errorf("y[%d] = %v, want %v", i, y[i], want[i])
		}
	}
}

func TestMulVecRejectsShortVectors(t *testing.T) {
	m := validCSR()
	if err := m.MulVec([]float32{1}, make([]float32, 3)); err == nil {
		t.Error("expected error for short x")
	}
	if err := m.MulVec([]float32{1, 2, 3}, make([]float32, 1)); err == nil {
		t.Error("expected error for short y")
	}
}

func TestFingerprint(t *testing.T) {
	a := validCSR()
	b := validCSR()
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical matrices must fingerprint identically")
	}

	b.Values[0] = 42
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("value change should change the fingerprint")
	}

	c := validCSR()
	c.ColumnIndices[0] = 1
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("structure change should change the fingerprint")
	}
}
