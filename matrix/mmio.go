package matrix

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ErrFormat reports a malformed Matrix Market stream. Format errors are
// fatal to a benchmark run; there is no partial recovery.
var ErrFormat = errors.New("invalid matrix market input")

// ReadFile reads a Matrix Market file into CSR form. Files ending in .gz
// are decompressed transparently.
func ReadFile(path string) (*CSR, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		defer gz.Close()
		r = gz
	}

	m, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Read parses a Matrix Market coordinate stream into CSR form. Supported
// fields are real, integer and pattern; supported symmetries are general
// and symmetric (off-diagonal entries mirrored).
func Read(r io.Reader) (*CSR, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("%w: empty input", ErrFormat)
	}
	banner := strings.Fields(strings.ToLower(sc.Text()))
	if len(banner) != 5 || banner[0] != "%%matrixmarket" || banner[1] != "matrix" {
		return nil, fmt.Errorf("%w: bad banner %q", ErrFormat, sc.Text())
	}
	format, field, symmetry := banner[2], banner[3], banner[4]
	if format != "coordinate" {
		return nil, fmt.Errorf("%w: unsupported format %q", ErrFormat, format)
	}
	pattern := false
	switch field {
	case "real", "integer":
	case "pattern":
		pattern = true
	default:
		return nil, fmt.Errorf("%w: unsupported field %q", ErrFormat, field)
	}
	symmetric := false
	switch symmetry {
	case "general":
	case "symmetric":
		symmetric = true
	default:
		return nil, fmt.Errorf("%w: unsupported symmetry %q", ErrFormat, symmetry)
	}

	// Size line, after any comment lines.
	var rows, cols, nnz int
	for {
		if !sc.Scan() {
			return nil, fmt.Errorf("%w: missing size line", ErrFormat)
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		f := strings.Fields(line)
		if len(f) != 3 {
			return nil, fmt.Errorf("%w: bad size line %q", ErrFormat, line)
		}
		var err error
		if rows, err = strconv.Atoi(f[0]); err != nil {
			return nil, fmt.Errorf("%w: bad row count %q", ErrFormat, f[0])
		}
		if cols, err = strconv.Atoi(f[1]); err != nil {
			return nil, fmt.Errorf("%w: bad column count %q", ErrFormat, f[1])
		}
		if nnz, err = strconv.Atoi(f[2]); err != nil {
			return nil, fmt.Errorf("%w: bad entry count %q", ErrFormat, f[2])
		}
		break
	}
	if rows < 0 || cols < 0 || nnz < 0 {
		return nil, fmt.Errorf("%w: negative size", ErrFormat)
	}

	type entry struct {
		row, col int32
		val      float32
	}
	entries := make([]entry, 0, nnz)

	read := 0
	for read < nnz {
		if !sc.Scan() {
			return nil, fmt.Errorf("%w: expected %d entries, got %d", ErrFormat, nnz, read)
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		f := strings.Fields(line)
		want := 3
		if pattern {
			want = 2
		}
		if len(f) < want {
			return nil, fmt.Errorf("%w: bad entry line %q", ErrFormat, line)
		}
		i, err := strconv.Atoi(f[0])
		if err != nil {
			return nil, fmt.Errorf("%w: bad row index %q", ErrFormat, f[0])
		}
		j, err := strconv.Atoi(f[1])
		if err != nil {
			return nil, fmt.Errorf("%w: bad column index %q", ErrFormat, f[1])
		}
		if i < 1 || i > rows || j < 1 || j > cols {
			return nil, fmt.Errorf("%w: entry (%d,%d) outside %dx%d", ErrFormat, i, j, rows, cols)
		}
		v := float32(1)
		if !pattern {
			fv, err := strconv.ParseFloat(f[2], 32)
			if err != nil {
				return nil, fmt.Errorf("%w: bad value %q", ErrFormat, f[2])
			}
			v = float32(fv)
		}
		entries = append(entries, entry{int32(i - 1), int32(j - 1), v})
		if symmetric && i != j {
			entries = append(entries, entry{int32(j - 1), int32(i - 1), v})
		}
		read++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	// Counting sort by row; order within a row is immaterial to the kernels.
	m := &CSR{
		Rows:          rows,
		Cols:          cols,
		RowOffsets:    make([]int32, rows+1),
		ColumnIndices: make([]int32, len(entries)),
		Values:        make([]float32, len(entries)),
	}
	for _, e := range entries {
		m.RowOffsets[e.row+1]++
	}
	for r := 0; r < rows; r++ {
		m.RowOffsets[r+1] += m.RowOffsets[r]
	}
	next := make([]int32, rows)
	copy(next, m.RowOffsets[:rows])
	for _, e := range entries {
		k := next[e.row]
		m.ColumnIndices[k] = e.col
		m.Values[k] = e.val
		next[e.row]++
	}
	return m, nil
}
