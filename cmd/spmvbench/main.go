// spmvbench measures SpMV throughput for every supported vector-group
// width, either over a synthetic banded-matrix sweep or over Matrix
// Market files given as arguments.
//
//	spmvbench                 # banded sweep, D=1..32 over 160000 rows
//	spmvbench a.mtx b.mtx.gz  # one row per file
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/LynnColeArt/spmv"
	"github.com/LynnColeArt/spmv/matrix"
)

var (
	cached  = flag.Bool("cached", true, "read the input vector through the read-only cached path")
	verify  = flag.Bool("verify", false, "check every width against the sequential reference before timing")
	stats   = flag.Bool("stats", false, "collect per-iteration timing statistics (session log only)")
	logPath = flag.String("log", "", "write a JSON session log to this path")
	rows    = flag.Int("n", 160000, "row count for the synthetic banded sweep")
	maxDiag = flag.Int("d", 32, "largest diagonal count for the synthetic banded sweep")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("spmvbench: ")
	flag.Parse()

	var logger *spmv.SessionLogger
	if *logPath != "" {
		var err error
		if logger, err = spmv.NewSessionLogger(*logPath); err != nil {
			log.Fatal(err)
		}
	}

	mode := spmv.ReadDirect
	if *cached {
		mode = spmv.ReadCached
	}
	opts := &spmv.Options{Verify: *verify, CollectStats: *stats}

	header := make([]string, 0, len(spmv.GroupWidths)+1)
	header = append(header, "matrix")
	for _, w := range spmv.GroupWidths {
		header = append(header, strconv.Itoa(w))
	}
	fmt.Println(strings.Join(header, ","))

	if flag.NArg() == 0 {
		for d := 1; d <= *maxDiag; d++ {
			m, err := matrix.Band(*rows, d).ToCSR()
			if err != nil {
				log.Fatalf("band d=%d: %v", d, err)
			}
			runOne(strconv.Itoa(d), m, mode, opts, logger)
		}
		return
	}

	for _, path := range flag.Args() {
		m, err := matrix.ReadFile(path)
		if err != nil {
			log.Fatal(err)
		}
		runOne(filepath.Base(path), m, mode, opts, logger)
	}
}

func runOne(label string, m *matrix.CSR, mode spmv.CacheMode, opts *spmv.Options, logger *spmv.SessionLogger) {
	results, err := spmv.BenchmarkMatrix(label, m, mode, opts)
	if err != nil {
		log.Fatalf("%s: %v", label, err)
	}

	row := make([]string, 0, len(results)+1)
	row = append(row, label)
	for _, r := range results {
		row = append(row, fmt.Sprintf("%.4f", r.GFLOPS))
	}
	fmt.Println(strings.Join(row, ","))

	if logger != nil {
		fp := m.Fingerprint()
		for _, r := range results {
			if err := logger.Log(r, fp); err != nil {
				log.Fatalf("%s: %v", label, err)
			}
		}
	}
}
