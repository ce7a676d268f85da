package spmv

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// SessionRecord is one width trial as persisted to a session log.
type SessionRecord struct {
	Label       string          `json:"label"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	Width       int             `json:"width"`
	Mode        string          `json:"mode"`
	GFLOPS      float64         `json:"gflops"`
	Iterations  int             `json:"iterations"`
	ElapsedNs   int64           `json:"elapsed_ns"`
	Stats       *IterationStats `json:"stats,omitempty"`
	Device      string          `json:"device"`
	Timestamp   time.Time       `json:"timestamp"`
}

// SessionLogger appends benchmark results to a JSON session file. Results
// are flushed to disk after every record so a crashed run keeps what it
// measured.
type SessionLogger struct {
	mu      sync.Mutex
	path    string
	records []SessionRecord
}

// NewSessionLogger creates the session file eagerly so path problems
// surface before any benchmarking starts.
func NewSessionLogger(path string) (*SessionLogger, error) {
	l := &SessionLogger{path: path}
	if err := l.flush(); err != nil {
		return nil, fmt.Errorf("session log: %w", err)
	}
	return l, nil
}

// Log records one result and flushes the session file.
func (l *SessionLogger) Log(r Result, fingerprint uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, SessionRecord{
		Label:       r.Label,
		Fingerprint: fmt.Sprintf("%016x", fingerprint),
		Width:       r.Width,
		Mode:        r.Mode.String(),
		GFLOPS:      r.GFLOPS,
		Iterations:  r.Iterations,
		ElapsedNs:   r.Elapsed.Nanoseconds(),
		Stats:       r.Stats,
		Device:      GetDevice().Name,
		Timestamp:   time.Now(),
	})
	return l.flush()
}

func (l *SessionLogger) flush() error {
	data, err := json.MarshalIndent(l.records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0644)
}
