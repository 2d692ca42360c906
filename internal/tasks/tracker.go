package tasks

import (
	"sync"
	"time"
)

// RunRecord summarizes one completed task run for the status API.
type RunRecord struct {
	ID         string    `json:"id"`
	Task       string    `json:"task"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}

// RunTracker keeps a bounded history of recent task runs. Oldest records are
// evicted once the limit is reached.
type RunTracker struct {
	mu    sync.Mutex
	limit int
	runs  []RunRecord
}

// NewRunTracker creates a tracker retaining up to limit records.
func NewRunTracker(limit int) *RunTracker {
	return &RunTracker{limit: limit}
}

// Add appends a record, evicting the oldest if the history is full.
func (t *RunTracker) Add(record RunRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.runs = append(t.runs, record)
	if len(t.runs) > t.limit {
		t.runs = t.runs[len(t.runs)-t.limit:]
	}
}

// Recent returns the recorded runs, newest first.
func (t *RunTracker) Recent() []RunRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]RunRecord, len(t.runs))
	for i, record := range t.runs {
		out[len(t.runs)-1-i] = record
	}
	return out
}
