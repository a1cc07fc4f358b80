package storage

import (
	"time"

	"github.com/google/uuid"

	"steadybench/internal/runner"
)

type HistoryItem struct {
	ID        string                   `json:"id"`
	Timestamp time.Time                `json:"timestamp"`
	Command   string                   `json:"command"`
	Results   []runner.BenchmarkResult `json:"results"`
}

// NewHistoryItem stamps results with a time-ordered ID so that key order in
// the store is also run order.
func NewHistoryItem(command string, results []runner.BenchmarkResult) (HistoryItem, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return HistoryItem{}, err
	}

	return HistoryItem{
		ID:        id.String(),
		Timestamp: time.Now(),
		Command:   command,
		Results:   results,
	}, nil
}

// TotalIterations sums iterations over every result of the run.
func (h HistoryItem) TotalIterations() int {
	total := 0
	for _, r := range h.Results {
		total += r.Iterations
	}
	return total
}

// TotalElapsed sums the elapsed time of every result of the run.
func (h HistoryItem) TotalElapsed() time.Duration {
	var total time.Duration
	for _, r := range h.Results {
		total += r.Elapsed
	}
	return total
}
