package live

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"steadybench/internal/runner"
	"steadybench/internal/workload"
)

func fibStep() runner.Step {
	return runner.Step{Workload: &workload.Fibonacci{N: 10}, Policy: runner.FixedIterations(4)}
}

func TestSnapshotUpdatesCounters(t *testing.T) {
	m := NewModel(fibStep())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = m.Update(runner.StatsSnapshot{
		Workload:      "fibonacci",
		Attempts:      2,
		Iterations:    2,
		Progress:      0.5,
		P50Ms:         1.5,
		P90Ms:         2.75,
		P99Ms:         3,
		LastIteration: 3 * time.Millisecond,
	})

	assert.EqualValues(t, 2, m.Stats.Iterations)
	assert.EqualValues(t, 2, m.LastIters)
	assert.Equal(t, []uint64{3}, m.LatencyLine.Data)
	assert.Contains(t, m.View(), "ITER: 2")
	assert.Contains(t, m.View(), "4 iterations")
	assert.Contains(t, m.View(), "P90: 2.75 ms")
}

func TestResetKeepsLayout(t *testing.T) {
	m := NewModel(fibStep())
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = m.Update(runner.StatsSnapshot{Workload: "fibonacci", Iterations: 3})

	next := m.Reset(runner.Step{Workload: &workload.Primes{Limit: 100}, Policy: runner.FixedIterations(1)})

	assert.Equal(t, 100, next.Width)
	assert.Equal(t, 46, next.RateLine.Width)
	assert.Equal(t, "primes", next.Stats.Workload)
	assert.Zero(t, next.LastIters)
	assert.Empty(t, next.LatencyLine.Data)
}
