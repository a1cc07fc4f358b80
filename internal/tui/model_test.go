package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steadybench/internal/runner"
	"steadybench/internal/workload"
)

type noopWorkload struct{ name string }

func (w noopWorkload) Name() string             { return w.name }
func (w noopWorkload) Effects() workload.Effect { return workload.Compute }
func (w noopWorkload) Unit() string             { return "" }
func (w noopWorkload) Execute() (int64, error)  { return 0, nil }

func newTestModel(t *testing.T) Model {
	t.Helper()

	r := runner.NewRunner(runner.Config{}, nil, nil)
	steps := []runner.Step{
		{Workload: noopWorkload{name: "first"}, Policy: runner.FixedIterations(2)},
		{Workload: noopWorkload{name: "second"}, Policy: runner.FixedIterations(3)},
	}
	m := NewModel(context.Background(), "Suite", r, steps)
	t.Cleanup(m.cancel)
	return m
}

func TestRunStepRunsThePolicy(t *testing.T) {
	m := newTestModel(t)

	msg := m.runStep(1)()
	done, ok := msg.(stepDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, 1, done.index)
	assert.Equal(t, "second", done.res.Workload)
	assert.Equal(t, 3, done.res.Iterations)
}

func TestStepDoneAdvances(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(stepDoneMsg{index: 0, res: runner.BenchmarkResult{Workload: "first", Iterations: 2}})
	nm := next.(Model)

	assert.Equal(t, 1, nm.Current)
	assert.False(t, nm.Finished)
	require.Len(t, nm.Results, 1)
	assert.Equal(t, "second", nm.Live.Stats.Workload)
	require.NotNil(t, cmd)
}

func TestLastStepQuits(t *testing.T) {
	m := newTestModel(t)
	m.Current = 1

	next, cmd := m.Update(stepDoneMsg{index: 1, res: runner.BenchmarkResult{Workload: "second", Iterations: 3}})
	nm := next.(Model)

	assert.True(t, nm.Finished)
	assert.NoError(t, nm.Err)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Contains(t, nm.View(), "Done in")
}

func TestQuitKeyCancelsAndWaitsForStep(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	nm := next.(Model)
	assert.Nil(t, cmd)
	assert.True(t, nm.Stopping)
	assert.False(t, nm.Finished)
	assert.ErrorIs(t, nm.ctx.Err(), context.Canceled)

	next, _ = nm.Update(stepDoneMsg{index: 0, err: context.Canceled})
	nm = next.(Model)
	assert.True(t, nm.Finished)
	assert.ErrorIs(t, nm.Err, ErrCancelled)
}

func TestSnapshotUpdatesLivePanel(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(runner.StatsSnapshot{Workload: "first", Attempts: 1, Iterations: 1, Progress: 0.5})
	nm := next.(Model)
	assert.EqualValues(t, 1, nm.Live.Stats.Iterations)

	// Stale snapshot from another step is ignored.
	next, _ = nm.Update(runner.StatsSnapshot{Workload: "other", Iterations: 9})
	nm = next.(Model)
	assert.EqualValues(t, 1, nm.Live.Stats.Iterations)
}

func TestViewShowsCurrentStep(t *testing.T) {
	m := newTestModel(t)

	view := m.View()
	assert.Contains(t, view, "Suite")
	assert.Contains(t, view, "Step 1/2: first")
	assert.Contains(t, view, "No steps finished yet")
}
