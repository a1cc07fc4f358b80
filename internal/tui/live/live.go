package live

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"steadybench/internal/runner"
	"steadybench/internal/tui/components"
	"steadybench/internal/tui/styles"
)

// Model shows the step currently running: counters, two sparklines and a
// progress bar against the step's stopping policy.
type Model struct {
	Step     runner.Step
	Stats    runner.StatsSnapshot
	Progress progress.Model

	RateLine    components.Sparkline
	LatencyLine components.Sparkline

	LastUpdate time.Time
	LastIters  uint64

	Width  int
	Height int
}

func NewModel(step runner.Step) Model {
	slRate := components.NewSparkline(
		40, 1,
		"Iterations/s",
		styles.Active,
	)

	slLat := components.NewSparkline(
		40, 1,
		"Last iteration (ms)",
		styles.Warn,
	)

	return Model{
		Step:        step,
		Stats:       runner.StatsSnapshot{Workload: step.Workload.Name()},
		Progress:    progress.New(progress.WithDefaultGradient()),
		RateLine:    slRate,
		LatencyLine: slLat,
		LastUpdate:  time.Now(),
	}
}

// Reset starts over for the next step and keeps the layout.
func (m Model) Reset(step runner.Step) Model {
	next := NewModel(step)
	next.Width = m.Width
	next.Height = m.Height
	next.Progress.Width = m.Progress.Width
	next.RateLine.Width = m.RateLine.Width
	next.LatencyLine.Width = m.LatencyLine.Width
	return next
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runner.StatsSnapshot:
		now := time.Now()
		dt := now.Sub(m.LastUpdate).Seconds()
		if dt < 0.01 {
			dt = 0.01
		}

		// 1. Iteration rate since the previous snapshot
		delta := msg.Iterations - min(msg.Iterations, m.LastIters)
		m.RateLine.Add(uint64(float64(delta) / dt))
		m.LatencyLine.Add(uint64(msg.LastIteration.Milliseconds()))

		// 2. Update State
		m.Stats = msg
		m.LastIters = msg.Iterations
		m.LastUpdate = now

		// 3. Update Progress
		cmd := m.Progress.SetPercent(msg.Progress)
		return m, cmd

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Progress.Width = msg.Width - 4

		half := (msg.Width / 2) - 4
		if half < 10 {
			half = 10
		}
		m.RateLine.Width = half
		m.LatencyLine.Width = half
		return m, nil

	case progress.FrameMsg:
		prog, cmd := m.Progress.Update(msg)
		m.Progress = prog.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	s := strings.Builder{}

	attempts := m.Stats.Attempts
	failRate := 0.0
	if attempts > 0 {
		failRate = (float64(m.Stats.Failures) / float64(attempts)) * 100
	}

	var failColor lipgloss.Style
	if failRate > 5.0 {
		failColor = styles.Error
	} else if failRate > 0 {
		failColor = styles.Warn
	} else {
		failColor = styles.Active
	}

	col1 := fmt.Sprintf("WORKLOAD: %s\nPOLICY: %s", m.Stats.Workload, m.Step.Policy)
	col2 := fmt.Sprintf("ITER: %d\nFAIL: %d", m.Stats.Iterations, m.Stats.Failures)
	col3 := fmt.Sprintf("ELAPSED: %s\nUNITS: %d", m.Stats.Elapsed.Round(time.Millisecond), m.Stats.Units)

	grid := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(col1),
		styles.Box.Render(failColor.Render(col2)),
		styles.Box.Render(col3),
	)
	s.WriteString(grid)
	s.WriteString("\n\n")

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Box.Render(m.RateLine.View()),
		styles.Box.Render(m.LatencyLine.View()),
	))
	s.WriteString("\n\n")

	latencies := fmt.Sprintf(
		"P50: %.2f ms  |  P90: %.2f ms  |  P99: %.2f ms  |  Last: %s",
		m.Stats.P50Ms,
		m.Stats.P90Ms,
		m.Stats.P99Ms,
		m.Stats.LastIteration.Round(time.Microsecond),
	)
	s.WriteString(styles.Box.Width(max(m.Width-4, 20)).Render(latencies))
	s.WriteString("\n\n")

	s.WriteString(m.Progress.View())

	return s.String()
}
