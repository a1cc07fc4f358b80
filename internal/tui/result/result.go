package result

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"steadybench/internal/runner"
	"steadybench/internal/tui/styles"
)

// Model lists the steps that have finished so far.
type Model struct {
	Results []runner.BenchmarkResult
	Total   int

	Width  int
	Height int
}

func NewModel(total int) Model {
	return Model{Total: total}
}

func (m Model) Add(res runner.BenchmarkResult) Model {
	m.Results = append(m.Results, res)
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}
	return m, nil
}

func (m Model) View() string {
	if len(m.Results) == 0 {
		return styles.Subtle.Render("No steps finished yet")
	}

	s := strings.Builder{}
	s.WriteString(styles.Active.Render(fmt.Sprintf("Finished %d/%d", len(m.Results), m.Total)))
	s.WriteString("\n")

	rows := make([]string, 0, len(m.Results))
	for _, r := range m.Results {
		mark := styles.Success.Render("✔")
		if r.Aborted {
			mark = styles.Warn.Render("!")
		}
		rows = append(rows, fmt.Sprintf(
			"%s %-20s %6d it  %3d fail  %10s  p50 %.2f ms",
			mark, r.Workload, r.Iterations, r.Failures,
			r.Elapsed.Round(time.Millisecond),
			float64(r.Latency.P50Us)/1000.0,
		))
	}
	s.WriteString(styles.Box.Render(strings.Join(rows, "\n")))

	return s.String()
}
