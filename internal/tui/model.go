package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"steadybench/internal/runner"
	"steadybench/internal/tui/live"
	"steadybench/internal/tui/result"
	"steadybench/internal/tui/styles"
)

// ErrCancelled is returned when the user quits before the plan finishes.
var ErrCancelled = errors.New("run cancelled")

type stepDoneMsg struct {
	index int
	res   runner.BenchmarkResult
	err   error
}

type Model struct {
	Title  string
	Runner *runner.Runner
	Steps  []runner.Step

	ctx    context.Context
	cancel context.CancelFunc

	Current int
	Results []runner.BenchmarkResult
	Err     error

	Live     live.Model
	Done     result.Model
	Spinner  spinner.Model
	Started  time.Time
	Stopping bool
	Finished bool

	Width  int
	Height int
}

func NewModel(ctx context.Context, title string, r *runner.Runner, steps []runner.Step) Model {
	if r.Updates == nil {
		r.Updates = make(runner.StatsUpdateChan, 100)
	}
	ctx, cancel := context.WithCancel(ctx)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Active

	m := Model{
		Title:   title,
		Runner:  r,
		Steps:   steps,
		ctx:     ctx,
		cancel:  cancel,
		Done:    result.NewModel(len(steps)),
		Spinner: sp,
		Started: time.Now(),
	}
	if len(steps) > 0 {
		m.Live = live.NewModel(steps[0])
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if len(m.Steps) == 0 {
		return tea.Quit
	}
	return tea.Batch(
		m.Spinner.Tick,
		m.runStep(0),
		waitForUpdate(m.ctx, m.Runner.Updates),
	)
}

// runStep runs one step to completion off the UI goroutine. Steps run one at
// a time, so the runner is never shared.
func (m Model) runStep(i int) tea.Cmd {
	r, step, ctx := m.Runner, m.Steps[i], m.ctx
	return func() tea.Msg {
		res, err := runner.RunStep(ctx, r, step)
		return stepDoneMsg{index: i, res: res, err: err}
	}
}

func waitForUpdate(ctx context.Context, sub runner.StatsUpdateChan) tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-sub:
			return s
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		var cmd tea.Cmd
		m.Live, cmd = m.Live.Update(msg)
		m.Done, _ = m.Done.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// The step in flight notices between calls; quit once it reports
			// back so its cleanup has run.
			m.Stopping = true
			m.cancel()
			return m, nil
		}

	case runner.StatsSnapshot:
		var cmd tea.Cmd
		if msg.Workload == m.Live.Stats.Workload {
			m.Live, cmd = m.Live.Update(msg)
		}
		return m, tea.Batch(cmd, waitForUpdate(m.ctx, m.Runner.Updates))

	case stepDoneMsg:
		return m.finishStep(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	default:
		var cmd tea.Cmd
		m.Live, cmd = m.Live.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) finishStep(msg stepDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.Err = msg.err
		if m.Stopping && errors.Is(msg.err, context.Canceled) {
			m.Err = ErrCancelled
		}
		return m.quit()
	}

	m.Results = append(m.Results, msg.res)
	m.Done = m.Done.Add(msg.res)

	if m.Stopping {
		m.Err = ErrCancelled
		return m.quit()
	}

	next := msg.index + 1
	if next >= len(m.Steps) {
		return m.quit()
	}

	m.Current = next
	m.Live = m.Live.Reset(m.Steps[next])
	return m, m.runStep(next)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Finished = true
	m.cancel()
	return m, tea.Quit
}

func (m Model) View() string {
	s := strings.Builder{}

	s.WriteString(styles.Title.Render("🚀 " + m.Title))
	s.WriteString("\n\n")

	if !m.Finished && len(m.Steps) > 0 {
		step := m.Steps[m.Current]
		status := fmt.Sprintf("%s Step %d/%d: %s (%s)",
			m.Spinner.View(), m.Current+1, len(m.Steps),
			step.Workload.Name(), step.Policy)
		if m.Stopping {
			status = styles.Warn.Render("Stopping after the current iteration...")
		}
		s.WriteString(status)
		s.WriteString("\n\n")
		s.WriteString(m.Live.View())
		s.WriteString("\n\n")
	}

	s.WriteString(m.Done.View())
	s.WriteString("\n\n")

	switch {
	case m.Finished && m.Err != nil:
		s.WriteString(styles.Error.Render(fmt.Sprintf("Stopped: %v", m.Err)))
	case m.Finished:
		s.WriteString(styles.Success.Render(fmt.Sprintf("Done in %s", time.Since(m.Started).Round(time.Millisecond))))
	default:
		s.WriteString(styles.RenderKey("q", "stop"))
	}
	s.WriteString("\n")

	return s.String()
}

// Run shows the plan in a Bubble Tea program and returns the results of the
// completed steps.
func Run(ctx context.Context, title string, r *runner.Runner, steps []runner.Step, opts ...tea.ProgramOption) ([]runner.BenchmarkResult, error) {
	m := NewModel(ctx, title, r, steps)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		m.cancel()
		return nil, fmt.Errorf("tui: %w", err)
	}

	fm := final.(Model)
	return fm.Results, fm.Err
}
