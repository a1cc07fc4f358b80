package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"steadybench/internal/runner"
)

const refreshInterval = 200 * time.Millisecond

type stepDone struct {
	index int
	res   runner.BenchmarkResult
	err   error
}

type planDone struct {
	results []runner.BenchmarkResult
	err     error
}

// Start runs steps one after another and draws a text progress line for the
// step in flight. It stops at the first error and returns the results of the
// steps that completed.
func Start(ctx context.Context, out io.Writer, r *runner.Runner, title string, steps []runner.Step) ([]runner.BenchmarkResult, error) {
	if r.Updates == nil {
		r.Updates = make(runner.StatsUpdateChan, 100)
	}

	printHeader(out, title, steps)

	events := make(chan stepDone)
	finished := make(chan planDone, 1)
	go func() {
		results, err := runner.RunPlan(ctx, r, steps, func(i int, res runner.BenchmarkResult, err error) {
			events <- stepDone{index: i, res: res, err: err}
		})
		finished <- planDone{results: results, err: err}
	}()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	current := 0
	last := snapshotFor(steps, current)
	for {
		select {
		case s := <-r.Updates:
			// Late snapshots of a finished step are dropped.
			if current < len(steps) && s.Workload == steps[current].Workload.Name() {
				last = s
			}
		case <-ticker.C:
			if current < len(steps) {
				printProgress(out, last)
			}
		case ev := <-events:
			finishStep(out, ev, len(steps), last)
			current = ev.index + 1
			last = snapshotFor(steps, current)
		case p := <-finished:
			if p.err == nil {
				printFooter(out, p.results)
			}
			return p.results, p.err
		}
	}
}

func snapshotFor(steps []runner.Step, i int) runner.StatsSnapshot {
	if i >= len(steps) {
		return runner.StatsSnapshot{}
	}
	return runner.StatsSnapshot{Workload: steps[i].Workload.Name()}
}

func finishStep(out io.Writer, ev stepDone, total int, last runner.StatsSnapshot) {
	if ev.err != nil {
		printProgress(out, last)
		fmt.Fprintf(out, "\n❌ [%d/%d] %s failed: %v\n", ev.index+1, total, last.Workload, ev.err)
		return
	}

	last.Progress = 1
	last.Iterations = uint64(ev.res.Iterations)
	last.Failures = uint64(ev.res.Failures)
	last.Elapsed = ev.res.Elapsed
	printProgress(out, last)
	fmt.Fprintln(out)
	printStep(out, ev.index+1, total, ev.res)
}

func printHeader(out io.Writer, title string, steps []runner.Step) {
	fmt.Fprintf(out, "\n🚀 %s\n", strings.ToUpper(title))
	fmt.Fprintf(out, "======================================================================\n")
	for i, step := range steps {
		fmt.Fprintf(out, "Step %-2d : %-20s %s (%s)\n",
			i+1, step.Workload.Name(), step.Policy, step.Workload.Effects())
	}
	fmt.Fprintf(out, "======================================================================\n\n")
}

func printProgress(out io.Writer, s runner.StatsSnapshot) {
	fmt.Fprintf(out, "\r%s %3.0f%% | %-20s | %8s | It: %5d | Fail: %3d | P50: %8.2f ms | P90: %8.2f ms",
		progressBar(s.Progress, 20), s.Progress*100,
		s.Workload,
		s.Elapsed.Round(time.Millisecond),
		s.Iterations,
		s.Failures,
		s.P50Ms,
		s.P90Ms,
	)
}

func printStep(out io.Writer, n, total int, res runner.BenchmarkResult) {
	status := "✅"
	if res.Aborted {
		status = "⚠️ "
	}
	fmt.Fprintf(out, "%s [%d/%d] %s: %s, %d failures in %s\n",
		status, n, total, res.Workload, plural(res.Iterations, "iteration"), res.Failures,
		res.Elapsed.Round(time.Millisecond))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func printFooter(out io.Writer, results []runner.BenchmarkResult) {
	var total time.Duration
	for _, res := range results {
		total += res.Elapsed
	}
	fmt.Fprintf(out, "======================================================================\n")
	fmt.Fprintf(out, "Completed %d step(s) in %s\n\n", len(results), total.Round(time.Millisecond))
}

func progressBar(pct float64, width int) string {
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("-", width-filled) + "]"
}
