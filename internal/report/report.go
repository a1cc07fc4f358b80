// Package report formats benchmark results for the terminal and for files.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"steadybench/internal/runner"
	"steadybench/internal/tui/styles"
)

// HumanDuration formats seconds the way the run log does: ms below one
// second, then s, min and hours.
func HumanDuration(seconds float64) string {
	switch {
	case seconds < 1:
		return fmt.Sprintf("%.2f ms", seconds*1000)
	case seconds < 60:
		return fmt.Sprintf("%.2f s", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%.2f min", seconds/60)
	default:
		return fmt.Sprintf("%.2f hours", seconds/3600)
	}
}

// Generate writes a summary table for results.
func Generate(w io.Writer, results []runner.BenchmarkResult) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Workload,
			r.Policy.String(),
			strconv.Itoa(r.Iterations),
			HumanDuration(r.ElapsedSeconds()),
			fmt.Sprintf("%.2f", r.IterationsPerSecond()),
			formatLatencyMs(r.Latency.P50Us),
			formatLatencyMs(r.Latency.P99Us),
			formatThroughput(r),
			formatStatus(r),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.ColorBorder)).
		Headers("Workload", "Policy", "Iterations", "Elapsed", "Iter/s", "P50", "P99", "Throughput", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Active.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	fmt.Fprintln(w, styles.Title.Render("📊 Benchmark Results"))
	fmt.Fprintln(w, t.Render())

	return nil
}

// GenerateJSON writes results as JSON to w.
func GenerateJSON(w io.Writer, results []runner.BenchmarkResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(results)
}

func formatStatus(r runner.BenchmarkResult) string {
	switch {
	case r.Aborted:
		return fmt.Sprintf("aborted (%d malformed)", r.Failures)
	case r.Failures > 0:
		return fmt.Sprintf("ok (%d skipped)", r.Failures)
	default:
		return "ok"
	}
}

func formatLatencyMs(us int64) string {
	if us == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2fms", float64(us)/1000)
}

func formatThroughput(r runner.BenchmarkResult) string {
	if r.UnitMetric == nil || r.Elapsed <= 0 {
		return "-"
	}
	per := r.Throughput()
	if r.UnitMetric.Unit == "bytes" {
		return formatBytes(uint64(per)) + "/s"
	}
	return fmt.Sprintf("%.0f %s/s", per, r.UnitMetric.Unit)
}

func formatBytes(b uint64) string {
	if b == 0 {
		return "-"
	}

	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(b)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	formatted := fmt.Sprintf("%.1f", size)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + " " + units[unit]
}
