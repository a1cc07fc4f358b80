package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"steadybench/internal/runner"
)

var csvHeader = []string{
	"startedAt", "workload", "policy", "iterations", "failures", "aborted",
	"elapsedSeconds", "iterPerSecond", "unit", "units", "throughput",
	"meanUs", "p50Us", "p90Us", "p99Us", "maxUs",
}

// ExportCSV writes one row per result.
func ExportCSV(results []runner.BenchmarkResult, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range results {
		unit, units := "", ""
		if r.UnitMetric != nil {
			unit = r.UnitMetric.Unit
			units = strconv.FormatInt(r.UnitMetric.Total, 10)
		}

		record := []string{
			r.StartedAt.Format("2006-01-02T15:04:05.000Z07:00"),
			r.Workload,
			r.Policy.String(),
			strconv.Itoa(r.Iterations),
			strconv.Itoa(r.Failures),
			strconv.FormatBool(r.Aborted),
			strconv.FormatFloat(r.ElapsedSeconds(), 'f', 6, 64),
			strconv.FormatFloat(r.IterationsPerSecond(), 'f', 3, 64),
			unit,
			units,
			strconv.FormatFloat(r.Throughput(), 'f', 3, 64),
			strconv.FormatFloat(r.Latency.MeanUs, 'f', 1, 64),
			strconv.FormatInt(r.Latency.P50Us, 10),
			strconv.FormatInt(r.Latency.P90Us, 10),
			strconv.FormatInt(r.Latency.P99Us, 10),
			strconv.FormatInt(r.Latency.MaxUs, 10),
		}

		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// ExportJSON exports results to a JSON file.
func ExportJSON(results []runner.BenchmarkResult, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	defer f.Close()

	if err := GenerateJSON(f, results); err != nil {
		return err
	}
	return f.Close()
}
