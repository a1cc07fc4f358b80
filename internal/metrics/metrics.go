// Package metrics holds the Prometheus collectors updated by benchmark runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	IterationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "steadybench",
			Subsystem: "runner",
			Name:      "iterations_total",
			Help:      "The number of completed workload iterations.",
		}, []string{"workload"})

	// FailureCounter counts attempts abandoned on a locally handled error.
	FailureCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "steadybench",
			Subsystem: "runner",
			Name:      "failures_total",
			Help:      "The number of workload attempts abandoned on malformed input.",
		}, []string{"workload"})

	UnitCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "steadybench",
			Subsystem: "runner",
			Name:      "units_total",
			Help:      "The number of units (bytes, items) processed by workloads.",
		}, []string{"workload", "unit"})

	IterationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "steadybench",
			Subsystem: "runner",
			Name:      "iteration_duration_seconds",
			Help:      "Bucketed histogram of a single workload call.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2.0, 24), // 10us ~ 84s
		}, []string{"workload"})

	RunElapsedGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "steadybench",
			Subsystem: "runner",
			Name:      "run_elapsed_seconds",
			Help:      "Wall time of the last run of a workload.",
		}, []string{"workload"})
)

// InitMetrics registers all metrics in this package.
func InitMetrics(registry *prometheus.Registry) {
	registry.MustRegister(IterationCounter)
	registry.MustRegister(FailureCounter)
	registry.MustRegister(UnitCounter)
	registry.MustRegister(IterationDuration)
	registry.MustRegister(RunElapsedGauge)
}

// WriteTextfile dumps everything registry gathers to path in the Prometheus
// text format, for the node_exporter textfile collector.
func WriteTextfile(path string, registry *prometheus.Registry) error {
	return prometheus.WriteToTextfile(path, registry)
}
