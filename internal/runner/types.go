package runner

import (
	"fmt"
	"time"

	"steadybench/internal/stats"
	"steadybench/internal/workload"
)

type PolicyKind string

const (
	KindFixedIterations PolicyKind = "fixed-iterations"
	KindFixedDuration   PolicyKind = "fixed-duration"
)

// Policy decides when a run stops.
type Policy struct {
	Kind       PolicyKind    `json:"kind"`
	Iterations int           `json:"iterations,omitempty"`
	Duration   time.Duration `json:"duration_ns,omitempty"`
}

// FixedIterations runs the workload exactly n times.
func FixedIterations(n int) Policy {
	return Policy{Kind: KindFixedIterations, Iterations: n}
}

// FixedDuration runs the workload until d has elapsed. Elapsed time is only
// checked between calls, so a long call can overshoot d.
func FixedDuration(d time.Duration) Policy {
	return Policy{Kind: KindFixedDuration, Duration: d}
}

func (p Policy) Validate() error {
	switch p.Kind {
	case KindFixedIterations:
		if p.Iterations < 0 {
			return fmt.Errorf("iterations must be >= 0, got %d", p.Iterations)
		}
	case KindFixedDuration:
		if p.Duration < 0 {
			return fmt.Errorf("duration must be >= 0, got %s", p.Duration)
		}
	default:
		return fmt.Errorf("unknown stopping policy %q", p.Kind)
	}
	return nil
}

// more reports whether another attempt should start.
func (p Policy) more(attempts int, elapsed time.Duration) bool {
	if p.Kind == KindFixedDuration {
		return elapsed < p.Duration
	}
	return attempts < p.Iterations
}

func (p Policy) String() string {
	if p.Kind == KindFixedDuration {
		return fmt.Sprintf("for %s", p.Duration)
	}
	if p.Iterations == 1 {
		return "1 iteration"
	}
	return fmt.Sprintf("%d iterations", p.Iterations)
}

// MalformedPolicy says what a run does after a malformed-input failure.
type MalformedPolicy string

const (
	// AbortOnMalformed ends the run at the first malformed input.
	AbortOnMalformed MalformedPolicy = "abort"
	// SkipOnMalformed abandons the attempt and carries on.
	SkipOnMalformed MalformedPolicy = "skip"
)

func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch MalformedPolicy(s) {
	case AbortOnMalformed, SkipOnMalformed:
		return MalformedPolicy(s), nil
	case "":
		return AbortOnMalformed, nil
	}
	return "", fmt.Errorf("unknown malformed-input policy %q (want abort or skip)", s)
}

type Config struct {
	Policy      Policy
	OnMalformed MalformedPolicy
}

// Step is one entry of a benchmark plan.
type Step struct {
	Workload workload.Workload
	Policy   Policy
}

// UnitMetric is the total of whatever the workload counts.
type UnitMetric struct {
	Unit  string `json:"unit"`
	Total int64  `json:"total"`
}

// BenchmarkResult is the immutable outcome of one run.
type BenchmarkResult struct {
	Workload   string        `json:"workload"`
	Policy     Policy        `json:"policy"`
	StartedAt  time.Time     `json:"started_at"`
	Iterations int           `json:"iterations"`
	Failures   int           `json:"failures"`
	Aborted    bool          `json:"aborted"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	UnitMetric *UnitMetric   `json:"unit_metric,omitempty"`
	Latency    stats.Latency `json:"latency"`
}

func (r BenchmarkResult) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

func (r BenchmarkResult) IterationsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Iterations) / r.Elapsed.Seconds()
}

// Throughput returns units per second, or 0 without a unit metric.
func (r BenchmarkResult) Throughput() float64 {
	if r.UnitMetric == nil || r.Elapsed <= 0 {
		return 0
	}
	return float64(r.UnitMetric.Total) / r.Elapsed.Seconds()
}

// StatsSnapshot is sent over the channel
type StatsSnapshot struct {
	Workload   string
	Attempts   int
	Iterations uint64
	Failures   uint64
	Units      uint64
	Elapsed    time.Duration

	// Progress in [0,1] against the policy's budget
	Progress float64

	LastIteration time.Duration
	P50Ms         float64
	P90Ms         float64
	P99Ms         float64
}

// StatsUpdateChan is the channel type
type StatsUpdateChan chan StatsSnapshot
