package stats

import (
	"sync/atomic"
	"time"
)

// Stats holds the running aggregate of one benchmark run. Counters are
// atomic so a progress display can read them while the runner writes.
type Stats struct {
	Iterations uint64
	Failures   uint64
	Units      uint64

	// Per-iteration wall time (microseconds)
	IterationTime *SafeHistogram
}

func NewStats() *Stats {
	return &Stats{
		IterationTime: NewSafeHistogram(),
	}
}

// AddIteration records one successful workload call.
func (s *Stats) AddIteration(units int64, took time.Duration) {
	atomic.AddUint64(&s.Iterations, 1)
	if units > 0 {
		atomic.AddUint64(&s.Units, uint64(units))
	}
	s.IterationTime.RecordValue(took.Microseconds())
}

// AddFailure records one abandoned attempt.
func (s *Stats) AddFailure() {
	atomic.AddUint64(&s.Failures, 1)
}

func (s *Stats) Reset() {
	atomic.StoreUint64(&s.Iterations, 0)
	atomic.StoreUint64(&s.Failures, 0)
	atomic.StoreUint64(&s.Units, 0)
	s.IterationTime.Reset()
}

func (s *Stats) IterationCount() uint64 { return atomic.LoadUint64(&s.Iterations) }
func (s *Stats) FailureCount() uint64   { return atomic.LoadUint64(&s.Failures) }
func (s *Stats) UnitCount() uint64      { return atomic.LoadUint64(&s.Units) }

func (s *Stats) GetP50Ms() float64 {
	return float64(s.IterationTime.ValueAtQuantile(50)) / 1000.0
}

func (s *Stats) GetP90Ms() float64 {
	return float64(s.IterationTime.ValueAtQuantile(90)) / 1000.0
}

func (s *Stats) GetP99Ms() float64 {
	return float64(s.IterationTime.ValueAtQuantile(99)) / 1000.0
}

// MeanMs returns the average iteration time in milliseconds
func (s *Stats) MeanMs() float64 {
	return s.IterationTime.Mean() / 1000.0
}

// Latency is a point-in-time summary of the iteration histogram.
type Latency struct {
	MeanUs float64 `json:"mean_us"`
	P50Us  int64   `json:"p50_us"`
	P90Us  int64   `json:"p90_us"`
	P99Us  int64   `json:"p99_us"`
	MaxUs  int64   `json:"max_us"`
}

func (s *Stats) Latency() Latency {
	if s.IterationTime.TotalCount() == 0 {
		return Latency{}
	}
	return Latency{
		MeanUs: s.IterationTime.Mean(),
		P50Us:  s.IterationTime.ValueAtQuantile(50),
		P90Us:  s.IterationTime.ValueAtQuantile(90),
		P99Us:  s.IterationTime.ValueAtQuantile(99),
		MaxUs:  s.IterationTime.Max(),
	}
}
