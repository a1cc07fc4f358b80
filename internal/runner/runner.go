package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"steadybench/internal/metrics"
	"steadybench/internal/stats"
	"steadybench/internal/workload"
)

// Runner repeats one workload under a stopping policy. It is synchronous:
// Run returns when the loop is over, and only the calling goroutine touches
// the workload.
type Runner struct {
	Cfg    Config
	Stats  *stats.Stats
	Logger *zap.Logger

	// Event Channel
	Updates StatsUpdateChan

	now func() time.Time
}

func NewRunner(cfg Config, logger *zap.Logger, updates StatsUpdateChan) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OnMalformed == "" {
		cfg.OnMalformed = AbortOnMalformed
	}

	return &Runner{
		Cfg:     cfg,
		Stats:   stats.NewStats(),
		Logger:  logger,
		Updates: updates,
		now:     time.Now,
	}
}

// Run executes w until the policy is satisfied and returns the result.
//
// Malformed input is logged and handled per Cfg.OnMalformed. Any other
// workload error, a Prepare/Cleanup error or context cancellation is returned
// together with the partial result.
func (r *Runner) Run(ctx context.Context, w workload.Workload) (res BenchmarkResult, err error) {
	name := w.Name()
	policy := r.Cfg.Policy
	if err := policy.Validate(); err != nil {
		return BenchmarkResult{Workload: name, Policy: policy}, err
	}

	r.Stats.Reset()
	log := r.Logger.With(zap.String("workload", name))

	if c, ok := w.(workload.Cleaner); ok {
		defer func() {
			if cerr := c.Cleanup(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("cleanup %s: %w", name, cerr))
			}
		}()
	}
	if p, ok := w.(workload.Preparer); ok {
		if err := p.Prepare(); err != nil {
			return BenchmarkResult{Workload: name, Policy: policy}, fmt.Errorf("prepare %s: %w", name, err)
		}
	}

	log.Info("starting workload",
		zap.Stringer("policy", policy),
		zap.Stringer("effects", w.Effects()),
	)

	startedAt := time.Now()
	start := r.now()
	attempts := 0
	aborted := false

	var runErr error
	for {
		if runErr = ctx.Err(); runErr != nil {
			break
		}
		if !policy.more(attempts, r.now().Sub(start)) {
			break
		}
		attempts++

		callStart := r.now()
		units, callErr := w.Execute()
		took := r.now().Sub(callStart)

		if callErr != nil {
			if !errors.Is(callErr, workload.ErrMalformedInput) {
				runErr = fmt.Errorf("workload %s: %w", name, callErr)
				break
			}

			r.Stats.AddFailure()
			metrics.FailureCounter.WithLabelValues(name).Inc()
			log.Error("malformed input",
				zap.Int("attempt", attempts),
				zap.String("on_malformed", string(r.Cfg.OnMalformed)),
				zap.Error(callErr),
			)
			if r.Cfg.OnMalformed == AbortOnMalformed {
				aborted = true
				break
			}
			r.sendUpdate(name, attempts, r.now().Sub(start), took)
			continue
		}

		r.Stats.AddIteration(units, took)
		metrics.IterationCounter.WithLabelValues(name).Inc()
		metrics.IterationDuration.WithLabelValues(name).Observe(took.Seconds())
		if unit := w.Unit(); unit != "" && units > 0 {
			metrics.UnitCounter.WithLabelValues(name, unit).Add(float64(units))
		}
		r.sendUpdate(name, attempts, r.now().Sub(start), took)
	}
	elapsed := r.now().Sub(start)

	res = BenchmarkResult{
		Workload:   name,
		Policy:     policy,
		StartedAt:  startedAt,
		Iterations: int(r.Stats.IterationCount()),
		Failures:   int(r.Stats.FailureCount()),
		Aborted:    aborted,
		Elapsed:    elapsed,
		Latency:    r.Stats.Latency(),
	}
	if unit := w.Unit(); unit != "" {
		res.UnitMetric = &UnitMetric{Unit: unit, Total: int64(r.Stats.UnitCount())}
	}
	metrics.RunElapsedGauge.WithLabelValues(name).Set(elapsed.Seconds())

	if runErr != nil {
		log.Error("workload stopped",
			zap.Int("iterations", res.Iterations),
			zap.Duration("elapsed", elapsed),
			zap.Error(runErr),
		)
		return res, runErr
	}

	log.Info("workload completed",
		zap.Int("iterations", res.Iterations),
		zap.Int("failures", res.Failures),
		zap.Bool("aborted", aborted),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}

func (r *Runner) sendUpdate(name string, attempts int, elapsed, last time.Duration) {
	if r.Updates == nil {
		return
	}

	s := StatsSnapshot{
		Workload:      name,
		Attempts:      attempts,
		Iterations:    r.Stats.IterationCount(),
		Failures:      r.Stats.FailureCount(),
		Units:         r.Stats.UnitCount(),
		Elapsed:       elapsed,
		Progress:      r.progress(attempts, elapsed),
		LastIteration: last,
		P50Ms:         r.Stats.GetP50Ms(),
		P90Ms:         r.Stats.GetP90Ms(),
		P99Ms:         r.Stats.GetP99Ms(),
	}

	// Non-blocking send
	select {
	case r.Updates <- s:
	default:
		// Drop update if channel full, UI acts as backpressure
	}
}

func (r *Runner) progress(attempts int, elapsed time.Duration) float64 {
	p := r.Cfg.Policy
	var pct float64
	switch p.Kind {
	case KindFixedDuration:
		if p.Duration <= 0 {
			return 1
		}
		pct = elapsed.Seconds() / p.Duration.Seconds()
	default:
		if p.Iterations <= 0 {
			return 1
		}
		pct = float64(attempts) / float64(p.Iterations)
	}
	return min(pct, 1)
}

// RunStep runs one plan step on r under the step's stopping policy.
func RunStep(ctx context.Context, r *Runner, step Step) (BenchmarkResult, error) {
	r.Cfg.Policy = step.Policy
	return r.Run(ctx, step.Workload)
}

// StepFunc is told about every step RunPlan finishes, failed ones included.
type StepFunc func(index int, res BenchmarkResult, err error)

// RunPlan runs each step in order and stops at the first error. Results of
// completed steps are returned either way. done may be nil.
func RunPlan(ctx context.Context, r *Runner, steps []Step, done StepFunc) ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, len(steps))
	for i, step := range steps {
		res, err := RunStep(ctx, r, step)
		if done != nil {
			done(i, res, err)
		}
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
