package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"steadybench/internal/workload"
)

type fakeWorkload struct {
	name  string
	unit  string
	units int64
	sleep time.Duration

	// errAt maps a 1-based call number to the error that call returns.
	errAt map[int]error
	// errAll is returned by every call when set.
	errAll error

	calls    int
	prepared bool
	cleaned  bool
}

func (f *fakeWorkload) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeWorkload) Effects() workload.Effect { return workload.Compute }
func (f *fakeWorkload) Unit() string             { return f.unit }

func (f *fakeWorkload) Execute() (int64, error) {
	f.calls++
	if f.sleep > 0 {
		time.Sleep(f.sleep)
	}
	if f.errAll != nil {
		return 0, f.errAll
	}
	if err, ok := f.errAt[f.calls]; ok {
		return 0, err
	}
	return f.units, nil
}

type lifecycleWorkload struct {
	fakeWorkload
}

func (l *lifecycleWorkload) Prepare() error {
	l.prepared = true
	return nil
}

func (l *lifecycleWorkload) Cleanup() error {
	l.cleaned = true
	return nil
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func malformed(path string) error {
	return fmt.Errorf("%w: %s: unexpected end of JSON input", workload.ErrMalformedInput, path)
}

func TestFixedIterationsCompletesExactly(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			w := &fakeWorkload{}
			r := NewRunner(Config{Policy: FixedIterations(n)}, nil, nil)

			res, err := r.Run(context.Background(), w)
			require.NoError(t, err)

			assert.Equal(t, n, res.Iterations)
			assert.Equal(t, n, w.calls)
			assert.GreaterOrEqual(t, res.ElapsedSeconds(), 0.0)
			assert.Equal(t, "fake", res.Workload)
			assert.Equal(t, FixedIterations(n), res.Policy)
			assert.Nil(t, res.UnitMetric)
		})
	}
}

func TestFixedIterationsSleepingWorkload(t *testing.T) {
	w := &fakeWorkload{sleep: 10 * time.Millisecond}
	r := NewRunner(Config{Policy: FixedIterations(5)}, nil, nil)

	res, err := r.Run(context.Background(), w)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Iterations)
	assert.GreaterOrEqual(t, res.ElapsedSeconds(), 0.05)
	assert.LessOrEqual(t, res.ElapsedSeconds(), 0.2)
	assert.GreaterOrEqual(t, res.Latency.P50Us, int64(10_000))
}

func TestFixedDurationNeverStopsEarly(t *testing.T) {
	budget := 30 * time.Millisecond
	w := &fakeWorkload{sleep: time.Millisecond}
	r := NewRunner(Config{Policy: FixedDuration(budget)}, nil, nil)

	res, err := r.Run(context.Background(), w)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.Elapsed, budget)
	assert.Positive(t, res.Iterations)
	assert.Equal(t, w.calls, res.Iterations)
}

func TestFixedDurationOvershootIsAccepted(t *testing.T) {
	w := &fakeWorkload{sleep: 40 * time.Millisecond}
	r := NewRunner(Config{Policy: FixedDuration(10 * time.Millisecond)}, nil, nil)

	res, err := r.Run(context.Background(), w)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Iterations)
	assert.GreaterOrEqual(t, res.Elapsed, 40*time.Millisecond)
}

func TestFixedDurationZeroRunsNothing(t *testing.T) {
	w := &fakeWorkload{}
	r := NewRunner(Config{Policy: FixedDuration(0)}, nil, nil)

	res, err := r.Run(context.Background(), w)
	require.NoError(t, err)

	// The time check precedes the first call.
	assert.Equal(t, 0, res.Iterations)
	assert.Equal(t, 0, w.calls)
	assert.GreaterOrEqual(t, res.ElapsedSeconds(), 0.0)
}

func TestInvalidPolicy(t *testing.T) {
	tests := []Policy{
		FixedIterations(-1),
		FixedDuration(-time.Second),
		{Kind: "forever"},
	}

	for _, p := range tests {
		w := &fakeWorkload{}
		r := NewRunner(Config{Policy: p}, nil, nil)
		_, err := r.Run(context.Background(), w)
		assert.Error(t, err, "policy %+v", p)
		assert.Zero(t, w.calls)
	}
}

func TestMalformedInputAbortLogsOnce(t *testing.T) {
	logger, logs := observedLogger()
	w := &fakeWorkload{errAll: malformed("daytrip.users.json")}
	r := NewRunner(Config{Policy: FixedIterations(10), OnMalformed: AbortOnMalformed}, logger, nil)

	res, err := r.Run(context.Background(), w)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Iterations)
	assert.Equal(t, 1, res.Failures)
	assert.True(t, res.Aborted)
	assert.Equal(t, 1, w.calls)

	events := logs.FilterMessage("malformed input")
	require.Equal(t, 1, events.Len())
	entry := events.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "fake", entry.ContextMap()["workload"])
}

func TestMalformedInputDefaultsToAbort(t *testing.T) {
	r := NewRunner(Config{Policy: FixedIterations(3)}, nil, nil)
	assert.Equal(t, AbortOnMalformed, r.Cfg.OnMalformed)
}

func TestMalformedInputSkipContinues(t *testing.T) {
	logger, logs := observedLogger()
	w := &fakeWorkload{errAt: map[int]error{
		2: malformed("a.json"),
		4: malformed("a.json"),
	}}
	r := NewRunner(Config{Policy: FixedIterations(5), OnMalformed: SkipOnMalformed}, logger, nil)

	res, err := r.Run(context.Background(), w)
	require.NoError(t, err)

	assert.Equal(t, 5, w.calls)
	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, 2, res.Failures)
	assert.False(t, res.Aborted)
	assert.Equal(t, 2, logs.FilterMessage("malformed input").Len())
}

func TestMalformedDocumentDoesNotEscape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daytrip.users.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 1}, {"id": `), 0o644))

	logger, logs := observedLogger()
	r := NewRunner(Config{Policy: FixedIterations(3)}, logger, nil)

	res, err := r.Run(context.Background(), &workload.DocumentParse{Path: path})
	require.NoError(t, err)

	assert.Equal(t, "document-parse", res.Workload)
	assert.Equal(t, 0, res.Iterations)
	assert.Equal(t, 1, logs.FilterMessage("malformed input").Len())
}

func TestFatalErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	w := &lifecycleWorkload{fakeWorkload{errAt: map[int]error{3: boom}}}
	r := NewRunner(Config{Policy: FixedIterations(10)}, nil, nil)

	res, err := r.Run(context.Background(), w)
	require.Error(t, err)

	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "workload fake")
	assert.Equal(t, 2, res.Iterations)
	assert.True(t, w.prepared)
	assert.True(t, w.cleaned, "cleanup must run after a fatal error")
}

func TestResourceUnavailableIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	r := NewRunner(Config{Policy: FixedIterations(2), OnMalformed: SkipOnMalformed}, nil, nil)

	_, err := r.Run(context.Background(), &workload.DocumentParse{Path: path})
	assert.ErrorIs(t, err, workload.ErrResourceUnavailable)
}

func TestPrepareAndCleanup(t *testing.T) {
	w := &lifecycleWorkload{}
	r := NewRunner(Config{Policy: FixedIterations(2)}, nil, nil)

	_, err := r.Run(context.Background(), w)
	require.NoError(t, err)

	assert.True(t, w.prepared)
	assert.True(t, w.cleaned)
}

func TestIOWorkloadLeavesNoScratchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), workload.DefaultScratchFile)
	r := NewRunner(Config{Policy: FixedIterations(3)}, nil, nil)

	res, err := r.Run(context.Background(), &workload.FileWrite{Path: path, ChunkSize: 4096})
	require.NoError(t, err)
	require.NotNil(t, res.UnitMetric)
	assert.Equal(t, UnitMetric{Unit: "bytes", Total: 3 * 4096}, *res.UnitMetric)
	assert.NoFileExists(t, path)

	r.Cfg.Policy = FixedIterations(2)
	res, err = r.Run(context.Background(), &workload.FileRead{Path: path, ChunkSize: 1024, Chunks: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 2*2048, res.UnitMetric.Total)
	assert.NoFileExists(t, path)
}

func TestContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &fakeWorkload{}
	r := NewRunner(Config{Policy: FixedIterations(5)}, nil, nil)

	res, err := r.Run(ctx, w)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Iterations)
	assert.Zero(t, w.calls)
}

func TestUnitMetricAndThroughput(t *testing.T) {
	w := &fakeWorkload{unit: "bytes", units: 512, sleep: time.Millisecond}
	r := NewRunner(Config{Policy: FixedIterations(4)}, nil, nil)

	res, err := r.Run(context.Background(), w)
	require.NoError(t, err)

	require.NotNil(t, res.UnitMetric)
	assert.EqualValues(t, 2048, res.UnitMetric.Total)
	assert.Positive(t, res.Throughput())
	assert.Positive(t, res.IterationsPerSecond())
}

func TestUpdatesAreSent(t *testing.T) {
	updates := make(StatsUpdateChan, 16)
	r := NewRunner(Config{Policy: FixedIterations(4)}, nil, updates)

	_, err := r.Run(context.Background(), &fakeWorkload{})
	require.NoError(t, err)
	close(updates)

	var last StatsSnapshot
	count := 0
	for s := range updates {
		last = s
		count++
	}
	assert.Equal(t, 4, count)
	assert.EqualValues(t, 4, last.Iterations)
	assert.Equal(t, 4, last.Attempts)
	assert.InDelta(t, 1.0, last.Progress, 1e-9)
}

func TestUpdatesNeverBlock(t *testing.T) {
	updates := make(StatsUpdateChan, 1)
	r := NewRunner(Config{Policy: FixedIterations(50)}, nil, updates)

	res, err := r.Run(context.Background(), &fakeWorkload{})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Iterations)
	assert.Len(t, updates, 1)
}

func TestLifecycleLogLines(t *testing.T) {
	logger, logs := observedLogger()
	r := NewRunner(Config{Policy: FixedIterations(2)}, logger, nil)

	_, err := r.Run(context.Background(), &fakeWorkload{name: "lines"})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("starting workload").Len())
	done := logs.FilterMessage("workload completed").All()
	require.Len(t, done, 1)
	assert.EqualValues(t, 2, done[0].ContextMap()["iterations"])
}

func TestRunPlan(t *testing.T) {
	first := &fakeWorkload{name: "first"}
	second := &fakeWorkload{name: "second", errAll: errors.New("disk gone")}
	third := &fakeWorkload{name: "third"}

	var seen []string
	var lastErr error
	r := NewRunner(Config{}, nil, nil)
	results, err := RunPlan(context.Background(), r, []Step{
		{Workload: first, Policy: FixedIterations(3)},
		{Workload: second, Policy: FixedIterations(1)},
		{Workload: third, Policy: FixedIterations(1)},
	}, func(i int, res BenchmarkResult, err error) {
		seen = append(seen, fmt.Sprintf("%d:%s", i, res.Workload))
		lastErr = err
	})

	require.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "first", results[0].Workload)
	assert.Equal(t, 3, results[0].Iterations)
	assert.Zero(t, third.calls)
	assert.Equal(t, []string{"0:first", "1:second"}, seen)
	assert.ErrorIs(t, lastErr, err)
}

func TestRunStepAppliesStepPolicy(t *testing.T) {
	w := &fakeWorkload{}
	r := NewRunner(Config{Policy: FixedIterations(50)}, nil, nil)

	res, err := RunStep(context.Background(), r, Step{Workload: w, Policy: FixedIterations(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, FixedIterations(2), r.Cfg.Policy)
}

func TestSnapshotCarriesPercentiles(t *testing.T) {
	updates := make(StatsUpdateChan, 10)
	r := NewRunner(Config{Policy: FixedIterations(1)}, nil, updates)

	_, err := r.Run(context.Background(), &fakeWorkload{sleep: 2 * time.Millisecond})
	require.NoError(t, err)

	s := <-updates
	assert.GreaterOrEqual(t, s.P90Ms, 2.0)
	assert.GreaterOrEqual(t, s.P99Ms, s.P90Ms)
	assert.GreaterOrEqual(t, s.P90Ms, s.P50Ms)
}

func TestParseMalformedPolicy(t *testing.T) {
	p, err := ParseMalformedPolicy("skip")
	require.NoError(t, err)
	assert.Equal(t, SkipOnMalformed, p)

	p, err = ParseMalformedPolicy("")
	require.NoError(t, err)
	assert.Equal(t, AbortOnMalformed, p)

	_, err = ParseMalformedPolicy("retry")
	assert.Error(t, err)
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "20 iterations", FixedIterations(20).String())
	assert.Equal(t, "1 iteration", FixedIterations(1).String())
	assert.Equal(t, "0 iterations", FixedIterations(0).String())
	assert.Equal(t, "for 10s", FixedDuration(10*time.Second).String())
}
