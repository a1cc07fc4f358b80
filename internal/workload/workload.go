// Package workload defines the units of work a benchmark run repeats.
//
// A Workload is a named, side-effect-declaring unit behind a single Execute
// call. The runner never looks inside it: it only counts calls, times them and
// sums the units each call reports.
package workload

import (
	"errors"
	"strings"
)

var (
	// ErrMalformedInput marks a workload input that could not be parsed.
	// The runner handles it locally; every other error is fatal.
	ErrMalformedInput = errors.New("malformed input")

	// ErrResourceUnavailable marks a missing or unwritable file.
	ErrResourceUnavailable = errors.New("resource unavailable")
)

// Effect declares what a workload touches besides the CPU clock.
type Effect uint8

const (
	Compute Effect = 1 << iota
	Allocates
	ReadsFile
	WritesFile
)

func (e Effect) String() string {
	if e == 0 {
		return "none"
	}

	var parts []string
	for _, f := range []struct {
		bit  Effect
		name string
	}{
		{Compute, "compute"},
		{Allocates, "allocates"},
		{ReadsFile, "reads-file"},
		{WritesFile, "writes-file"},
	} {
		if e&f.bit != 0 {
			parts = append(parts, f.name)
		}
	}

	return strings.Join(parts, "|")
}

// Workload is one repeatable unit of work.
type Workload interface {
	Name() string
	Effects() Effect
	// Unit names what Execute counts ("bytes", "items"). Empty means the
	// workload reports no unit metric.
	Unit() string
	// Execute performs the work once and returns the units it processed.
	Execute() (int64, error)
}

// Preparer is implemented by workloads that need setup before the clock
// starts.
type Preparer interface {
	Prepare() error
}

// Cleaner is implemented by workloads that leave something behind. The
// runner always calls Cleanup once the loop ends, including on error.
type Cleaner interface {
	Cleanup() error
}
