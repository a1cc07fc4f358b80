package cmd

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// countArg returns args[i] as a non-negative count, or def when absent.
func countArg(args []string, i int, name string, def int) (int, error) {
	if i >= len(args) {
		return def, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a whole number", name, args[i])
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must be >= 0, got %d", name, n)
	}
	return n, nil
}

// durationArg accepts plain seconds ("10", "0.5") or a Go duration ("1m30s").
func durationArg(s string) (time.Duration, error) {
	var d time.Duration
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) || secs > math.MaxInt64/float64(time.Second) {
			return 0, fmt.Errorf("duration: %q seconds is out of range", s)
		}
		d = time.Duration(secs * float64(time.Second))
	} else if d, err = time.ParseDuration(s); err != nil {
		return 0, fmt.Errorf("duration: %q is neither seconds nor a duration like 1m30s", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0, got %s", d)
	}
	return d, nil
}
