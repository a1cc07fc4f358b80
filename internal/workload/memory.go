package workload

import (
	mrand "math/rand"
)

// Alloc allocates and fills Size random float64 values per call.
type Alloc struct {
	Size int
	Seed int64

	rng  *mrand.Rand
	sink []float64
}

func (a *Alloc) Name() string    { return "alloc" }
func (a *Alloc) Effects() Effect { return Allocates }
func (a *Alloc) Unit() string    { return "bytes" }

func (a *Alloc) Execute() (int64, error) {
	if a.rng == nil {
		a.rng = mrand.New(mrand.NewSource(a.Seed))
	}

	buf := make([]float64, a.Size)
	for i := range buf {
		buf[i] = a.rng.Float64()
	}
	// Keep the last slice reachable so the fill is not optimised away.
	a.sink = buf

	return int64(a.Size) * 8, nil
}
