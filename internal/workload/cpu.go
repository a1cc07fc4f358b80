package workload

import (
	"math/big"
	mrand "math/rand"
	"slices"
)

// Fibonacci computes the N-th Fibonacci number, iteratively or with the
// naive double recursion.
type Fibonacci struct {
	N         int
	Recursive bool

	last uint64
}

func (f *Fibonacci) Name() string {
	if f.Recursive {
		return "fibonacci-recursive"
	}
	return "fibonacci"
}

func (f *Fibonacci) Effects() Effect { return Compute }
func (f *Fibonacci) Unit() string    { return "" }

func (f *Fibonacci) Execute() (int64, error) {
	if f.Recursive {
		f.last = fibRecursive(f.N)
	} else {
		f.last = fibIterative(f.N)
	}
	return 0, nil
}

// Last returns the value computed by the most recent Execute.
func (f *Fibonacci) Last() uint64 { return f.last }

func fibIterative(n int) uint64 {
	var a, b uint64 = 0, 1
	for i := 0; i < n; i++ {
		a, b = b, a+b
	}
	return a
}

func fibRecursive(n int) uint64 {
	if n <= 1 {
		return uint64(max(n, 0))
	}
	return fibRecursive(n-1) + fibRecursive(n-2)
}

// Factorial computes N! with arbitrary precision.
type Factorial struct {
	N int

	last *big.Int
}

func (f *Factorial) Name() string    { return "factorial" }
func (f *Factorial) Effects() Effect { return Compute | Allocates }
func (f *Factorial) Unit() string    { return "" }
func (f *Factorial) Last() *big.Int  { return f.last }

func (f *Factorial) Execute() (int64, error) {
	acc := big.NewInt(1)
	step := new(big.Int)
	for i := 2; i <= f.N; i++ {
		acc.Mul(acc, step.SetInt64(int64(i)))
	}
	f.last = acc
	return 0, nil
}

// Primes counts primes below Limit by trial division.
type Primes struct {
	Limit int

	found int
}

func (p *Primes) Name() string    { return "primes" }
func (p *Primes) Effects() Effect { return Compute }
func (p *Primes) Unit() string    { return "items" }
func (p *Primes) Found() int      { return p.found }

func (p *Primes) Execute() (int64, error) {
	p.found = countPrimes(p.Limit)
	return int64(max(p.Limit-2, 0)), nil
}

func isPrime(n int) bool {
	if n <= 1 {
		return false
	}
	for i := 2; i*i <= n; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}

func countPrimes(limit int) int {
	count := 0
	for n := 2; n < limit; n++ {
		if isPrime(n) {
			count++
		}
	}
	return count
}

// Sort fills Size random float64 values and sorts them.
type Sort struct {
	Size int
	Seed int64

	rng  *mrand.Rand
	data []float64
}

func (s *Sort) Name() string    { return "sort" }
func (s *Sort) Effects() Effect { return Compute | Allocates }
func (s *Sort) Unit() string    { return "items" }
func (s *Sort) Data() []float64 { return s.data }

func (s *Sort) Execute() (int64, error) {
	if s.rng == nil {
		s.rng = mrand.New(mrand.NewSource(s.Seed))
	}

	s.data = make([]float64, s.Size)
	for i := range s.data {
		s.data[i] = s.rng.Float64()
	}
	slices.Sort(s.data)

	return int64(s.Size), nil
}

// CPUMix is the compound CPU iteration: Fibonacci(30), a sort of 10 000
// random values and a prime count below 1000.
type CPUMix struct {
	fib    Fibonacci
	sort   Sort
	primes Primes
}

func NewCPUMix(seed int64) *CPUMix {
	return &CPUMix{
		fib:    Fibonacci{N: 30},
		sort:   Sort{Size: 10000, Seed: seed},
		primes: Primes{Limit: 1000},
	}
}

func (c *CPUMix) Name() string    { return "cpu-mix" }
func (c *CPUMix) Effects() Effect { return Compute | Allocates }
func (c *CPUMix) Unit() string    { return "" }

func (c *CPUMix) Execute() (int64, error) {
	for _, w := range []Workload{&c.fib, &c.sort, &c.primes} {
		if _, err := w.Execute(); err != nil {
			return 0, err
		}
	}
	return 0, nil
}
