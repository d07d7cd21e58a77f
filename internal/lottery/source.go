package lottery

import (
	"math/rand/v2"
	"sync"
)

// Source is the randomness used by draws and coin flips. *rand.Rand from
// math/rand/v2 satisfies it; tests supply scripted sequences.
type Source interface {
	// IntN returns a uniform int in [0, n). n > 0.
	IntN(n int) int
	// Float64 returns a uniform float64 in [0, 1).
	Float64() float64
}

// lockedSource makes a *rand.Rand safe for concurrent requests.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource returns a concurrency-safe source seeded with seed. The same seed
// always yields the same sequence.
func NewSource(seed uint64) Source {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomSource returns a concurrency-safe source with an unpredictable seed.
func NewRandomSource() Source {
	return NewSource(rand.Uint64())
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}
