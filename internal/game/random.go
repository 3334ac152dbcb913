package game

import "math/rand/v2"

// Source is the randomness the games draw from. Implementations must be safe
// for concurrent use when shared between requests.
type Source interface {
	IntN(n int) int
	Float64() float64
}

type globalSource struct{}

func (globalSource) IntN(n int) int   { return rand.IntN(n) }
func (globalSource) Float64() float64 { return rand.Float64() }

// DefaultSource uses the runtime-seeded top-level generator of math/rand/v2.
func DefaultSource() Source {
	return globalSource{}
}
