package simulation

import "math/rand/v2"

// RandomSource is the randomness consumed by the stochastic projector.
// Implementations must be deterministic for a given seed.
type RandomSource interface {
	NormFloat64() float64
	Float64() float64
}

// SourceFactory builds a RandomSource from a seed.
type SourceFactory func(seed uint64) RandomSource

// NewRandomSource returns a PCG-backed source for seed.
func NewRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
