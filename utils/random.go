package utils

import "math/rand"

// NewSeededRNG builds an independent RNG from a seed. The arena keeps
// one for its whole lifetime; tests pass their own for repeatability.
func NewSeededRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
