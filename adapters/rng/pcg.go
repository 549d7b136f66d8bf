// Package rng provides the default RNGPort adapter backed by PCG streams.
package rng

import (
	"hash/fnv"
	"math/rand/v2"
)

// PCGAdapter derives independent deterministic streams from a base seed and
// a stream name.
type PCGAdapter struct{}

// New creates a PCG stream adapter
func New() *PCGAdapter {
	return &PCGAdapter{}
}

// SeededStream returns a generator seeded by (name, seed). The name is
// folded into the second PCG seed word so differently named streams with the
// same base seed do not overlap.
func (a *PCGAdapter) SeededStream(name string, seed uint64) (*rand.Rand, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return rand.New(rand.NewPCG(seed, h.Sum64())), nil
}
