package ports

import (
	"math/rand/v2"
)

// RNGPort provides seeded random number generation for deterministic runs.
// Streams are math/rand/v2 generators, the source type gonum's distuv
// distributions consume.
type RNGPort interface {
	// SeededStream creates a deterministic random stream for a named
	// operation. The same (name, seed) pair always yields an identical
	// stream, which is what makes retained sample arrays reproducible
	// bit-for-bit across runs.
	SeededStream(name string, seed uint64) (*rand.Rand, error)
}
