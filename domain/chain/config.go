// Package chain holds the MCMC run configuration, the shared auxiliary
// per-observation state, and the retained-sample containers.
package chain

import (
	"math"

	"gobart/domain/core"
)

// Config represents the complete sampler configuration. Zero values are
// filled in by ApplyDefaults; Validate rejects settings that would make the
// run meaningless before any iteration starts.
type Config struct {
	// Ensemble
	NumTrees       int
	TreeAlpha      float64 // split-probability base: alpha * (1+depth)^-beta
	TreeBeta       float64
	MinSamplesLeaf int
	MaxDepth       int
	CutpointGrid   int     // grid resolution for warm-start split search
	LeafScale      float64 // Gaussian leaf prior scale; 0 means 2/sqrt(NumTrees)

	// Iteration schedule
	NumWarmStart int // grow-from-root iterations
	NumBurnin    int
	NumMCMC      int // retained iterations
	ThinInterval int

	// Cutpoint prior: Gamma(AlphaGamma, BetaGamma) on exp(gamma_k)
	AlphaGamma float64
	BetaGamma  float64

	Seed       uint64
	NumWorkers int
}

// DefaultConfig returns the standard configuration used when callers do not
// override hyperparameters.
func DefaultConfig() Config {
	return Config{
		NumTrees:       50,
		TreeAlpha:      0.95,
		TreeBeta:       2.0,
		MinSamplesLeaf: 5,
		MaxDepth:       10,
		CutpointGrid:   100,
		NumWarmStart:   0,
		NumBurnin:      1000,
		NumMCMC:        500,
		ThinInterval:   1,
		AlphaGamma:     2.0,
		BetaGamma:      2.0,
		Seed:           1,
		NumWorkers:     1,
	}
}

// ApplyDefaults fills derived and zero-valued hyperparameters. The iteration
// schedule is taken as given apart from the thinning interval: an explicit
// zero warm-start or burn-in is a valid schedule, so those counts are never
// overwritten.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.NumTrees == 0 {
		c.NumTrees = d.NumTrees
	}
	if c.TreeAlpha == 0 {
		c.TreeAlpha = d.TreeAlpha
	}
	if c.TreeBeta == 0 {
		c.TreeBeta = d.TreeBeta
	}
	if c.MinSamplesLeaf == 0 {
		c.MinSamplesLeaf = d.MinSamplesLeaf
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.CutpointGrid == 0 {
		c.CutpointGrid = d.CutpointGrid
	}
	if c.ThinInterval == 0 {
		c.ThinInterval = d.ThinInterval
	}
	if c.AlphaGamma == 0 {
		c.AlphaGamma = d.AlphaGamma
	}
	if c.BetaGamma == 0 {
		c.BetaGamma = d.BetaGamma
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = d.NumWorkers
	}
	if c.LeafScale == 0 {
		c.LeafScale = 2.0 / math.Sqrt(float64(c.NumTrees))
	}
}

// Validate reports configuration errors that must abort the run at setup
func (c Config) Validate() error {
	if c.NumTrees <= 0 {
		return core.NewConfigError("NumTrees", "must be positive")
	}
	if c.NumMCMC <= 0 {
		return core.NewConfigError("NumMCMC", "must be positive: nothing would be retained")
	}
	if c.NumWarmStart < 0 || c.NumBurnin < 0 {
		return core.NewConfigError("iteration counts", "cannot be negative")
	}
	if c.ThinInterval <= 0 {
		return core.NewConfigError("ThinInterval", "must be positive")
	}
	if c.TreeAlpha <= 0 || c.TreeAlpha >= 1 {
		return core.NewConfigError("TreeAlpha", "must lie in (0, 1)")
	}
	if c.TreeBeta < 0 {
		return core.NewConfigError("TreeBeta", "cannot be negative")
	}
	if c.MinSamplesLeaf <= 0 {
		return core.NewConfigError("MinSamplesLeaf", "must be positive")
	}
	if c.MaxDepth <= 0 {
		return core.NewConfigError("MaxDepth", "must be positive")
	}
	if c.CutpointGrid <= 0 {
		return core.NewConfigError("CutpointGrid", "must be positive")
	}
	if c.LeafScale <= 0 {
		return core.NewConfigError("LeafScale", "must be positive")
	}
	if c.AlphaGamma <= 0 || c.BetaGamma <= 0 {
		return core.NewConfigError("cutpoint prior", "shape and rate must be positive")
	}
	if c.NumWorkers < 0 {
		return core.NewConfigError("NumWorkers", "cannot be negative")
	}
	return nil
}

// TotalIterations returns the full iteration count across all phases
func (c Config) TotalIterations() int {
	return c.NumWarmStart + c.NumBurnin + c.NumMCMC
}

// KeepIndices returns the ordered iteration indices whose state is copied
// into the sample containers: an arithmetic progression starting after
// warm-start and burn-in, stepped by the thinning interval.
func (c Config) KeepIndices() []int {
	start := c.NumWarmStart + c.NumBurnin
	end := start + c.NumMCMC
	idx := make([]int, 0, (c.NumMCMC+c.ThinInterval-1)/c.ThinInterval)
	for i := start; i < end; i += c.ThinInterval {
		idx = append(idx, i)
	}
	return idx
}
