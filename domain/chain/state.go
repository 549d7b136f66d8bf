package chain

import (
	"math"
)

// AuxState is the coordination buffer shared by the ensemble sampler and the
// ordinal augmentation sampler: parallel per-observation scratch arrays plus
// the cutpoint parameters and their derived cumulative transform. The store
// performs no cross-slot synchronization; the driver enforces the
// latent -> cutpoint -> cumulative step order each iteration.
type AuxState struct {
	// Latent holds the positive per-observation augmentation draw z_i
	Latent []float64

	// ForestPred holds the current forest prediction lambda_i for each
	// training observation, refreshed after every ensemble update
	ForestPred []float64

	// Gamma holds the log-scale cutpoints gamma_0..gamma_{K-2}.
	// Gamma[0] is fixed at 0 for identifiability and never sampled.
	Gamma []float64

	// CumExpGamma holds c_0..c_{K-1} with c_i = sum_{j<i} exp(Gamma[j]).
	// Derived from Gamma, never independently mutated; c_K is +Inf by
	// convention and represented implicitly (see UpperBound).
	CumExpGamma []float64
}

// NewAuxState allocates zero-initialized state for n observations and
// numLevels outcome categories, with the cumulative transform consistent
// with the all-zero gamma vector.
func NewAuxState(n, numLevels int) *AuxState {
	s := &AuxState{
		Latent:      make([]float64, n),
		ForestPred:  make([]float64, n),
		Gamma:       make([]float64, numLevels-1),
		CumExpGamma: make([]float64, numLevels),
	}
	s.RefreshCumulative()
	return s
}

// NumLevels returns the number of outcome categories K
func (s *AuxState) NumLevels() int { return len(s.CumExpGamma) }

// RefreshCumulative recomputes CumExpGamma from the current Gamma vector.
// The result is non-decreasing by construction since every exp(gamma_j) > 0.
func (s *AuxState) RefreshCumulative() {
	s.CumExpGamma[0] = 0
	for i := 1; i < len(s.CumExpGamma); i++ {
		s.CumExpGamma[i] = s.CumExpGamma[i-1] + math.Exp(s.Gamma[i-1])
	}
}

// LowerBound returns c_k, the lower cumulative boundary of category k
func (s *AuxState) LowerBound(k int) float64 {
	return s.CumExpGamma[k]
}

// UpperBound returns c_{k+1}, the upper cumulative boundary of category k,
// with c_K = +Inf for the top category.
func (s *AuxState) UpperBound(k int) float64 {
	if k == len(s.CumExpGamma)-1 {
		return math.Inf(1)
	}
	return s.CumExpGamma[k+1]
}
