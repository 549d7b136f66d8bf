package chain

import (
	"fmt"

	"gobart/domain/core"
)

// Samples holds the retained MCMC draws. Every matrix is laid out with one
// row per quantity and one column per retained draw; columns are written
// exactly once, in iteration order, and are read-only afterward.
type Samples struct {
	KeepIdx []int

	// GammaSamples is (K-1) x nKeep; row 0 is the fixed gamma_0 = 0
	GammaSamples [][]float64

	// ForestPredTrain is nTrain x nKeep
	ForestPredTrain [][]float64

	// ForestPredTest is nTest x nKeep, nil when no held-out set is configured
	ForestPredTest [][]float64

	// LatentSamples is nTrain x nKeep
	LatentSamples [][]float64

	next int
}

// NewSamples allocates containers for len(keepIdx) retained draws.
// nTest == 0 disables the held-out container.
func NewSamples(nTrain, nTest, numLevels int, keepIdx []int) *Samples {
	nKeep := len(keepIdx)
	s := &Samples{
		KeepIdx:         keepIdx,
		GammaSamples:    allocMatrix(numLevels-1, nKeep),
		ForestPredTrain: allocMatrix(nTrain, nKeep),
		LatentSamples:   allocMatrix(nTrain, nKeep),
	}
	if nTest > 0 {
		s.ForestPredTest = allocMatrix(nTest, nKeep)
	}
	return s
}

func allocMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// NumRetained returns how many draws have been recorded so far
func (s *Samples) NumRetained() int { return s.next }

// NumKeep returns the total retained-draw capacity
func (s *Samples) NumKeep() int { return len(s.KeepIdx) }

// Record copies the current auxiliary state (and held-out predictions, when
// configured) into the next free column and advances the retained counter.
func (s *Samples) Record(state *AuxState, testPred []float64) error {
	if s.next >= len(s.KeepIdx) {
		return fmt.Errorf("%w: sample containers already full", core.ErrInvalidConfig)
	}
	col := s.next
	for i := range s.GammaSamples {
		s.GammaSamples[i][col] = state.Gamma[i]
	}
	for i := range s.ForestPredTrain {
		s.ForestPredTrain[i][col] = state.ForestPred[i]
	}
	for i := range s.LatentSamples {
		s.LatentSamples[i][col] = state.Latent[i]
	}
	if s.ForestPredTest != nil {
		if len(testPred) != len(s.ForestPredTest) {
			return core.NewShapeError("held-out predictions", len(testPred), len(s.ForestPredTest))
		}
		for i := range s.ForestPredTest {
			s.ForestPredTest[i][col] = testPred[i]
		}
	}
	s.next++
	return nil
}
