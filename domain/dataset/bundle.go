// Package dataset holds the immutable processed inputs to a sampling run:
// the covariate matrix with per-column metadata and the ordinal outcome.
package dataset

import (
	"gobart/domain/core"
)

// FeatureType defines covariate column types for split selection
type FeatureType string

const (
	FeatureContinuous  FeatureType = "continuous"
	FeatureCategorical FeatureType = "categorical"
)

// CovariateBundle is the canonical data object consumed by the samplers.
// It is the single output of CovariateSourcePort and the single covariate
// input to the MCMC engine; it is never mutated after construction.
type CovariateBundle struct {
	// Core data: rows = observations, cols = features
	Rows [][]float64

	// Per-column metadata
	FeatureTypes []FeatureType

	// Non-negative per-column selection weights used to bias split-feature
	// choice. Uniform when not supplied.
	VariableWeights []float64

	CreatedAt core.Timestamp
}

// NewCovariateBundle builds a bundle with uniform variable weights.
func NewCovariateBundle(rows [][]float64, types []FeatureType) *CovariateBundle {
	b := &CovariateBundle{
		Rows:         rows,
		FeatureTypes: types,
		CreatedAt:    core.Now(),
	}
	if p := b.NumFeatures(); p > 0 {
		weights := make([]float64, p)
		for j := range weights {
			weights[j] = 1.0 / float64(p)
		}
		b.VariableWeights = weights
	}
	return b
}

// NumRows returns the number of observations
func (b *CovariateBundle) NumRows() int {
	return len(b.Rows)
}

// NumFeatures returns the number of covariate columns
func (b *CovariateBundle) NumFeatures() int {
	if len(b.Rows) == 0 {
		return 0
	}
	return len(b.Rows[0])
}

// Column copies column j into a fresh slice
func (b *CovariateBundle) Column(j int) []float64 {
	col := make([]float64, len(b.Rows))
	for i, row := range b.Rows {
		col[i] = row[j]
	}
	return col
}

// Validate ensures the bundle is internally consistent
func (b *CovariateBundle) Validate() error {
	if b.NumRows() == 0 || b.NumFeatures() == 0 {
		return core.ErrEmptyCovariates
	}
	p := b.NumFeatures()
	for _, row := range b.Rows {
		if len(row) != p {
			return core.NewShapeError("covariate row", len(row), p)
		}
	}
	if len(b.FeatureTypes) != p {
		return core.NewShapeError("feature types", len(b.FeatureTypes), p)
	}
	if len(b.VariableWeights) != p {
		return core.NewShapeError("variable weights", len(b.VariableWeights), p)
	}
	for _, w := range b.VariableWeights {
		if w < 0 {
			return core.ErrNegativeWeight
		}
	}
	return nil
}
