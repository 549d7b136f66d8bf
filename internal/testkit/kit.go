// Package testkit generates deterministic synthetic ordinal datasets used by
// the package tests and the demo command.
package testkit

import (
	"context"
	"math"
	"math/rand/v2"

	"gobart/domain/dataset"
	"gobart/ports"
)

// SyntheticConfig shapes a generated ordinal dataset
type SyntheticConfig struct {
	NumRows     int
	NumFeatures int
	NumLevels   int
	Seed        uint64
}

// GenerateOrdinal draws covariates uniformly on [0, 1], forms a smooth signal
// over the first two features, and categorizes a unit-rate exponential draw
// against the cumulative cutpoints implied by an all-zero cutpoint vector.
// Every category is guaranteed at least one observation so the inferred level
// count matches cfg.NumLevels.
func GenerateOrdinal(cfg SyntheticConfig) (*dataset.CovariateBundle, *dataset.OrdinalOutcome) {
	rng := rand.New(rand.NewPCG(cfg.Seed, 0x9e3779b97f4a7c15))
	rows := make([][]float64, cfg.NumRows)
	values := make([]int, cfg.NumRows)
	for i := range rows {
		row := make([]float64, cfg.NumFeatures)
		for j := range row {
			row[j] = rng.Float64()
		}
		rows[i] = row

		lambda := 0.0
		if cfg.NumFeatures > 0 {
			lambda += math.Sin(2 * math.Pi * row[0])
		}
		if cfg.NumFeatures > 1 {
			lambda += row[1] - 0.5
		}
		z := rng.ExpFloat64() * math.Exp(-lambda)
		k := 0
		for k < cfg.NumLevels-1 && z > float64(k+1) {
			k++
		}
		values[i] = k
	}
	for k := 0; k < cfg.NumLevels && k < cfg.NumRows; k++ {
		values[k] = k
	}
	types := make([]dataset.FeatureType, cfg.NumFeatures)
	for j := range types {
		types[j] = dataset.FeatureContinuous
	}
	return dataset.NewCovariateBundle(rows, types), &dataset.OrdinalOutcome{Values: values, NumLevels: cfg.NumLevels}
}

// FakeSource serves fixed in-memory data through the covariate source port
type FakeSource struct {
	Bundle  *dataset.CovariateBundle
	Outcome *dataset.OrdinalOutcome
	Holdout *dataset.CovariateBundle
	Err     error
}

var _ ports.CovariateSourcePort = (*FakeSource)(nil)

func (f *FakeSource) ResolveTraining(ctx context.Context) (*dataset.CovariateBundle, *dataset.OrdinalOutcome, error) {
	if f.Err != nil {
		return nil, nil, f.Err
	}
	return f.Bundle, f.Outcome, nil
}

func (f *FakeSource) ResolveHoldout(ctx context.Context) (*dataset.CovariateBundle, error) {
	return f.Holdout, nil
}
