package dataset

import (
	"errors"
	"testing"

	"gobart/domain/core"
)

func TestNewCovariateBundleUniformWeights(t *testing.T) {
	b := NewCovariateBundle([][]float64{{1, 2}, {3, 4}}, []FeatureType{FeatureContinuous, FeatureCategorical})
	if b.NumRows() != 2 || b.NumFeatures() != 2 {
		t.Fatalf("shape %dx%d", b.NumRows(), b.NumFeatures())
	}
	for _, w := range b.VariableWeights {
		if w != 0.5 {
			t.Fatalf("weights not uniform: %v", b.VariableWeights)
		}
	}
	if err := b.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestBundleValidateRaggedRows(t *testing.T) {
	b := NewCovariateBundle([][]float64{{1, 2}, {3}}, []FeatureType{FeatureContinuous, FeatureContinuous})
	if err := b.Validate(); !errors.Is(err, core.ErrShapeMismatch) {
		t.Fatalf("expected shape error, got %v", err)
	}
}

func TestBundleValidateEmpty(t *testing.T) {
	b := NewCovariateBundle(nil, nil)
	if err := b.Validate(); !errors.Is(err, core.ErrEmptyCovariates) {
		t.Fatalf("expected empty error, got %v", err)
	}
}

func TestBundleValidateNegativeWeight(t *testing.T) {
	b := NewCovariateBundle([][]float64{{1}}, []FeatureType{FeatureContinuous})
	b.VariableWeights[0] = -1
	if err := b.Validate(); !errors.Is(err, core.ErrNegativeWeight) {
		t.Fatalf("expected weight error, got %v", err)
	}
}

func TestColumnCopies(t *testing.T) {
	b := NewCovariateBundle([][]float64{{1, 2}, {3, 4}}, []FeatureType{FeatureContinuous, FeatureContinuous})
	col := b.Column(1)
	col[0] = 99
	if b.Rows[0][1] != 2 {
		t.Fatal("Column must return a copy")
	}
}

func TestNewOrdinalOutcomeInfersLevels(t *testing.T) {
	o, err := NewOrdinalOutcome([]int{0, 2, 1, 2, 0})
	if err != nil {
		t.Fatal(err)
	}
	if o.NumLevels != 3 {
		t.Fatalf("NumLevels = %d, want 3", o.NumLevels)
	}
	counts := o.Counts()
	if counts[0] != 2 || counts[1] != 1 || counts[2] != 2 {
		t.Fatalf("counts %v", counts)
	}
}

func TestNewOrdinalOutcomeRejectsNegative(t *testing.T) {
	if _, err := NewOrdinalOutcome([]int{0, -1}); !errors.Is(err, core.ErrCategoryRange) {
		t.Fatalf("expected category error, got %v", err)
	}
}

func TestOutcomeValidateSingleCategory(t *testing.T) {
	o := &OrdinalOutcome{Values: []int{0, 0, 0}, NumLevels: 1}
	if err := o.Validate(); !errors.Is(err, core.ErrTooFewCategories) {
		t.Fatalf("expected too-few-categories error, got %v", err)
	}
}
