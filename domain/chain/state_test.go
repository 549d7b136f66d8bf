package chain

import (
	"math"
	"testing"
)

func TestNewAuxStateCumulativeAtZeroGamma(t *testing.T) {
	s := NewAuxState(4, 3)
	if s.NumLevels() != 3 {
		t.Fatalf("NumLevels = %d", s.NumLevels())
	}
	// gamma all zero: c = 0, 1, 2
	for i, want := range []float64{0, 1, 2} {
		if s.CumExpGamma[i] != want {
			t.Errorf("CumExpGamma[%d] = %g, want %g", i, s.CumExpGamma[i], want)
		}
	}
}

func TestRefreshCumulativeMonotone(t *testing.T) {
	s := NewAuxState(1, 5)
	s.Gamma[1] = -3.2
	s.Gamma[2] = 4.1
	s.Gamma[3] = -0.7
	s.RefreshCumulative()
	if s.CumExpGamma[0] != 0 {
		t.Fatal("cumulative must start at 0")
	}
	for i := 1; i < len(s.CumExpGamma); i++ {
		if s.CumExpGamma[i] <= s.CumExpGamma[i-1] {
			t.Fatalf("cumulative not strictly increasing at %d: %v", i, s.CumExpGamma)
		}
	}
}

func TestCategoryBounds(t *testing.T) {
	s := NewAuxState(1, 3)
	if s.LowerBound(0) != 0 {
		t.Error("category 0 lower bound must be 0")
	}
	if s.UpperBound(0) != s.CumExpGamma[1] {
		t.Error("category 0 upper bound must be c_1")
	}
	if !math.IsInf(s.UpperBound(2), 1) {
		t.Error("top category upper bound must be +Inf")
	}
}

func TestSamplesRecordFillsColumns(t *testing.T) {
	s := NewAuxState(2, 3)
	s.Latent[0], s.Latent[1] = 0.5, 1.5
	s.ForestPred[0], s.ForestPred[1] = -0.1, 0.2
	s.Gamma[1] = 0.3

	samples := NewSamples(2, 1, 3, []int{0, 1})
	if err := samples.Record(s, []float64{7}); err != nil {
		t.Fatal(err)
	}
	if samples.NumRetained() != 1 {
		t.Fatalf("NumRetained = %d", samples.NumRetained())
	}
	if samples.GammaSamples[0][0] != 0 || samples.GammaSamples[1][0] != 0.3 {
		t.Errorf("gamma column mismatch: %v", samples.GammaSamples)
	}
	if samples.LatentSamples[1][0] != 1.5 {
		t.Errorf("latent column mismatch: %v", samples.LatentSamples)
	}
	if samples.ForestPredTest[0][0] != 7 {
		t.Errorf("held-out column mismatch: %v", samples.ForestPredTest)
	}
}

func TestSamplesRecordRejectsOverflowAndShape(t *testing.T) {
	s := NewAuxState(1, 2)
	samples := NewSamples(1, 2, 2, []int{0})
	if err := samples.Record(s, []float64{1}); err == nil {
		t.Fatal("short held-out vector should be rejected")
	}
	if err := samples.Record(s, []float64{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := samples.Record(s, []float64{1, 2}); err == nil {
		t.Fatal("recording past capacity should fail")
	}
}
