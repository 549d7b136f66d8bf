package chain

import (
	"errors"
	"math"
	"testing"

	"gobart/domain/core"
)

func TestApplyDefaultsDerivesLeafScale(t *testing.T) {
	cfg := Config{NumTrees: 25, NumMCMC: 10}
	cfg.ApplyDefaults()
	want := 2.0 / math.Sqrt(25)
	if cfg.LeafScale != want {
		t.Errorf("LeafScale = %g, want %g", cfg.LeafScale, want)
	}
	if cfg.NumTrees != 25 {
		t.Errorf("explicit NumTrees overwritten: %d", cfg.NumTrees)
	}
	if cfg.ThinInterval != DefaultConfig().ThinInterval {
		t.Errorf("ThinInterval default not applied: %d", cfg.ThinInterval)
	}
	// Schedule counts are never defaulted: zero burn-in stays zero
	if cfg.NumBurnin != 0 || cfg.NumWarmStart != 0 {
		t.Errorf("explicit zero schedule overwritten: warmstart %d burnin %d",
			cfg.NumWarmStart, cfg.NumBurnin)
	}
}

func TestValidateRejectsZeroRetained(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumMCMC = 0
	err := cfg.Validate()
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestValidateRejectsZeroTrees(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumTrees = 0
	if err := cfg.Validate(); !errors.Is(err, core.ErrInvalidConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestKeepIndicesThinned(t *testing.T) {
	cfg := Config{NumWarmStart: 2, NumBurnin: 3, NumMCMC: 7, ThinInterval: 3}
	got := cfg.KeepIndices()
	want := []int{5, 8, 11}
	if len(got) != len(want) {
		t.Fatalf("KeepIndices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("KeepIndices = %v, want %v", got, want)
		}
	}
	if cfg.TotalIterations() != 12 {
		t.Errorf("TotalIterations = %d, want 12", cfg.TotalIterations())
	}
}

func TestKeepIndicesNoThinning(t *testing.T) {
	cfg := Config{NumBurnin: 10, NumMCMC: 4, ThinInterval: 1}
	got := cfg.KeepIndices()
	if len(got) != 4 || got[0] != 10 || got[3] != 13 {
		t.Fatalf("KeepIndices = %v", got)
	}
}
