package testkit

import (
	"testing"
)

func TestGenerateOrdinalCoversAllLevels(t *testing.T) {
	bundle, outcome := GenerateOrdinal(SyntheticConfig{
		NumRows: 40, NumFeatures: 3, NumLevels: 4, Seed: 1,
	})
	if err := bundle.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := outcome.Validate(); err != nil {
		t.Fatal(err)
	}
	if outcome.NumLevels != 4 {
		t.Fatalf("NumLevels = %d", outcome.NumLevels)
	}
	for k, c := range outcome.Counts() {
		if c == 0 {
			t.Fatalf("category %d has no observations", k)
		}
	}
}

func TestGenerateOrdinalDeterministic(t *testing.T) {
	a, ya := GenerateOrdinal(SyntheticConfig{NumRows: 20, NumFeatures: 2, NumLevels: 3, Seed: 9})
	b, yb := GenerateOrdinal(SyntheticConfig{NumRows: 20, NumFeatures: 2, NumLevels: 3, Seed: 9})
	for i := range a.Rows {
		for j := range a.Rows[i] {
			if a.Rows[i][j] != b.Rows[i][j] {
				t.Fatal("covariates differ across identical seeds")
			}
		}
		if ya.Values[i] != yb.Values[i] {
			t.Fatal("outcomes differ across identical seeds")
		}
	}
}
