package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gobart/adapters/rng"
	"gobart/domain/chain"
	"gobart/internal"
	"gobart/internal/errors"
	"gobart/internal/testkit"
)

func testService() *FitService {
	return NewFitService(rng.New(), internal.NewLogger(internal.LogLevelError))
}

func smallConfig() chain.Config {
	cfg := chain.DefaultConfig()
	cfg.NumTrees = 4
	cfg.NumBurnin = 10
	cfg.NumMCMC = 10
	cfg.MinSamplesLeaf = 2
	return cfg
}

func TestFitProducesSampledResult(t *testing.T) {
	bundle, outcome := testkit.GenerateOrdinal(testkit.SyntheticConfig{
		NumRows: 60, NumFeatures: 3, NumLevels: 3, Seed: 5,
	})
	result, err := testService().Fit(context.Background(), bundle, outcome, nil, smallConfig())
	require.NoError(t, err)

	assert.True(t, result.IsSampled())
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 3, result.NumLevels)
	assert.Equal(t, 3, result.NumFeatures)
	assert.Equal(t, 10, result.Samples.NumRetained())
	assert.Equal(t, 10, result.Snapshots.Len())
}

func TestFitResultPredictShapes(t *testing.T) {
	bundle, outcome := testkit.GenerateOrdinal(testkit.SyntheticConfig{
		NumRows: 60, NumFeatures: 2, NumLevels: 3, Seed: 5,
	})
	result, err := testService().Fit(context.Background(), bundle, outcome, nil, smallConfig())
	require.NoError(t, err)

	preds, err := result.Predict([][]float64{{0.1, 0.9}, {0.5, 0.5}, {0.9, 0.1}})
	require.NoError(t, err)
	require.Len(t, preds, 3)
	assert.Len(t, preds[0], result.Samples.NumRetained())
}

func TestFitResultPredictRejectsColumnMismatch(t *testing.T) {
	bundle, outcome := testkit.GenerateOrdinal(testkit.SyntheticConfig{
		NumRows: 60, NumFeatures: 2, NumLevels: 3, Seed: 5,
	})
	result, err := testService().Fit(context.Background(), bundle, outcome, nil, smallConfig())
	require.NoError(t, err)

	_, err = result.Predict([][]float64{{0.1, 0.2, 0.3}})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}

func TestFitClassifiesConfigErrors(t *testing.T) {
	bundle, outcome := testkit.GenerateOrdinal(testkit.SyntheticConfig{
		NumRows: 20, NumFeatures: 2, NumLevels: 2, Seed: 5,
	})
	cfg := smallConfig()
	cfg.NumMCMC = 0
	_, err := testService().Fit(context.Background(), bundle, outcome, nil, cfg)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestFitFromSourceUsesHoldout(t *testing.T) {
	bundle, outcome := testkit.GenerateOrdinal(testkit.SyntheticConfig{
		NumRows: 60, NumFeatures: 2, NumLevels: 3, Seed: 5,
	})
	holdout, _ := testkit.GenerateOrdinal(testkit.SyntheticConfig{
		NumRows: 12, NumFeatures: 2, NumLevels: 3, Seed: 6,
	})
	src := &testkit.FakeSource{Bundle: bundle, Outcome: outcome, Holdout: holdout}

	result, err := testService().FitFromSource(context.Background(), src, smallConfig())
	require.NoError(t, err)
	require.NotNil(t, result.Samples.ForestPredTest)
	assert.Len(t, result.Samples.ForestPredTest, 12)
}

func TestFitFromSourceClassifiesSourceFailure(t *testing.T) {
	src := &testkit.FakeSource{Err: assert.AnError}
	_, err := testService().FitFromSource(context.Background(), src, smallConfig())
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
