// Package app exposes the application-facing fit workflow: validate inputs,
// run the sampler, and hand back a result that can summarize and predict.
package app

import (
	"context"

	"gobart/adapters/sampler"
	"gobart/domain/chain"
	"gobart/domain/core"
	"gobart/domain/dataset"
	"gobart/domain/forest"
	"gobart/internal"
	"gobart/internal/errors"
	"gobart/ports"
)

// FitService orchestrates complete sampling runs
type FitService struct {
	log *internal.Logger
	rng ports.RNGPort
}

// NewFitService creates the fit orchestrator
func NewFitService(rng ports.RNGPort, log *internal.Logger) *FitService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &FitService{log: log, rng: rng}
}

// FitResult bundles everything a fit produces: the retained draw containers,
// the forest snapshots for out-of-sample prediction, and the resolved
// configuration.
type FitResult struct {
	RunID       core.RunID
	Config      chain.Config
	NumLevels   int
	NumFeatures int
	Samples     *chain.Samples
	Snapshots   *forest.SnapshotContainer

	sampled bool
}

// IsSampled reports whether the run retained at least one draw
func (r *FitResult) IsSampled() bool { return r.sampled }

// Predict routes each covariate row through every retained forest snapshot,
// returning a len(rows) x NumRetained matrix of prediction draws.
func (r *FitResult) Predict(rows [][]float64) ([][]float64, error) {
	if !r.sampled {
		return nil, errors.WithCode(errors.CodeNotSampled, core.ErrNotSampled)
	}
	for _, row := range rows {
		if len(row) != r.NumFeatures {
			return nil, errors.WithCode(errors.CodeValidationError,
				core.NewShapeError("prediction rows", len(row), r.NumFeatures))
		}
	}
	out, err := r.Snapshots.PredictMatrix(rows)
	if err != nil {
		return nil, errors.WithCode(errors.CodeNotSampled, err)
	}
	return out, nil
}

// Fit runs the sampler over pre-resolved data. holdout may be nil.
func (s *FitService) Fit(
	ctx context.Context,
	bundle *dataset.CovariateBundle,
	outcome *dataset.OrdinalOutcome,
	holdout *dataset.CovariateBundle,
	cfg chain.Config,
) (*FitResult, error) {
	stream, err := s.rng.SeededStream("ordinal-bart", cfg.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "seeding sampler stream")
	}
	engine, err := sampler.NewEngine(cfg, bundle, outcome, holdout, stream, s.log)
	if err != nil {
		return nil, classify(err)
	}
	runID := core.RunID(core.NewID())
	s.log.Info("run %s: fitting %d x %d training set", runID, bundle.NumRows(), bundle.NumFeatures())
	if err := engine.Run(ctx); err != nil {
		return nil, classify(err)
	}
	cfg.ApplyDefaults()
	return &FitResult{
		RunID:       runID,
		Config:      cfg,
		NumLevels:   outcome.NumLevels,
		NumFeatures: bundle.NumFeatures(),
		Samples:     engine.Samples(),
		Snapshots:   engine.Snapshots(),
		sampled:     engine.Samples().NumRetained() > 0,
	}, nil
}

// FitFromSource resolves training and held-out data through the source port
// and then fits.
func (s *FitService) FitFromSource(ctx context.Context, src ports.CovariateSourcePort, cfg chain.Config) (*FitResult, error) {
	bundle, outcome, err := src.ResolveTraining(ctx)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	holdout, err := src.ResolveHoldout(ctx)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return s.Fit(ctx, bundle, outcome, holdout, cfg)
}

// classify maps domain errors onto application error codes
func classify(err error) error {
	switch {
	case core.IsConfigError(err):
		return errors.WithCode(errors.CodeConfigInvalid, err)
	case core.IsValidationError(err):
		return errors.WithCode(errors.CodeValidationError, err)
	case core.IsNumericalError(err):
		return errors.WithCode(errors.CodeNumericalError, err)
	case core.IsNotSampledError(err):
		return errors.WithCode(errors.CodeNotSampled, err)
	default:
		return errors.Wrap(err, "sampling run failed")
	}
}
