package sampler

import (
	"context"
	"math/rand/v2"

	"gobart/domain/chain"
	"gobart/domain/core"
	"gobart/domain/dataset"
	"gobart/domain/forest"
	"gobart/internal"
)

// Engine drives one complete MCMC run: warm-start, burn-in and sampling
// iterations, each interleaving the ensemble update with the augmented-data
// Gibbs block in a fixed order, recording retained state on the thinned
// schedule.
type Engine struct {
	cfg      chain.Config
	bundle   *dataset.CovariateBundle
	outcome  *dataset.OrdinalOutcome
	holdout  *dataset.CovariateBundle
	log      *internal.Logger
	rng      *rand.Rand
	aux      *chain.AuxState
	samples  *chain.Samples
	forests  *forest.SnapshotContainer
	ensemble *EnsembleSampler
	ordinal  *OrdinalSampler
	testPred []float64
}

// NewEngine validates the inputs and assembles a ready-to-run engine.
// holdout may be nil; when present its column count must match training.
func NewEngine(
	cfg chain.Config,
	bundle *dataset.CovariateBundle,
	outcome *dataset.OrdinalOutcome,
	holdout *dataset.CovariateBundle,
	rng *rand.Rand,
	log *internal.Logger,
) (*Engine, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	if err := outcome.Validate(); err != nil {
		return nil, err
	}
	if len(outcome.Values) != bundle.NumRows() {
		return nil, core.NewShapeError("outcome length", len(outcome.Values), bundle.NumRows())
	}
	if holdout != nil {
		if err := holdout.Validate(); err != nil {
			return nil, err
		}
		if holdout.NumFeatures() != bundle.NumFeatures() {
			return nil, core.NewShapeError("held-out columns", holdout.NumFeatures(), bundle.NumFeatures())
		}
	}
	if log == nil {
		log = internal.DefaultLogger
	}

	n := bundle.NumRows()
	aux := chain.NewAuxState(n, outcome.NumLevels)
	container := forest.NewSnapshotContainer()
	active := forest.NewForest(cfg.NumTrees)
	nTest := 0
	var testPred []float64
	if holdout != nil {
		nTest = holdout.NumRows()
		testPred = make([]float64, nTest)
	}
	e := &Engine{
		cfg:      cfg,
		bundle:   bundle,
		outcome:  outcome,
		holdout:  holdout,
		log:      log,
		rng:      rng,
		aux:      aux,
		samples:  chain.NewSamples(n, nTest, outcome.NumLevels, cfg.KeepIndices()),
		forests:  container,
		ensemble: NewEnsembleSampler(cfg, bundle, outcome, aux, active, container, rng),
		ordinal:  NewOrdinalSampler(outcome.Values, aux, rng, cfg.AlphaGamma, cfg.BetaGamma, cfg.NumWorkers),
	}
	e.testPred = testPred
	return e, nil
}

// Samples returns the retained-draw containers
func (e *Engine) Samples() *chain.Samples { return e.samples }

// Snapshots returns the retained forest container
func (e *Engine) Snapshots() *forest.SnapshotContainer { return e.forests }

// Run executes the full iteration schedule. It honors context cancellation
// at iteration boundaries; a cancelled run returns the context error and the
// containers hold whatever was retained up to that point.
func (e *Engine) Run(ctx context.Context) error {
	total := e.cfg.TotalIterations()
	keep := make(map[int]bool, e.samples.NumKeep())
	for _, i := range e.cfg.KeepIndices() {
		keep[i] = true
	}
	e.log.Info("starting run: %d observations, %d levels, %d trees, %d iterations (%d retained)",
		e.bundle.NumRows(), e.outcome.NumLevels, e.cfg.NumTrees, total, e.samples.NumKeep())

	// Initial latents are drawn from their exact conditional under the
	// all-zero forest and cutpoints; the first ensemble update then sees a
	// well-defined working target.
	if err := e.ordinal.UpdateLatents(); err != nil {
		return err
	}

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			e.log.Warn("run cancelled at iteration %d", i)
			return err
		}
		warm := i < e.cfg.NumWarmStart
		persist := keep[i]
		switch i {
		case e.cfg.NumWarmStart:
			e.log.Debug("iteration %d: entering burn-in", i)
		case e.cfg.NumWarmStart + e.cfg.NumBurnin:
			e.log.Debug("iteration %d: entering sampling phase", i)
		}
		if err := e.ensemble.SampleIteration(ctx, warm, persist); err != nil {
			return err
		}
		copy(e.aux.ForestPred, e.ensemble.CurrentPredictions())
		if err := e.ordinal.UpdateLatents(); err != nil {
			return err
		}
		if err := e.ordinal.UpdateCutpoints(ctx); err != nil {
			return err
		}
		e.ordinal.RefreshCumulative()
		if persist {
			if err := e.record(ctx); err != nil {
				return err
			}
		}
	}
	e.log.Info("run complete: %d draws retained", e.samples.NumRetained())
	return nil
}

func (e *Engine) record(ctx context.Context) error {
	if e.holdout != nil {
		f := e.forests.Snapshot(e.forests.Len() - 1)
		err := forEachChunk(ctx, len(e.testPred), e.cfg.NumWorkers, func(a, b int) error {
			for i := a; i < b; i++ {
				e.testPred[i] = f.Predict(e.holdout.Rows[i])
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return e.samples.Record(e.aux, e.testPred)
}
