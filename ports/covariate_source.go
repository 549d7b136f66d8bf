// Package ports defines the interfaces through which the sampler consumes
// its external collaborators: covariate/outcome ingestion and seeded
// randomness. Preprocessing, splitting, and persistence live behind these
// boundaries, outside the module.
package ports

import (
	"context"

	"gobart/domain/dataset"
)

// CovariateSourcePort resolves processed, purely numeric covariate tables
// and the integer outcome vector for a fit.
type CovariateSourcePort interface {
	// ResolveTraining returns the training covariates and outcome.
	ResolveTraining(ctx context.Context) (*dataset.CovariateBundle, *dataset.OrdinalOutcome, error)

	// ResolveHoldout returns the optional held-out covariates with the same
	// column count and types as the training set, or (nil, nil) when no
	// held-out set is configured.
	ResolveHoldout(ctx context.Context) (*dataset.CovariateBundle, error)
}
