package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Validation errors (bad input, reported before any sampling starts)
	ErrShapeMismatch    = errors.New("covariate/outcome shape mismatch")
	ErrCategoryRange    = errors.New("outcome category out of range")
	ErrTooFewCategories = errors.New("outcome must have at least two categories")
	ErrNegativeWeight   = errors.New("variable weights cannot be negative")
	ErrEmptyCovariates  = errors.New("covariate table is empty")

	// Configuration errors (fatal at setup)
	ErrInvalidConfig = errors.New("invalid sampler configuration")

	// Numerical degeneracy (fatal mid-run; never silently substituted)
	ErrDegenerateInterval = errors.New("degenerate latent truncation interval")
	ErrNonFiniteDraw      = errors.New("non-finite parameter draw")

	// State errors (distinct from validation so callers can tell
	// "bad input" from "not yet fit")
	ErrNotSampled = errors.New("model has not been sampled")
)

// Error constructors with context
func NewShapeError(what string, got, want int) error {
	return fmt.Errorf("%w: %s has %d entries, expected %d", ErrShapeMismatch, what, got, want)
}

func NewCategoryError(category, numLevels int) error {
	return fmt.Errorf("%w: category %d outside [0, %d)", ErrCategoryRange, category, numLevels)
}

func NewConfigError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, field, reason)
}

// Error checking helpers
func IsValidationError(err error) bool {
	return errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrCategoryRange) ||
		errors.Is(err, ErrTooFewCategories) ||
		errors.Is(err, ErrNegativeWeight) ||
		errors.Is(err, ErrEmptyCovariates)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

func IsNumericalError(err error) bool {
	return errors.Is(err, ErrDegenerateInterval) ||
		errors.Is(err, ErrNonFiniteDraw)
}

func IsNotSampledError(err error) bool {
	return errors.Is(err, ErrNotSampled)
}
