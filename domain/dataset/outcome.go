package dataset

import (
	"fmt"

	"gobart/domain/core"
)

// OrdinalOutcome holds the integer-valued training outcome, with categories
// ordered from 0 to NumLevels-1.
type OrdinalOutcome struct {
	Values    []int
	NumLevels int
}

// NewOrdinalOutcome validates the raw outcome vector and infers the number
// of categories as max(value)+1.
func NewOrdinalOutcome(values []int) (*OrdinalOutcome, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: outcome vector is empty", core.ErrShapeMismatch)
	}
	maxVal := 0
	for _, v := range values {
		if v < 0 {
			return nil, core.NewCategoryError(v, maxVal+1)
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return &OrdinalOutcome{Values: values, NumLevels: maxVal + 1}, nil
}

// Validate checks the two-category minimum required for a cloglog fit
func (o *OrdinalOutcome) Validate() error {
	if o.NumLevels < 2 {
		return core.ErrTooFewCategories
	}
	for _, v := range o.Values {
		if v < 0 || v >= o.NumLevels {
			return core.NewCategoryError(v, o.NumLevels)
		}
	}
	return nil
}

// Counts returns the per-category observation counts
func (o *OrdinalOutcome) Counts() []int {
	counts := make([]int, o.NumLevels)
	for _, v := range o.Values {
		counts[v]++
	}
	return counts
}
