// Package posterior summarizes retained MCMC draws: pointwise statistics of
// prediction draws and ordinal category probabilities derived from the
// cumulative cloglog link.
package posterior

import (
	"math"

	"github.com/montanaflynn/stats"

	"gobart/domain/core"
)

// Summary holds pointwise statistics of one quantity's posterior draws
type Summary struct {
	Mean   float64
	Median float64
	Lower  float64
	Upper  float64
}

// Summarize reduces one vector of posterior draws to a Summary with a
// central credible interval at the given level (0.95 gives the 2.5 and 97.5
// percentiles). Interval endpoints use nearest-rank percentiles, which stay
// defined for arbitrarily short chains.
func Summarize(draws []float64, level float64) (Summary, error) {
	if len(draws) == 0 {
		return Summary{}, core.ErrNotSampled
	}
	if level <= 0 || level >= 1 {
		return Summary{}, core.NewConfigError("interval level", "must lie in (0, 1)")
	}
	data := stats.Float64Data(draws)
	mean, err := stats.Mean(data)
	if err != nil {
		return Summary{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return Summary{}, err
	}
	tail := (1 - level) / 2 * 100
	lower, err := stats.PercentileNearestRank(data, tail)
	if err != nil {
		return Summary{}, err
	}
	upper, err := stats.PercentileNearestRank(data, 100-tail)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Mean: mean, Median: median, Lower: lower, Upper: upper}, nil
}

// SummarizeRows summarizes each row of a draws matrix (one row per quantity,
// one column per draw).
func SummarizeRows(draws [][]float64, level float64) ([]Summary, error) {
	out := make([]Summary, len(draws))
	for i, row := range draws {
		s, err := Summarize(row, level)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// CategoryProbabilities maps one prediction and one cutpoint vector to the
// probability of each outcome category under the cumulative cloglog link:
// P(Y <= k) = 1 - exp(-c_{k+1} e^lambda). gamma must include the fixed
// leading zero, so it has one entry fewer than the category count.
func CategoryProbabilities(lambda float64, gamma []float64) []float64 {
	numLevels := len(gamma) + 1
	probs := make([]float64, numLevels)
	scale := math.Exp(lambda)
	c := 0.0
	survPrev := 1.0
	for k := 0; k < numLevels-1; k++ {
		c += math.Exp(gamma[k])
		surv := math.Exp(-c * scale)
		probs[k] = survPrev - surv
		survPrev = surv
	}
	probs[numLevels-1] = survPrev
	return probs
}

// MeanCategoryProbabilities averages the category probabilities over all
// retained draws for one observation. lambdaDraws holds the observation's
// prediction per draw; gammaDraws is (K-1) x nDraws, the retained cutpoint
// matrix.
func MeanCategoryProbabilities(lambdaDraws []float64, gammaDraws [][]float64) ([]float64, error) {
	nDraws := len(lambdaDraws)
	if nDraws == 0 || len(gammaDraws) == 0 {
		return nil, core.ErrNotSampled
	}
	for _, row := range gammaDraws {
		if len(row) != nDraws {
			return nil, core.NewShapeError("cutpoint draws", len(row), nDraws)
		}
	}
	numLevels := len(gammaDraws) + 1
	mean := make([]float64, numLevels)
	gamma := make([]float64, len(gammaDraws))
	for d := 0; d < nDraws; d++ {
		for k := range gamma {
			gamma[k] = gammaDraws[k][d]
		}
		for k, p := range CategoryProbabilities(lambdaDraws[d], gamma) {
			mean[k] += p
		}
	}
	for k := range mean {
		mean[k] /= float64(nDraws)
	}
	return mean, nil
}
