// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"fmt"
	"math"
)

// RunningSum computes the weighted running-sum statistic over the ranked
// score vector for the given indicator and extracts its extremum.
//
// Hit positions add |score|^exponent normalized by the hit-weight sum;
// miss positions subtract 1/MissCount. The increments telescope, so the
// sum returns to zero at the final rank. ES is the value of maximum
// absolute magnitude along the trace, signed; peak is the 1-based rank
// where it occurs (the earliest such rank when tied).
//
// RunningSum is a pure function of its inputs; the permutation engine
// calls it once per draw.
func RunningSum(scores []float64, ind *Indicator, exponent float64) (es float64, peak int, err error) {
	sumHit, err := hitWeightSum(scores, ind, exponent)
	if err != nil {
		return 0, 0, err
	}

	missDec := 1.0 / float64(ind.MissCount)

	var res, best float64
	var bestAbs float64
	for i := range scores {
		if ind.Hits[i] {
			res += hitWeight(scores[i], exponent) / sumHit
		} else {
			res -= missDec
		}
		if abs := math.Abs(res); abs > bestAbs {
			bestAbs = abs
			best = res
			peak = i + 1
		}
	}
	return best, peak, nil
}

// hitWeight is the weight of one hit position: |score|^exponent, or 1
// when the exponent is zero.
func hitWeight(score, exponent float64) float64 {
	if exponent == 0 {
		return 1
	}
	return math.Pow(math.Abs(score), exponent)
}

// hitWeightSum totals the hit weights. The weight at each rank depends
// only on the score there, so the order of ind.Positions never matters.
func hitWeightSum(scores []float64, ind *Indicator, exponent float64) (float64, error) {
	var sum float64
	for _, p := range ind.Positions {
		sum += hitWeight(scores[p], exponent)
	}
	if sum == 0 {
		return 0, fmt.Errorf("%w: all %d hit scores are zero with exponent %g",
			ErrDegenerateWeight, ind.HitCount, exponent)
	}
	return sum, nil
}

// Trace returns the full running-sum trace, one value per rank. The
// scoring path never materializes it; it exists for diagnostics and for
// leading-edge visualization by downstream consumers.
func Trace(scores []float64, ind *Indicator, exponent float64) ([]float64, error) {
	sumHit, err := hitWeightSum(scores, ind, exponent)
	if err != nil {
		return nil, err
	}

	missDec := 1.0 / float64(ind.MissCount)
	trace := make([]float64, len(scores))
	var res float64
	for i := range scores {
		if ind.Hits[i] {
			res += hitWeight(scores[i], exponent) / sumHit
		} else {
			res -= missDec
		}
		trace[i] = res
	}
	return trace, nil
}

// leadingEdge returns the gene ranks (0-based, ascending) between the
// list boundary and the peak: ranks 1..peak for a positive score,
// peak..N for a negative one.
func leadingEdge(n int, es float64, peak int) (lo, hi int) {
	if es >= 0 {
		return 0, peak
	}
	return peak - 1, n
}
