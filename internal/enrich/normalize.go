// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/enrich-engine/pkg/types"
)

// normalize converts a raw ES and its null distribution into a
// normalized score and p-value, plus the normalized null pool for the
// batch FDR phase. Each null value is rescaled by the mean of its own
// sign subset, the same way the observed score is, which makes the
// normalized null pool comparable across gene sets. Null values of
// exactly zero carry no sign and are dropped from the pool.
func normalize(geneSetID string, hitCount int, es float64, esnull []float64) (types.NormalizedResult, []float64, error) {
	var sumPos, sumNeg float64
	var nPos, nNeg int
	for _, v := range esnull {
		switch {
		case v > 0:
			sumPos += v
			nPos++
		case v < 0:
			sumNeg += v
			nNeg++
		}
	}

	fail := func(err error) (types.NormalizedResult, []float64, error) {
		return types.NormalizedResult{}, nil, &GeneSetError{GeneSetID: geneSetID, HitCount: hitCount, Err: err}
	}

	var nes float64
	switch {
	case es > 0:
		if nPos == 0 {
			return fail(fmt.Errorf("%w: ES=%g but no positive null values in %d draws",
				ErrDegenerateNull, es, len(esnull)))
		}
		nes = es / (sumPos / float64(nPos))
	case es < 0:
		if nNeg == 0 {
			return fail(fmt.Errorf("%w: ES=%g but no negative null values in %d draws",
				ErrDegenerateNull, es, len(esnull)))
		}
		nes = -es / (sumNeg / float64(nNeg))
	default:
		return fail(fmt.Errorf("%w: ES is exactly zero", ErrDegenerateNull))
	}

	meanPos := sumPos / float64(nPos)
	meanNeg := sumNeg / float64(nNeg)

	nesnull := make([]float64, 0, nPos+nNeg)
	for _, v := range esnull {
		switch {
		case v > 0 && nPos > 0:
			nesnull = append(nesnull, v/meanPos)
		case v < 0 && nNeg > 0:
			nesnull = append(nesnull, -v/meanNeg)
		}
	}

	return types.NormalizedResult{
		GeneSetID: geneSetID,
		NES:       nes,
		PValue:    tailFraction(nesnull, nes),
	}, nesnull, nil
}

// tailFraction returns the fraction of same-signed values in pool whose
// magnitude is at least |x|. Zero when the same-sign subset is empty.
func tailFraction(pool []float64, x float64) float64 {
	var same, tail int
	ax := math.Abs(x)
	for _, v := range pool {
		if (x > 0) != (v > 0) {
			continue
		}
		same++
		if math.Abs(v) >= ax {
			tail++
		}
	}
	if same == 0 {
		return 0
	}
	return float64(tail) / float64(same)
}

// fdrQValues computes batch-wide FDR q-values. For each gene set the
// raw ratio is the pooled-null tail fraction over the observed tail
// fraction, both restricted to the set's NES sign. Within each sign
// group, sorted by decreasing |NES|, q-values are then forced
// non-decreasing and clipped to [0,1].
//
// Both inputs are indexed identically; nesnull pools from failed gene
// sets must not be included.
func fdrQValues(nes []float64, nesnull [][]float64) []float64 {
	var pool []float64
	for _, nn := range nesnull {
		pool = append(pool, nn...)
	}

	q := make([]float64, len(nes))
	for i, x := range nes {
		num := tailFraction(pool, x)
		den := tailFraction(nes, x)
		if den == 0 {
			// x is in nes, so only possible for an empty batch entry.
			q[i] = 1
			continue
		}
		q[i] = math.Min(1, num/den)
	}

	// Step-down monotone correction, per sign group.
	for _, positive := range []bool{true, false} {
		var idx []int
		for i, x := range nes {
			if (x > 0) == positive {
				idx = append(idx, i)
			}
		}
		sort.Slice(idx, func(a, b int) bool {
			return math.Abs(nes[idx[a]]) > math.Abs(nes[idx[b]])
		})
		running := 0.0
		for _, i := range idx {
			if q[i] < running {
				q[i] = running
			}
			running = q[i]
		}
	}
	return q
}
