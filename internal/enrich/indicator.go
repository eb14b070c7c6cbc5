// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"fmt"

	"github.com/pdiddy/enrich-engine/internal/ranking"
	"github.com/pdiddy/enrich-engine/pkg/types"
)

// Indicator marks which ranked positions belong to the evaluated gene
// set. It is derived once per evaluation and never mutated afterwards.
type Indicator struct {
	// Hits has one entry per ranked position; true means the gene at
	// that rank is a set member.
	Hits []bool

	// Positions lists the hit ranks (0-based) in ascending order.
	Positions []int

	// HitCount and MissCount partition the ranked list length.
	HitCount  int
	MissCount int
}

// BuildIndicator intersects set with the ranked list. It fails when the
// set is empty, when no set member appears in the list, or when every
// ranked gene is a member: with zero hits or zero misses the running-sum
// increments are undefined, so such sets are rejected rather than scored
// as zero.
func BuildIndicator(list *ranking.List, set types.GeneSet) (*Indicator, error) {
	if set.Size() == 0 {
		return nil, &GeneSetError{GeneSetID: set.ID, Err: ErrEmptySet}
	}

	n := list.Len()
	ind := &Indicator{Hits: make([]bool, n)}
	for _, gene := range set.Genes {
		i, ok := list.Rank(gene)
		if !ok || ind.Hits[i] {
			continue
		}
		ind.Hits[i] = true
		ind.HitCount++
	}
	ind.MissCount = n - ind.HitCount

	if ind.HitCount == 0 || ind.MissCount == 0 {
		return nil, &GeneSetError{
			GeneSetID: set.ID,
			HitCount:  ind.HitCount,
			Err: fmt.Errorf("%w: %d of %d ranked genes are members",
				ErrInsufficientOverlap, ind.HitCount, n),
		}
	}

	ind.Positions = make([]int, 0, ind.HitCount)
	for i, hit := range ind.Hits {
		if hit {
			ind.Positions = append(ind.Positions, i)
		}
	}
	return ind, nil
}

// indicatorFromPositions builds an Indicator for a permutation draw of
// hit positions. Positions must be distinct and in range; sortedness is
// not required.
func indicatorFromPositions(n int, positions []int) *Indicator {
	ind := &Indicator{
		Hits:      make([]bool, n),
		Positions: positions,
		HitCount:  len(positions),
		MissCount: n - len(positions),
	}
	for _, p := range positions {
		ind.Hits[p] = true
	}
	return ind
}
