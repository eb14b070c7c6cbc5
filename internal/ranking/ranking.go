// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ranking models a validated, immutable ranked gene list with
// per-gene scores. A List is constructed once, then shared read-only
// across gene-set evaluations and permutations.
package ranking

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidList marks construction failures: empty input, duplicate
// gene identifiers, non-finite scores, or malformed pre-ranked lines.
var ErrInvalidList = errors.New("invalid ranked list")

// Entry is one (gene, score) pair of a ranking input.
type Entry struct {
	Gene  string  `json:"gene" yaml:"gene"`
	Score float64 `json:"score" yaml:"score"`
}

// List is a gene ranking sorted by score, descending. Entries with equal
// scores keep their original input order, so a given input always
// produces the same ranking. Lists are immutable after construction and
// safe for concurrent reads.
type List struct {
	genes  []string
	scores []float64
	index  map[string]int
}

// New builds a List from (gene, score) pairs. It fails when the input is
// empty, a gene identifier repeats, or a score is NaN or infinite.
func New(entries []Entry) (*List, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrInvalidList)
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	l := &List{
		genes:  make([]string, len(sorted)),
		scores: make([]float64, len(sorted)),
		index:  make(map[string]int, len(sorted)),
	}
	for i, e := range sorted {
		if e.Gene == "" {
			return nil, fmt.Errorf("%w: empty gene identifier at rank %d", ErrInvalidList, i+1)
		}
		if math.IsNaN(e.Score) || math.IsInf(e.Score, 0) {
			return nil, fmt.Errorf("%w: non-finite score %v for gene %s", ErrInvalidList, e.Score, e.Gene)
		}
		if _, dup := l.index[e.Gene]; dup {
			return nil, fmt.Errorf("%w: duplicate gene %s", ErrInvalidList, e.Gene)
		}
		l.genes[i] = e.Gene
		l.scores[i] = e.Score
		l.index[e.Gene] = i
	}
	return l, nil
}

// Len returns the number of ranked genes.
func (l *List) Len() int {
	return len(l.genes)
}

// Gene returns the gene at 0-based rank position i.
func (l *List) Gene(i int) string {
	return l.genes[i]
}

// Score returns the ranking score at 0-based rank position i.
func (l *List) Score(i int) float64 {
	return l.scores[i]
}

// Rank returns the 0-based rank of gene and whether it is present.
func (l *List) Rank(gene string) (int, bool) {
	i, ok := l.index[gene]
	return i, ok
}

// Scores returns a copy of the full score vector in rank order.
func (l *List) Scores() []float64 {
	out := make([]float64, len(l.scores))
	copy(out, l.scores)
	return out
}

// Genes returns a copy of the gene identifiers in rank order.
func (l *List) Genes() []string {
	out := make([]string, len(l.genes))
	copy(out, l.genes)
	return out
}
