// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geneset loads named gene collections from the compact
// knowledge-graph JSON produced by the graph-preprocessing stage and
// from GMT files.
package geneset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pdiddy/enrich-engine/pkg/types"
)

// ErrInvalidSet marks gene-set files that cannot be used: unreadable
// JSON, terms without member genes, or malformed GMT lines.
var ErrInvalidSet = errors.New("invalid gene set input")

// compactKG mirrors the condensed knowledge-graph payload: label-only
// gene and term nodes plus term-gene triples, with a leading counts
// object recording the source totals.
type compactKG struct {
	Counts struct {
		Genes   int `json:"genes"`
		Terms   int `json:"terms"`
		Triples int `json:"triples"`
	} `json:"counts"`
	Genes   []labelNode `json:"genes"`
	Terms   []labelNode `json:"terms"`
	Triples []triple    `json:"triples"`
}

type labelNode struct {
	Label string `json:"label"`
}

type triple struct {
	SourceLabel string `json:"source_label"`
	Relation    string `json:"relation"`
	TargetLabel string `json:"target_label"`
}

// LoadKG reads a compact knowledge-graph JSON file and builds one gene
// set per term that appears in at least one term-gene triple. Triples
// may point in either direction; the term side becomes the set ID.
// Count mismatches against the embedded counts object are reported as
// warnings on w, not errors.
func LoadKG(path string, w io.Writer) ([]types.GeneSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge graph: %w", err)
	}

	var kg compactKG
	if err := json.Unmarshal(data, &kg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidSet, path, err)
	}

	if kg.Counts.Genes != 0 && kg.Counts.Genes != len(kg.Genes) {
		fmt.Fprintf(w, "warning: counts.genes=%d but %d gene nodes present\n",
			kg.Counts.Genes, len(kg.Genes))
	}
	if kg.Counts.Terms != 0 && kg.Counts.Terms != len(kg.Terms) {
		fmt.Fprintf(w, "warning: counts.terms=%d but %d term nodes present\n",
			kg.Counts.Terms, len(kg.Terms))
	}
	if kg.Counts.Triples != 0 && kg.Counts.Triples != len(kg.Triples) {
		fmt.Fprintf(w, "warning: counts.triples=%d but %d triples present\n",
			kg.Counts.Triples, len(kg.Triples))
	}

	termLabels := make(map[string]bool, len(kg.Terms))
	for _, t := range kg.Terms {
		termLabels[t.Label] = true
	}

	members := make(map[string][]string)
	seen := make(map[string]map[string]bool)
	skipped := 0
	for _, tr := range kg.Triples {
		term, gene := tr.SourceLabel, tr.TargetLabel
		if !termLabels[term] {
			term, gene = tr.TargetLabel, tr.SourceLabel
		}
		if !termLabels[term] || term == "" || gene == "" {
			skipped++
			continue
		}
		if seen[term] == nil {
			seen[term] = make(map[string]bool)
		}
		if seen[term][gene] {
			continue
		}
		seen[term][gene] = true
		members[term] = append(members[term], gene)
	}
	if skipped > 0 {
		fmt.Fprintf(w, "warning: skipped %d triple(s) with no term-side label\n", skipped)
	}

	sets := make([]types.GeneSet, 0, len(members))
	for term, genes := range members {
		sets = append(sets, types.GeneSet{ID: term, Source: "kg", Genes: genes})
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].ID < sets[j].ID })

	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: %s contains no term-gene triples", ErrInvalidSet, path)
	}
	return sets, nil
}
