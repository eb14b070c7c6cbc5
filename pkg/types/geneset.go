// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// GeneSet is a named collection of genes associated with a biological
// concept: a pathway, an ontology term, or a disease. Gene sets arrive
// from outside the engine (knowledge-graph terms, GMT files) and may
// overlap a ranked list only partially.
type GeneSet struct {
	// ID identifies the set, usually the term label (e.g. "Apoptosis").
	ID string `json:"id" yaml:"id"`

	// Source names where the set came from (e.g. "GO", "KEGG", "gmt").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Description is optional free text carried from the source file.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Genes lists the member gene symbols, deduplicated, source order.
	Genes []string `json:"genes" yaml:"genes"`
}

// Contains reports whether gene is a member of the set.
func (g GeneSet) Contains(gene string) bool {
	for _, m := range g.Genes {
		if m == gene {
			return true
		}
	}
	return false
}

// Size returns the number of member genes.
func (g GeneSet) Size() int {
	return len(g.Genes)
}
