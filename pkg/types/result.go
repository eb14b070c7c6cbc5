// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EnrichmentResult holds the raw enrichment statistic for one gene set
// against one ranked list. Immutable once computed.
type EnrichmentResult struct {
	// GeneSetID identifies the scored gene set.
	GeneSetID string `json:"gene_set_id" yaml:"gene_set_id"`

	// ES is the enrichment score: the running-sum value of maximum
	// absolute magnitude, signed. Positive values enrich genes near the
	// top of the ranking, negative values near the bottom.
	ES float64 `json:"es" yaml:"es"`

	// PeakRank is the 1-based rank at which the running sum reaches its
	// extremum (the leading-edge boundary).
	PeakRank int `json:"peak_rank" yaml:"peak_rank"`

	// HitCount is the number of ranked genes belonging to the set.
	HitCount int `json:"hit_count" yaml:"hit_count"`

	// LeadingEdge lists the genes between the list boundary and the peak:
	// ranks 1..PeakRank for positive ES, PeakRank..N for negative ES.
	LeadingEdge []string `json:"leading_edge" yaml:"leading_edge"`
}

// Sign returns +1 for a positive enrichment score and -1 for a negative one.
func (r EnrichmentResult) Sign() int {
	if r.ES < 0 {
		return -1
	}
	return 1
}

// NormalizedResult holds the permutation-normalized statistics for one
// gene set. FDR q-values are only meaningful relative to the batch the
// set was scored in.
type NormalizedResult struct {
	// GeneSetID identifies the scored gene set.
	GeneSetID string `json:"gene_set_id" yaml:"gene_set_id"`

	// NES is the enrichment score divided by the mean of same-signed
	// null scores.
	NES float64 `json:"nes" yaml:"nes"`

	// PValue is the same-sign tail fraction of the normalized null
	// distribution, in [0,1].
	PValue float64 `json:"p_value" yaml:"p_value"`

	// FDRQ is the batch-wide false discovery rate estimate, in [0,1].
	FDRQ float64 `json:"fdr_q" yaml:"fdr_q"`
}

// GeneSetReport combines the raw and normalized statistics for one gene
// set. This is the record handed to downstream consumers (the results
// store and the retrieval/generation layer).
type GeneSetReport struct {
	EnrichmentResult `yaml:",inline"`

	// NES, PValue, and FDRQ mirror NormalizedResult for the same set.
	NES    float64 `json:"nes" yaml:"nes"`
	PValue float64 `json:"p_value" yaml:"p_value"`
	FDRQ   float64 `json:"fdr_q" yaml:"fdr_q"`
}
