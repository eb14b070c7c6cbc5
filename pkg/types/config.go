// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "enrich-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ScoreConfig holds settings for the enrichment scoring stage.
type ScoreConfig struct {
	// WeightExponent is the exponent p applied to |score| at hit positions.
	// Zero weights every hit equally. Must be >= 0 (default 1).
	WeightExponent float64 `json:"weight_exponent" yaml:"weight_exponent"`

	// Permutations is the number of null-distribution draws per gene set
	// (default 1000). Must be >= 1.
	Permutations int `json:"permutations" yaml:"permutations"`

	// Seed is the base random seed. Every permutation derives its own
	// stream from this value, so runs are reproducible for any worker count.
	Seed int64 `json:"seed" yaml:"seed"`

	// GeneSetWorkers bounds how many gene sets are scored concurrently.
	// Zero picks a default based on the machine.
	GeneSetWorkers int `json:"gene_set_workers" yaml:"gene_set_workers"`

	// PermutationWorkers bounds the permutation pool within one gene set.
	// Zero picks runtime.NumCPU().
	PermutationWorkers int `json:"permutation_workers" yaml:"permutation_workers"`
}

// ResultsConfig holds settings for the results store stage.
type ResultsConfig struct {
	// ResultsDir is the base directory for stored runs (contains index/).
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// GenerateConfig holds settings for the ranked-input generation stage.
type GenerateConfig struct {
	HTTPConfig `yaml:",inline"`

	// SourceURL is the HGNC complete-set TSV location.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// ProteinCodingOnly restricts output to protein-coding genes.
	ProteinCodingOnly bool `json:"protein_coding_only" yaml:"protein_coding_only"`

	// Seed drives the random score assignment.
	Seed int64 `json:"seed" yaml:"seed"`

	// OutputPath is where the pre-ranked list is written.
	OutputPath string `json:"output_path" yaml:"output_path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Score    ScoreConfig    `json:"score" yaml:"score"`
	Results  ResultsConfig  `json:"results" yaml:"results"`
	Generate GenerateConfig `json:"generate" yaml:"generate"`
}
