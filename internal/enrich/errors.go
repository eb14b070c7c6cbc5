// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"errors"
	"fmt"
)

// Sentinel errors for per-gene-set and configuration failures. Gene-set
// failures are wrapped in a GeneSetError; configuration failures abort
// the whole run before any scoring starts.
var (
	// ErrEmptySet marks a gene set with no members.
	ErrEmptySet = errors.New("empty gene set")

	// ErrInsufficientOverlap marks a gene set whose intersection with
	// the ranked list covers no position or every position. The running
	// sum is undefined in both cases.
	ErrInsufficientOverlap = errors.New("insufficient overlap with ranked list")

	// ErrDegenerateWeight marks a hit-weight sum of zero, which happens
	// when every hit score is exactly zero and the exponent is positive.
	ErrDegenerateWeight = errors.New("degenerate hit weights")

	// ErrDegenerateNull marks a null distribution missing the sign
	// subset the observed score needs, or an observed score of exactly
	// zero, which has no sign to normalize against.
	ErrDegenerateNull = errors.New("degenerate null distribution")

	// ErrPermutationCount marks a permutation count below one.
	ErrPermutationCount = errors.New("permutation count must be at least 1")

	// ErrWeightExponent marks a negative weight exponent.
	ErrWeightExponent = errors.New("weight exponent must be non-negative")
)

// GeneSetError reports a failure scoring one gene set. Failures are
// isolated: other gene sets in the batch still score, and the failed set
// is excluded from the FDR pool.
type GeneSetError struct {
	// GeneSetID identifies the failed set.
	GeneSetID string

	// HitCount is the observed overlap at the time of failure, when known.
	HitCount int

	// Err is the underlying cause, matchable with errors.Is against the
	// package sentinels.
	Err error
}

func (e *GeneSetError) Error() string {
	return fmt.Sprintf("gene set %s (hit count %d): %v", e.GeneSetID, e.HitCount, e.Err)
}

func (e *GeneSetError) Unwrap() error {
	return e.Err
}
