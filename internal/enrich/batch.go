// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich scores ranked gene lists against gene-set collections:
// a weighted running-sum enrichment statistic, a seeded permutation null
// distribution, and batch-level NES/p-value/FDR normalization. The
// engine is deterministic for a fixed seed regardless of how many
// workers run the permutations.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/pdiddy/enrich-engine/internal/ranking"
	"github.com/pdiddy/enrich-engine/pkg/types"
)

// Defaults for parameters left at zero.
const (
	DefaultPermutations   = 1000
	DefaultWeightExponent = 1.0
)

// Params holds validated engine parameters for one run.
type Params struct {
	WeightExponent     float64
	Permutations       int
	Seed               int64
	GeneSetWorkers     int
	PermutationWorkers int
}

// NewParams validates a ScoreConfig and fills defaults. Configuration
// errors are fatal for the whole run, unlike per-gene-set failures.
func NewParams(cfg types.ScoreConfig) (Params, error) {
	p := Params{
		WeightExponent:     cfg.WeightExponent,
		Permutations:       cfg.Permutations,
		Seed:               cfg.Seed,
		GeneSetWorkers:     cfg.GeneSetWorkers,
		PermutationWorkers: cfg.PermutationWorkers,
	}
	if p.Permutations == 0 {
		p.Permutations = DefaultPermutations
	}
	if p.Permutations < 1 {
		return Params{}, fmt.Errorf("%w: got %d", ErrPermutationCount, p.Permutations)
	}
	if p.WeightExponent < 0 {
		return Params{}, fmt.Errorf("%w: got %g", ErrWeightExponent, p.WeightExponent)
	}
	if p.GeneSetWorkers < 1 {
		p.GeneSetWorkers = (runtime.NumCPU() + 3) / 4
	}
	if p.PermutationWorkers < 1 {
		p.PermutationWorkers = runtime.NumCPU()
	}
	return p, nil
}

// Output holds the outcome of a batch run: one report per successfully
// scored gene set (input order preserved) and the isolated failures.
type Output struct {
	Reports  []types.GeneSetReport
	Failures []*GeneSetError
}

// HasFailures reports whether any gene set failed to score.
func (o Output) HasFailures() bool {
	return len(o.Failures) > 0
}

// scored carries one gene set's phase-one output into the FDR phase.
type scored struct {
	report  types.GeneSetReport
	nesnull []float64
}

// Score runs the two-phase batch pipeline. Phase one scores every gene
// set independently and in parallel: indicator, observed running sum,
// permutation null, NES and p-value. Phase two pools the surviving gene
// sets and computes FDR q-values across the batch. A gene set that
// fails never blocks the others, but it contributes nothing to the FDR
// pool. Warnings for failed sets are written to w as they surface.
//
// On cancellation all partial results are discarded and only the
// context error is returned.
func Score(ctx context.Context, list *ranking.List, sets []types.GeneSet, p Params, w io.Writer) (Output, error) {
	if p.Permutations < 1 {
		return Output{}, fmt.Errorf("%w: got %d", ErrPermutationCount, p.Permutations)
	}
	if p.WeightExponent < 0 {
		return Output{}, fmt.Errorf("%w: got %g", ErrWeightExponent, p.WeightExponent)
	}

	scores := list.Scores()

	// Phase one: per-gene-set scoring, bounded fan-out.
	perSet := make([]*scored, len(sets))
	setErrs := make([]*GeneSetError, len(sets))

	workers := p.GeneSetWorkers
	if workers > len(sets) {
		workers = len(sets)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for n := 0; n < workers; n++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				sc, err := scoreOne(ctx, list, scores, sets[i], mixSeed(p.Seed, i), p)
				if err != nil {
					var gse *GeneSetError
					if errors.As(err, &gse) {
						setErrs[i] = gse
					} else {
						setErrs[i] = &GeneSetError{GeneSetID: sets[i].ID, Err: err}
					}
					continue
				}
				perSet[i] = sc
			}
		}()
	}

	for i := range sets {
		select {
		case jobs <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	var out Output
	var nesValues []float64
	var nullPools [][]float64
	var pooled []*scored
	for i := range sets {
		if setErrs[i] != nil {
			// Cancellation surfaces through every in-flight set; report
			// it once as the run error instead of per-set noise.
			if errors.Is(setErrs[i], context.Canceled) || errors.Is(setErrs[i], context.DeadlineExceeded) {
				return Output{}, setErrs[i].Err
			}
			fmt.Fprintf(w, "warning: skipping %v\n", setErrs[i])
			out.Failures = append(out.Failures, setErrs[i])
			continue
		}
		sc := perSet[i]
		pooled = append(pooled, sc)
		nesValues = append(nesValues, sc.report.NES)
		nullPools = append(nullPools, sc.nesnull)
	}

	// Phase two: batch-wide FDR over the surviving sets.
	qvals := fdrQValues(nesValues, nullPools)
	for i, sc := range pooled {
		sc.report.FDRQ = qvals[i]
		out.Reports = append(out.Reports, sc.report)
	}
	return out, nil
}

// scoreOne runs phase one for a single gene set.
func scoreOne(ctx context.Context, list *ranking.List, scores []float64, set types.GeneSet, seed int64, p Params) (*scored, error) {
	ind, err := BuildIndicator(list, set)
	if err != nil {
		return nil, err
	}

	es, peak, err := RunningSum(scores, ind, p.WeightExponent)
	if err != nil {
		return nil, &GeneSetError{GeneSetID: set.ID, HitCount: ind.HitCount, Err: err}
	}

	permParams := p
	permParams.Seed = seed
	esnull, err := nullDistribution(ctx, scores, ind.HitCount, permParams)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &GeneSetError{GeneSetID: set.ID, HitCount: ind.HitCount, Err: err}
	}

	norm, nesnull, err := normalize(set.ID, ind.HitCount, es, esnull)
	if err != nil {
		return nil, err
	}

	lo, hi := leadingEdge(list.Len(), es, peak)
	edge := make([]string, 0, hi-lo)
	for i := lo; i < hi; i++ {
		edge = append(edge, list.Gene(i))
	}

	return &scored{
		report: types.GeneSetReport{
			EnrichmentResult: types.EnrichmentResult{
				GeneSetID:   set.ID,
				ES:          es,
				PeakRank:    peak,
				HitCount:    ind.HitCount,
				LeadingEdge: edge,
			},
			NES:    norm.NES,
			PValue: norm.PValue,
		},
		nesnull: nesnull,
	}, nil
}
