// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
)

// degenerateRetries bounds how often a single permutation redraws after
// a degenerate hit-weight sum before the draw is reported as failed.
const degenerateRetries = 8

// RandomSource yields the randomized hit positions for permutation
// draws. Implementations do not need to be safe for concurrent use; the
// engine creates one source per permutation index.
type RandomSource interface {
	// Draw returns k distinct positions in [0, n).
	Draw(n, k int) []int
}

// NewSeededSource returns the engine's default RandomSource: a
// math/rand stream over the given seed drawing k of n by partial
// Fisher-Yates shuffle.
func NewSeededSource(seed int64) RandomSource {
	return &seededSource{rng: rand.New(rand.NewSource(seed))}
}

type seededSource struct {
	rng *rand.Rand
}

func (s *seededSource) Draw(n, k int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + s.rng.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// mixSeed derives a child seed from a base seed and an index using the
// SplitMix64 finalizer. Distinct indices always produce distinct seeds,
// so permutation streams are independent of execution order.
func mixSeed(base int64, index int) int64 {
	z := uint64(base) + (uint64(index)+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

// nullDistribution estimates the null ES distribution for one gene set:
// permutations draws of hitCount random hit positions, each scored with
// RunningSum. The result slice is indexed by permutation number, so the
// output is bit-identical for any worker count. A draw whose hit weights
// degenerate is redrawn from the same stream up to degenerateRetries
// times before failing.
func nullDistribution(ctx context.Context, scores []float64, hitCount int, p Params) ([]float64, error) {
	if p.Permutations < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrPermutationCount, p.Permutations)
	}

	workers := p.PermutationWorkers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > p.Permutations {
		workers = p.Permutations
	}

	n := len(scores)
	esnull := make([]float64, p.Permutations)

	jobs := make(chan int)
	errc := make(chan error, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			var failed bool
			for b := range jobs {
				if failed {
					continue
				}
				src := NewSeededSource(mixSeed(p.Seed, b))
				es, err := drawOnce(scores, n, hitCount, p.WeightExponent, src)
				if err != nil {
					select {
					case errc <- fmt.Errorf("permutation %d: %w", b, err):
					default:
					}
					failed = true
					continue
				}
				esnull[b] = es
			}
		}()
	}

	feed := func() error {
		defer close(jobs)
		for b := 0; b < p.Permutations; b++ {
			select {
			case jobs <- b:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}
	ferr := feed()
	wg.Wait()
	close(errc)

	if ferr != nil {
		return nil, ferr
	}
	if err := <-errc; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return esnull, nil
}

// drawOnce scores a single randomized indicator, redrawing on a
// degenerate hit-weight sum. Redraws consume the same stream, so they
// stay reproducible.
func drawOnce(scores []float64, n, hitCount int, exponent float64, src RandomSource) (float64, error) {
	for attempt := 0; attempt <= degenerateRetries; attempt++ {
		ind := indicatorFromPositions(n, src.Draw(n, hitCount))
		es, _, err := RunningSum(scores, ind, exponent)
		if err == nil {
			return es, nil
		}
	}
	return 0, fmt.Errorf("%w: %d consecutive degenerate draws", ErrDegenerateNull, degenerateRetries+1)
}
