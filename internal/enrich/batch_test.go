// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/pdiddy/enrich-engine/internal/ranking"
	"github.com/pdiddy/enrich-engine/pkg/types"
)

func testParams() Params {
	return Params{
		WeightExponent:     1.0,
		Permutations:       300,
		Seed:               42,
		GeneSetWorkers:     2,
		PermutationWorkers: 4,
	}
}

func TestNewParams(t *testing.T) {
	tests := []struct {
		name     string
		cfg      types.ScoreConfig
		sentinel error
	}{
		{"defaults fill in", types.ScoreConfig{}, nil},
		{"explicit values pass", types.ScoreConfig{WeightExponent: 2, Permutations: 50, Seed: 7}, nil},
		{"negative permutations", types.ScoreConfig{Permutations: -1}, ErrPermutationCount},
		{"negative exponent", types.ScoreConfig{WeightExponent: -0.5}, ErrWeightExponent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewParams(tt.cfg)
			if tt.sentinel != nil {
				if !errors.Is(err, tt.sentinel) {
					t.Fatalf("error = %v, want %v", err, tt.sentinel)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if p.Permutations < 1 || p.GeneSetWorkers < 1 || p.PermutationWorkers < 1 {
				t.Errorf("defaults not filled: %+v", p)
			}
		})
	}

	p, err := NewParams(types.ScoreConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Permutations != DefaultPermutations {
		t.Errorf("default Permutations = %d, want %d", p.Permutations, DefaultPermutations)
	}
}

func TestScoreWorkedExample(t *testing.T) {
	list := tenGeneList(t)
	sets := []types.GeneSet{{ID: "pathway", Genes: []string{"G01", "G04", "G07"}}}

	var buf strings.Builder
	out, err := Score(context.Background(), list, sets, testParams(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if out.HasFailures() {
		t.Fatalf("unexpected failures: %v", out.Failures)
	}
	if len(out.Reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(out.Reports))
	}

	r := out.Reports[0]
	if r.GeneSetID != "pathway" {
		t.Errorf("GeneSetID = %q", r.GeneSetID)
	}
	if !almostEqual(r.ES, 11.0/21.0) {
		t.Errorf("ES = %.6f, want %.6f", r.ES, 11.0/21.0)
	}
	if r.PeakRank != 4 {
		t.Errorf("PeakRank = %d, want 4", r.PeakRank)
	}
	if r.HitCount != 3 {
		t.Errorf("HitCount = %d, want 3", r.HitCount)
	}
	wantEdge := []string{"G01", "G02", "G03", "G04"}
	if len(r.LeadingEdge) != len(wantEdge) {
		t.Fatalf("LeadingEdge = %v, want %v", r.LeadingEdge, wantEdge)
	}
	for i, g := range wantEdge {
		if r.LeadingEdge[i] != g {
			t.Errorf("LeadingEdge[%d] = %q, want %q", i, r.LeadingEdge[i], g)
		}
	}
	if r.NES <= 0 {
		t.Errorf("NES = %g, want positive", r.NES)
	}
	if r.PValue < 0 || r.PValue > 1 {
		t.Errorf("PValue = %g, outside [0,1]", r.PValue)
	}
	if r.FDRQ < 0 || r.FDRQ > 1 {
		t.Errorf("FDRQ = %g, outside [0,1]", r.FDRQ)
	}
}

func TestScoreDeterministicAcrossWorkers(t *testing.T) {
	list := tenGeneList(t)
	sets := []types.GeneSet{
		{ID: "top", Genes: []string{"G01", "G02", "G04"}},
		{ID: "middle", Genes: []string{"G04", "G05", "G06"}},
		{ID: "bottom", Genes: []string{"G08", "G09", "G10"}},
	}

	var reference []types.GeneSetReport
	for _, workers := range []struct{ sets, perms int }{{1, 1}, {3, 8}} {
		p := testParams()
		p.GeneSetWorkers = workers.sets
		p.PermutationWorkers = workers.perms

		var buf strings.Builder
		out, err := Score(context.Background(), list, sets, p, &buf)
		if err != nil {
			t.Fatal(err)
		}
		if out.HasFailures() {
			t.Fatalf("unexpected failures: %v", out.Failures)
		}
		if reference == nil {
			reference = out.Reports
			continue
		}
		for i, r := range out.Reports {
			want := reference[i]
			if r.GeneSetID != want.GeneSetID || r.ES != want.ES ||
				r.NES != want.NES || r.PValue != want.PValue || r.FDRQ != want.FDRQ {
				t.Errorf("workers %+v: report %d = %+v, want %+v", workers, i, r, want)
			}
		}
	}
}

func TestScoreScaleInvariance(t *testing.T) {
	// Doubling every score scales hit weights and their sum by the
	// same power of two, so the running-sum ratios and everything
	// derived from them are unchanged.
	base := make([]ranking.Entry, 10)
	scaled := make([]ranking.Entry, 10)
	for i := range base {
		gene := fmt.Sprintf("G%02d", i+1)
		score := float64(10-i) - 4.5
		base[i] = ranking.Entry{Gene: gene, Score: score}
		scaled[i] = ranking.Entry{Gene: gene, Score: score * 2}
	}

	sets := []types.GeneSet{{ID: "pathway", Genes: []string{"G01", "G04", "G07"}}}

	var reports [2]types.GeneSetReport
	for j, entries := range [][]ranking.Entry{base, scaled} {
		list, err := ranking.New(entries)
		if err != nil {
			t.Fatal(err)
		}
		var buf strings.Builder
		out, err := Score(context.Background(), list, sets, testParams(), &buf)
		if err != nil {
			t.Fatal(err)
		}
		if len(out.Reports) != 1 {
			t.Fatalf("got %d reports", len(out.Reports))
		}
		reports[j] = out.Reports[0]
	}

	if reports[0].ES != reports[1].ES {
		t.Errorf("ES changed under scaling: %g vs %g", reports[0].ES, reports[1].ES)
	}
	if reports[0].NES != reports[1].NES {
		t.Errorf("NES changed under scaling: %g vs %g", reports[0].NES, reports[1].NES)
	}
	if reports[0].PValue != reports[1].PValue {
		t.Errorf("p-value changed under scaling: %g vs %g", reports[0].PValue, reports[1].PValue)
	}
	if reports[0].PeakRank != reports[1].PeakRank {
		t.Errorf("peak changed under scaling: %d vs %d", reports[0].PeakRank, reports[1].PeakRank)
	}
}

func TestScoreFailureIsolation(t *testing.T) {
	list := tenGeneList(t)
	sets := []types.GeneSet{
		{ID: "good", Genes: []string{"G01", "G04", "G07"}},
		{ID: "disjoint", Genes: []string{"X1", "X2"}},
		{ID: "empty"},
	}

	var buf strings.Builder
	out, err := Score(context.Background(), list, sets, testParams(), &buf)
	if err != nil {
		t.Fatal(err)
	}

	if len(out.Reports) != 1 || out.Reports[0].GeneSetID != "good" {
		t.Fatalf("Reports = %+v, want just the good set", out.Reports)
	}
	if len(out.Failures) != 2 {
		t.Fatalf("got %d failures, want 2: %v", len(out.Failures), out.Failures)
	}
	if !errors.Is(out.Failures[0], ErrInsufficientOverlap) {
		t.Errorf("failure 0 = %v, want ErrInsufficientOverlap", out.Failures[0])
	}
	if !errors.Is(out.Failures[1], ErrEmptySet) {
		t.Errorf("failure 1 = %v, want ErrEmptySet", out.Failures[1])
	}
	for _, id := range []string{"disjoint", "empty"} {
		if !strings.Contains(buf.String(), id) {
			t.Errorf("warning output %q does not mention %s", buf.String(), id)
		}
	}
}

func TestScoreFDRMonotoneWithinSign(t *testing.T) {
	list := tenGeneList(t)
	sets := []types.GeneSet{
		{ID: "strong-top", Genes: []string{"G01", "G02"}},
		{ID: "weak-top", Genes: []string{"G02", "G06"}},
		{ID: "strong-bottom", Genes: []string{"G09", "G10"}},
		{ID: "weak-bottom", Genes: []string{"G05", "G09"}},
	}

	var buf strings.Builder
	out, err := Score(context.Background(), list, sets, testParams(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if out.HasFailures() {
		t.Fatalf("unexpected failures: %v", out.Failures)
	}

	for _, r := range out.Reports {
		if (r.Sign() > 0) != (r.NES > 0) {
			t.Errorf("set %s: Sign() = %d disagrees with NES %g", r.GeneSetID, r.Sign(), r.NES)
		}
	}

	// Within each sign group, q-values must not decrease as |NES|
	// drops.
	for _, positive := range []bool{true, false} {
		var group []types.GeneSetReport
		for _, r := range out.Reports {
			if (r.NES > 0) == positive {
				group = append(group, r)
			}
		}
		for i := range group {
			for j := range group {
				if math.Abs(group[i].NES) > math.Abs(group[j].NES) && group[i].FDRQ > group[j].FDRQ {
					t.Errorf("positive=%v: %s (|NES|=%g, q=%g) has larger q than weaker %s (|NES|=%g, q=%g)",
						positive, group[i].GeneSetID, math.Abs(group[i].NES), group[i].FDRQ,
						group[j].GeneSetID, math.Abs(group[j].NES), group[j].FDRQ)
				}
			}
		}
	}
}

func TestScoreCancellation(t *testing.T) {
	list := tenGeneList(t)
	sets := []types.GeneSet{{ID: "pathway", Genes: []string{"G01", "G04", "G07"}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := testParams()
	p.Permutations = 100000

	var buf strings.Builder
	out, err := Score(ctx, list, sets, p, &buf)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if len(out.Reports) != 0 || len(out.Failures) != 0 {
		t.Errorf("partial output survived cancellation: %+v", out)
	}
}

func TestScoreRejectsBadParams(t *testing.T) {
	list := tenGeneList(t)
	sets := []types.GeneSet{{ID: "pathway", Genes: []string{"G01"}}}
	var buf strings.Builder

	p := testParams()
	p.Permutations = 0
	if _, err := Score(context.Background(), list, sets, p, &buf); !errors.Is(err, ErrPermutationCount) {
		t.Errorf("permutations=0: error = %v, want ErrPermutationCount", err)
	}

	p = testParams()
	p.WeightExponent = -1
	if _, err := Score(context.Background(), list, sets, p, &buf); !errors.Is(err, ErrWeightExponent) {
		t.Errorf("exponent=-1: error = %v, want ErrWeightExponent", err)
	}
}
