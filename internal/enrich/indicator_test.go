// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pdiddy/enrich-engine/internal/ranking"
	"github.com/pdiddy/enrich-engine/pkg/types"
)

// tenGeneList builds the list G01..G10 with scores 10 down to 1.
func tenGeneList(t *testing.T) *ranking.List {
	t.Helper()
	entries := make([]ranking.Entry, 10)
	for i := range entries {
		entries[i] = ranking.Entry{
			Gene:  fmt.Sprintf("G%02d", i+1),
			Score: float64(10 - i),
		}
	}
	list, err := ranking.New(entries)
	if err != nil {
		t.Fatal(err)
	}
	return list
}

func TestBuildIndicator(t *testing.T) {
	list := tenGeneList(t)
	set := types.GeneSet{
		ID: "pathway",
		// G04 repeats and NOTINLIST is absent from the ranking; neither
		// affects the hit count.
		Genes: []string{"G01", "G04", "G07", "G04", "NOTINLIST"},
	}

	ind, err := BuildIndicator(list, set)
	if err != nil {
		t.Fatal(err)
	}
	if ind.HitCount != 3 || ind.MissCount != 7 {
		t.Errorf("HitCount/MissCount = %d/%d, want 3/7", ind.HitCount, ind.MissCount)
	}
	wantPositions := []int{0, 3, 6}
	if len(ind.Positions) != len(wantPositions) {
		t.Fatalf("Positions = %v, want %v", ind.Positions, wantPositions)
	}
	for i, p := range wantPositions {
		if ind.Positions[i] != p {
			t.Errorf("Positions[%d] = %d, want %d", i, ind.Positions[i], p)
		}
		if !ind.Hits[p] {
			t.Errorf("Hits[%d] = false, want true", p)
		}
	}
}

func TestBuildIndicatorFailures(t *testing.T) {
	list := tenGeneList(t)

	tests := []struct {
		name     string
		set      types.GeneSet
		sentinel error
	}{
		{"empty set", types.GeneSet{ID: "empty"}, ErrEmptySet},
		{
			"no overlap",
			types.GeneSet{ID: "disjoint", Genes: []string{"X1", "X2"}},
			ErrInsufficientOverlap,
		},
		{
			"full overlap",
			types.GeneSet{ID: "universe", Genes: []string{
				"G01", "G02", "G03", "G04", "G05", "G06", "G07", "G08", "G09", "G10",
			}},
			ErrInsufficientOverlap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildIndicator(list, tt.set)
			if err == nil {
				t.Fatal("BuildIndicator succeeded, want error")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error %v does not wrap %v", err, tt.sentinel)
			}
			var gse *GeneSetError
			if !errors.As(err, &gse) {
				t.Fatalf("error %v is not a *GeneSetError", err)
			}
			if gse.GeneSetID != tt.set.ID {
				t.Errorf("GeneSetID = %q, want %q", gse.GeneSetID, tt.set.ID)
			}
		})
	}
}
