// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hgnc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/enrich-engine/internal/ranking"
	"github.com/pdiddy/enrich-engine/pkg/types"
)

const sampleTSV = "hgnc_id\tsymbol\tname\tlocus_group\tstatus\n" +
	"HGNC:11998\tTP53\ttumor protein p53\tprotein-coding gene\tApproved\n" +
	"HGNC:1100\tBRCA1\tBRCA1 DNA repair associated\tprotein-coding gene\tApproved\n" +
	"HGNC:2334\tOLD1\twithdrawn symbol\tprotein-coding gene\tEntry Withdrawn\n" +
	"HGNC:5\tMIR21\tmicroRNA 21\tnon-coding RNA\tApproved\n"

func TestParseSymbols(t *testing.T) {
	tests := []struct {
		name        string
		codingOnly  bool
		wantSymbols []string
	}{
		{"all approved", false, []string{"TP53", "BRCA1", "MIR21"}},
		{"protein coding only", true, []string{"TP53", "BRCA1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			symbols, total, err := ParseSymbols(strings.NewReader(sampleTSV), tt.codingOnly)
			if err != nil {
				t.Fatal(err)
			}
			if total != 4 {
				t.Errorf("total = %d, want 4", total)
			}
			if len(symbols) != len(tt.wantSymbols) {
				t.Fatalf("symbols = %v, want %v", symbols, tt.wantSymbols)
			}
			for i, s := range tt.wantSymbols {
				if symbols[i] != s {
					t.Errorf("symbol %d = %q, want %q", i, symbols[i], s)
				}
			}
		})
	}
}

func TestParseSymbolsMissingColumn(t *testing.T) {
	input := "hgnc_id\tname\nHGNC:1\tsomething\n"
	if _, _, err := ParseSymbols(strings.NewReader(input), false); err == nil {
		t.Error("ParseSymbols succeeded without symbol column, want error")
	}

	// locus_group is only required when filtering on it.
	noLocus := "symbol\tstatus\nTP53\tApproved\n"
	if _, _, err := ParseSymbols(strings.NewReader(noLocus), false); err != nil {
		t.Errorf("ParseSymbols without locus_group: %v", err)
	}
	if _, _, err := ParseSymbols(strings.NewReader(noLocus), true); err == nil {
		t.Error("ParseSymbols succeeded filtering without locus_group, want error")
	}
}

func TestAssignScores(t *testing.T) {
	genes := []string{"TP53", "BRCA1", "EGFR", "MYC", "KRAS"}

	a := AssignScores(genes, 42)
	b := AssignScores(genes, 42)
	if len(a) != len(genes) {
		t.Fatalf("got %d entries, want %d", len(a), len(genes))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("same seed diverged at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
	for i := 1; i < len(a); i++ {
		if a[i].Score > a[i-1].Score {
			t.Errorf("entries not sorted descending: %g after %g", a[i].Score, a[i-1].Score)
		}
	}

	c := AssignScores(genes, 43)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical scores")
	}
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleTSV))
	}))
	defer srv.Close()

	outPath := filepath.Join(t.TempDir(), "ranked.tsv")
	cfg := types.GenerateConfig{
		SourceURL:         srv.URL,
		ProteinCodingOnly: true,
		Seed:              7,
		OutputPath:        outPath,
	}
	cfg.UserAgent = "enrich-engine/test"

	var buf strings.Builder
	if err := Generate(context.Background(), srv.Client(), cfg, &buf); err != nil {
		t.Fatal(err)
	}

	list, err := ranking.LoadPreRanked(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if list.Len() != 2 {
		t.Fatalf("ranked list has %d genes, want 2", list.Len())
	}
	for _, gene := range []string{"TP53", "BRCA1"} {
		if _, ok := list.Rank(gene); !ok {
			t.Errorf("gene %s missing from ranked list", gene)
		}
	}
	if !strings.Contains(buf.String(), "wrote 2 pre-ranked genes") {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := types.GenerateConfig{
		SourceURL:  srv.URL,
		OutputPath: filepath.Join(t.TempDir(), "ranked.tsv"),
	}

	var buf strings.Builder
	err := Generate(context.Background(), srv.Client(), cfg, &buf)
	if err == nil {
		t.Fatal("Generate succeeded against a 404 source, want error")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %v, want HTTP 404 mention", err)
	}
	if _, statErr := os.Stat(cfg.OutputPath); !os.IsNotExist(statErr) {
		t.Error("output file created despite download failure")
	}
}
