// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hgnc generates pre-ranked input lists from the HGNC complete
// gene set: it downloads the official TSV, keeps Approved symbols, and
// assigns seeded random scores so the scoring stage has a full-genome
// ranking to work against.
package hgnc

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/pdiddy/enrich-engine/internal/httputil"
	"github.com/pdiddy/enrich-engine/internal/ranking"
	"github.com/pdiddy/enrich-engine/pkg/types"
)

// DefaultURL is the HGNC complete-set TSV location (moved from the FTP
// site to Google Storage in 2025).
const DefaultURL = "https://storage.googleapis.com/public-download-files/hgnc/tsv/tsv/hgnc_complete_set.txt"

// FetchSymbols downloads the HGNC complete set and returns the gene
// symbols with status Approved, optionally restricted to protein-coding
// genes. Progress goes to w.
func FetchSymbols(ctx context.Context, client *http.Client, cfg types.GenerateConfig, w io.Writer) ([]string, error) {
	url := cfg.SourceURL
	if url == "" {
		url = DefaultURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building HGNC request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	fmt.Fprintf(w, "downloading HGNC complete set from %s\n", url)
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("downloading HGNC complete set: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading HGNC complete set: HTTP %d", resp.StatusCode)
	}

	symbols, total, err := ParseSymbols(resp.Body, cfg.ProteinCodingOnly)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "parsed %d gene symbols from %d rows\n", len(symbols), total)
	return symbols, nil
}

// ParseSymbols reads the HGNC complete-set TSV from r and returns the
// Approved gene symbols plus the total row count. With
// proteinCodingOnly set, rows must also have locus_group
// "protein-coding gene".
func ParseSymbols(r io.Reader, proteinCodingOnly bool) (symbols []string, total int, err error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("reading HGNC header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"symbol", "status"} {
		if _, ok := col[required]; !ok {
			return nil, 0, fmt.Errorf("HGNC input is missing the %q column", required)
		}
	}
	if _, ok := col["locus_group"]; !ok && proteinCodingOnly {
		return nil, 0, fmt.Errorf("HGNC input is missing the %q column", "locus_group")
	}

	field := func(row []string, name string) string {
		i := col[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, total, fmt.Errorf("reading HGNC row: %w", err)
		}
		total++

		symbol := field(row, "symbol")
		if symbol == "" || field(row, "status") != "Approved" {
			continue
		}
		if proteinCodingOnly && field(row, "locus_group") != "protein-coding gene" {
			continue
		}
		symbols = append(symbols, symbol)
	}
	return symbols, total, nil
}

// AssignScores gives every gene a seeded N(0,1) score, imitating a
// continuous differential-expression statistic, and returns the entries
// sorted by score descending.
func AssignScores(genes []string, seed int64) []ranking.Entry {
	rng := rand.New(rand.NewSource(seed))
	entries := make([]ranking.Entry, len(genes))
	for i, g := range genes {
		entries[i] = ranking.Entry{Gene: g, Score: rng.NormFloat64()}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// Generate downloads the HGNC gene universe, assigns seeded random
// scores, and writes a pre-ranked list to cfg.OutputPath.
func Generate(ctx context.Context, client *http.Client, cfg types.GenerateConfig, w io.Writer) error {
	symbols, err := FetchSymbols(ctx, client, cfg, w)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no Approved gene symbols found in HGNC input")
	}

	entries := AssignScores(symbols, cfg.Seed)

	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := ranking.WritePreRanked(f, entries); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %d pre-ranked genes to %s\n", len(entries), cfg.OutputPath)
	return nil
}
