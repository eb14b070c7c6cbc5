// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/enrich-engine/pkg/types"
)

// QueryOptions holds filters for results-store queries.
type QueryOptions struct {
	// Query is an FTS5 full-text match over gene-set (term) labels.
	Query string

	// RunID restricts results to one run.
	RunID string

	// Sign filters by enrichment direction: +1, -1, or 0 for both.
	Sign int

	// MaxQ keeps only results with fdr_q <= MaxQ. Negative disables the
	// filter; zero keeps only q = 0 results.
	MaxQ float64

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.RunID == "" && q.Sign == 0 && q.MaxQ < 0
}

// QueryResult is one stored gene-set report with its run ID.
type QueryResult struct {
	RunID                string `json:"run_id" yaml:"run_id"`
	types.GeneSetReport `yaml:",inline"`
}

// Retrieve queries stored results with optional full-text search over
// term labels and structured filters. Full-text queries rank by FTS5
// relevance; structured-only queries sort by ascending q-value then
// descending |NES|.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT r.run_id, r.gene_set_id, r.es, r.nes, r.p_value, r.fdr_q,
				r.hit_count, r.peak_rank, r.leading_edge
			FROM results_fts
			JOIN results r ON r.rowid = results_fts.rowid
			WHERE results_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT r.run_id, r.gene_set_id, r.es, r.nes, r.p_value, r.fdr_q,
				r.hit_count, r.peak_rank, r.leading_edge
			FROM results r
			WHERE 1=1`)
	}

	if opts.RunID != "" {
		qb.WriteString(` AND r.run_id = ?`)
		args = append(args, opts.RunID)
	}
	switch {
	case opts.Sign > 0:
		qb.WriteString(` AND r.es > 0`)
	case opts.Sign < 0:
		qb.WriteString(` AND r.es < 0`)
	}
	if opts.MaxQ >= 0 {
		qb.WriteString(` AND r.fdr_q <= ?`)
		args = append(args, opts.MaxQ)
	}

	if useFTS {
		qb.WriteString(` ORDER BY results_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.fdr_q, ABS(r.nes) DESC`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var out []QueryResult
	for rows.Next() {
		var (
			qr       QueryResult
			edgeJSON sql.NullString
		)
		if err := rows.Scan(
			&qr.RunID, &qr.GeneSetID, &qr.ES, &qr.NES, &qr.PValue, &qr.FDRQ,
			&qr.HitCount, &qr.PeakRank, &edgeJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if edgeJSON.Valid {
			json.Unmarshal([]byte(edgeJSON.String), &qr.LeadingEdge)
		}
		out = append(out, qr)
	}
	return out, rows.Err()
}
