// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package results persists scored enrichment runs in a local SQLite
// database and indexes term labels for full-text retrieval by the
// downstream explanation layer.
package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/enrich-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "enrichment.db"
)

// Store manages the results SQLite database.
type Store struct {
	db         *sql.DB
	resultsDir string
	maxResults int
}

// NewStore opens or creates the results database at
// resultsDir/index/enrichment.db, creating the schema if needed.
func NewStore(cfg types.ResultsConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.ResultsDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		resultsDir: cfg.ResultsDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			ranked_list TEXT,
			gene_sets_source TEXT,
			permutations INTEGER,
			weight_exponent REAL,
			seed INTEGER,
			scored INTEGER,
			failed INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			gene_set_id TEXT NOT NULL,
			es REAL NOT NULL,
			nes REAL NOT NULL,
			p_value REAL NOT NULL,
			fdr_q REAL NOT NULL,
			hit_count INTEGER NOT NULL,
			peak_rank INTEGER NOT NULL,
			leading_edge TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_fdr_q ON results(fdr_q)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over term labels, kept in sync by triggers.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='results_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE results_fts USING fts5(gene_set_id, content=results, content_rowid=rowid)`,
			`CREATE TRIGGER results_ai AFTER INSERT ON results BEGIN
				INSERT INTO results_fts(rowid, gene_set_id) VALUES (new.rowid, new.gene_set_id);
			END`,
			`CREATE TRIGGER results_ad AFTER DELETE ON results BEGIN
				INSERT INTO results_fts(results_fts, rowid, gene_set_id) VALUES('delete', old.rowid, old.gene_set_id);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// RunMeta describes the inputs and parameters of a stored run.
type RunMeta struct {
	RankedList     string  `json:"ranked_list" yaml:"ranked_list"`
	GeneSetsSource string  `json:"gene_sets_source" yaml:"gene_sets_source"`
	Permutations   int     `json:"permutations" yaml:"permutations"`
	WeightExponent float64 `json:"weight_exponent" yaml:"weight_exponent"`
	Seed           int64   `json:"seed" yaml:"seed"`
	Failed         int     `json:"failed" yaml:"failed"`
}

// Run is a stored run record.
type Run struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	RunMeta   `yaml:",inline"`
	Scored    int `json:"scored" yaml:"scored"`
}

// SaveRun stores a scored batch and returns the new run ID.
func (s *Store) SaveRun(ctx context.Context, meta RunMeta, reports []types.GeneSetReport) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, ranked_list, gene_sets_source, permutations,
			weight_exponent, seed, scored, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339Nano),
		meta.RankedList, meta.GeneSetsSource, meta.Permutations,
		meta.WeightExponent, meta.Seed, len(reports), meta.Failed,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (run_id, gene_set_id, es, nes, p_value, fdr_q,
			hit_count, peak_rank, leading_edge)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range reports {
		edgeJSON, _ := json.Marshal(r.LeadingEdge)
		_, err := stmt.ExecContext(ctx,
			runID, r.GeneSetID, r.ES, r.NES, r.PValue, r.FDRQ,
			r.HitCount, r.PeakRank, string(edgeJSON),
		)
		if err != nil {
			return "", fmt.Errorf("inserting result %s: %w", r.GeneSetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, ranked_list, gene_sets_source, permutations,
			weight_exponent, seed, scored, failed
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt string
		if err := rows.Scan(&r.ID, &createdAt, &r.RankedList, &r.GeneSetsSource,
			&r.Permutations, &r.WeightExponent, &r.Seed, &r.Scored, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
