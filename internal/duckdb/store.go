// Package duckdb persists prediction data. Genome snapshots are cached as
// gob files (fast, pure Go). Effect results are stored in DuckDB
// (queryable, append-only), one run per annotation pass.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for effect results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		run_id VARCHAR PRIMARY KEY,
		source VARCHAR,
		started_at TIMESTAMP,
		variants BIGINT,
		effects BIGINT
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS effect_results (
		run_id VARCHAR,
		seq BIGINT,
		chrom VARCHAR,
		start_pos BIGINT,
		end_pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		variant_id VARCHAR,
		variant_kind VARCHAR,
		feature_kind VARCHAR,
		feature_id VARCHAR,
		gene_name VARCHAR,
		transcript_id VARCHAR,
		effect_types VARCHAR,
		impact VARCHAR,
		old_codon VARCHAR,
		new_codon VARCHAR,
		old_aa VARCHAR,
		new_aa VARCHAR,
		cds_base BIGINT,
		codon_num BIGINT,
		distance BIGINT,
		exon_rank BIGINT,
		hgvsc VARCHAR,
		hgvsp VARCHAR,
		issues VARCHAR
	)`)
	return err
}
