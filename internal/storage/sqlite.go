package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
)

// DB wraps the SQLite run history database.
type DB struct {
	db *sql.DB
}

// ErrRunNotFound is returned when no run matches an ID or ID prefix.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRun is returned when an ID prefix matches several runs.
var ErrAmbiguousRun = errors.New("ambiguous run id")

// Run is one stored compare-all execution.
type Run struct {
	ID           string                 `json:"id"`
	StartedAt    time.Time              `json:"started_at"`
	FinishedAt   time.Time              `json:"finished_at"`
	Mode         reconcile.CoverageMode `json:"mode"`
	Collections  []string               `json:"collections"`
	PairCount    int                    `json:"pair_count"`
	FailureCount int                    `json:"failure_count"`
}

// Failure is a stored pair failure.
type Failure struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Error  string `json:"error"`
}

// RunDetail is a run with its recap and failures.
type RunDetail struct {
	Run
	Recap    []reconcile.RecapEntry `json:"recap"`
	Failures []Failure              `json:"failures"`
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			collections_json TEXT NOT NULL,
			pair_count INTEGER NOT NULL,
			failure_count INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS recap (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			source_total INTEGER NOT NULL,
			target_total INTEGER NOT NULL,
			common INTEGER NOT NULL,
			symmetric REAL NOT NULL,
			source_relative REAL NOT NULL,
			PRIMARY KEY (run_id, position)
		);

		CREATE TABLE IF NOT EXISTS failures (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			error TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := db.Exec(schema)
	return err
}

// RecordRun stores a batch result under a new run ID and returns the run.
func (d *DB) RecordRun(b *reconcile.Batch, collections []string, started, finished time.Time) (*Run, error) {
	run := &Run{
		ID:           uuid.NewString(),
		StartedAt:    started.UTC(),
		FinishedAt:   finished.UTC(),
		Mode:         b.Mode,
		Collections:  collections,
		PairCount:    len(b.Pairs) + len(b.Failures),
		FailureCount: len(b.Failures),
	}

	collectionsJSON, err := json.Marshal(collections)
	if err != nil {
		return nil, fmt.Errorf("encoding collections: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, started_at, finished_at, mode, collections_json, pair_count, failure_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, formatTime(run.StartedAt), formatTime(run.FinishedAt), string(run.Mode),
		string(collectionsJSON), run.PairCount, run.FailureCount)
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}

	recapStmt, err := tx.Prepare(`
		INSERT INTO recap (run_id, position, source, target, source_total, target_total, common, symmetric, source_relative)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing recap insert: %w", err)
	}
	defer recapStmt.Close()

	for i, e := range b.Recap {
		_, err := recapStmt.Exec(run.ID, i, e.Source, e.Target, e.SourceTotal, e.TargetTotal,
			e.Common, e.Symmetric, e.SourceRelative)
		if err != nil {
			return nil, fmt.Errorf("inserting recap %s/%s: %w", e.Source, e.Target, err)
		}
	}

	for _, f := range b.Failures {
		_, err := tx.Exec(`INSERT INTO failures (run_id, source, target, error) VALUES (?, ?, ?, ?)`,
			run.ID, f.Source, f.Target, f.Err.Error())
		if err != nil {
			return nil, fmt.Errorf("inserting failure %s/%s: %w", f.Source, f.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A limit of 0 means no limit.
func (d *DB) ListRuns(limit int) ([]Run, error) {
	query := `SELECT id, started_at, finished_at, mode, collections_json, pair_count, failure_count
		FROM runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun returns a run with its recap and failures. id may be a unique
// prefix of the full run ID.
func (d *DB) GetRun(id string) (*RunDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRunNotFound
	}

	rows, err := d.db.Query(`SELECT id, started_at, finished_at, mode, collections_json, pair_count, failure_count
		FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 2:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRun, id)
	}

	detail := &RunDetail{Run: *matches[0]}
	if detail.Recap, err = d.recap(detail.ID, detail.Mode); err != nil {
		return nil, err
	}
	if detail.Failures, err = d.failures(detail.ID); err != nil {
		return nil, err
	}
	return detail, nil
}

func (d *DB) recap(runID string, mode reconcile.CoverageMode) ([]reconcile.RecapEntry, error) {
	rows, err := d.db.Query(`SELECT source, target, source_total, target_total, common, symmetric, source_relative
		FROM recap WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying recap: %w", err)
	}
	defer rows.Close()

	var out []reconcile.RecapEntry
	for rows.Next() {
		e := reconcile.RecapEntry{Mode: mode}
		if err := rows.Scan(&e.Source, &e.Target, &e.SourceTotal, &e.TargetTotal,
			&e.Common, &e.Symmetric, &e.SourceRelative); err != nil {
			return nil, fmt.Errorf("scanning recap: %w", err)
		}
		e.Coverage = e.Rate(mode)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (d *DB) failures(runID string) ([]Failure, error) {
	rows, err := d.db.Query(`SELECT source, target, error FROM failures WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying failures: %w", err)
	}
	defer rows.Close()

	var out []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Source, &f.Target, &f.Error); err != nil {
			return nil, fmt.Errorf("scanning failure: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CountRuns returns the number of stored runs.
func (d *DB) CountRuns() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run             Run
		started, done   string
		mode            string
		collectionsJSON string
	)
	if err := s.Scan(&run.ID, &started, &done, &mode, &collectionsJSON, &run.PairCount, &run.FailureCount); err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	var err error
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("parsing started_at of %s: %w", run.ID, err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, done); err != nil {
		return nil, fmt.Errorf("parsing finished_at of %s: %w", run.ID, err)
	}
	run.Mode = reconcile.CoverageMode(mode)
	if err := json.Unmarshal([]byte(collectionsJSON), &run.Collections); err != nil {
		return nil, fmt.Errorf("parsing collections of %s: %w", run.ID, err)
	}
	return &run, nil
}

// formatTime stores times in a lexically sortable form.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
