// Package storage persists completed comparison runs for the history
// and show commands.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/ahrav/go-faceoff/internal/domain"
	"github.com/ahrav/go-faceoff/internal/ports"
)

// schema creates the run history tables. Aggregates and the verdict are
// stored as JSON documents; the winner column is duplicated out of the
// verdict so listings never parse JSON.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	mode         TEXT NOT NULL,
	provider     TEXT NOT NULL,
	model        TEXT NOT NULL,
	started_at   TIMESTAMP NOT NULL,
	completed_at TIMESTAMP NOT NULL,
	winner       TEXT NOT NULL DEFAULT '',
	tie          INTEGER NOT NULL DEFAULT 0,
	aggregates   TEXT NOT NULL,
	verdict      TEXT NOT NULL,
	report       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS interactions (
	run_id                TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq                   INTEGER NOT NULL,
	group_label           TEXT NOT NULL,
	input_label           TEXT NOT NULL,
	latency_seconds       REAL NOT NULL,
	response_time_seconds REAL NOT NULL,
	correct               INTEGER NOT NULL,
	handoff_succeeded     INTEGER NOT NULL,
	token_count           INTEGER NOT NULL DEFAULT 0,
	error_text            TEXT NOT NULL DEFAULT '',
	created_at            TIMESTAMP NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// SQLiteRunStore implements the RunStore interface on a SQLite database.
// SQLite supports one writer at a time but multiple readers under WAL
// mode, which is plenty for a store written to once per run.
type SQLiteRunStore struct {
	db *sql.DB
}

var _ ports.RunStore = (*SQLiteRunStore)(nil)

// NewSQLiteRunStore opens the database at dbPath, creating the file, its
// parent directory, and the schema as needed. Pass ":memory:" for an
// ephemeral store.
func NewSQLiteRunStore(dbPath string) (*SQLiteRunStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("database path must not be empty")
	}

	// Ensure the parent directory exists for on-disk databases. Stored
	// runs can include prompt text, so keep the directory private.
	if dbPath != ":memory:" && !strings.HasPrefix(dbPath, "file:") {
		if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if dbPath == ":memory:" {
		// Every pooled connection to ":memory:" opens a distinct database,
		// so the pool must stay at one connection to share the schema.
		db.SetMaxOpenConns(1)
	} else {
		// SQLite allows a single writer; keep a small pool for readers.
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring database: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteRunStore{db: db}, nil
}

// SaveRun persists a completed run and its interaction log in one
// transaction. Saving a run ID twice is an error.
func (s *SQLiteRunStore) SaveRun(ctx context.Context, run domain.RunResult) (err error) {
	if run.ID == "" {
		return errors.New("run ID must not be empty")
	}

	aggregates, err := json.Marshal(run.Aggregates)
	if err != nil {
		return fmt.Errorf("marshaling aggregates: %w", err)
	}
	verdict, err := json.Marshal(run.Verdict)
	if err != nil {
		return fmt.Errorf("marshaling verdict: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, mode, provider, model, started_at, completed_at,
			winner, tie, aggregates, verdict, report
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Mode,
		run.Provider,
		run.Model,
		run.StartedAt,
		run.CompletedAt,
		run.Verdict.Winner,
		run.Verdict.Tie,
		string(aggregates),
		string(verdict),
		run.Report,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	if len(run.Records) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx, `
			INSERT INTO interactions (
				run_id, seq, group_label, input_label,
				latency_seconds, response_time_seconds,
				correct, handoff_succeeded, token_count, error_text, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing interaction insert: %w", err)
		}
		defer stmt.Close()

		for i, record := range run.Records {
			if _, err = stmt.ExecContext(ctx,
				run.ID,
				i,
				record.Group,
				record.InputLabel,
				record.LatencySeconds,
				record.ResponseTimeSeconds,
				record.Correct,
				record.HandoffSucceeded,
				record.TokenCount,
				record.ErrorText,
				record.CreatedAt,
			); err != nil {
				return fmt.Errorf("inserting interaction %d for run %s: %w", i, run.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun loads one run by ID, including its full interaction log.
func (s *SQLiteRunStore) GetRun(ctx context.Context, id string) (domain.RunResult, error) {
	var (
		run        domain.RunResult
		aggregates string
		verdict    string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, mode, provider, model, started_at, completed_at,
		       aggregates, verdict, report
		FROM runs
		WHERE id = ?
	`, id).Scan(
		&run.ID,
		&run.Mode,
		&run.Provider,
		&run.Model,
		&run.StartedAt,
		&run.CompletedAt,
		&aggregates,
		&verdict,
		&run.Report,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RunResult{}, fmt.Errorf("run %s: %w", id, ports.ErrRunNotFound)
	}
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("loading run %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(aggregates), &run.Aggregates); err != nil {
		return domain.RunResult{}, fmt.Errorf("unmarshaling aggregates for run %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(verdict), &run.Verdict); err != nil {
		return domain.RunResult{}, fmt.Errorf("unmarshaling verdict for run %s: %w", id, err)
	}

	records, err := s.loadRecords(ctx, id)
	if err != nil {
		return domain.RunResult{}, err
	}
	run.Records = records

	return run, nil
}

// loadRecords reads a run's interaction log in insertion order.
func (s *SQLiteRunStore) loadRecords(ctx context.Context, runID string) ([]domain.InteractionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT group_label, input_label, latency_seconds, response_time_seconds,
		       correct, handoff_succeeded, token_count, error_text, created_at
		FROM interactions
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading interactions for run %s: %w", runID, err)
	}
	defer rows.Close()

	var records []domain.InteractionRecord
	for rows.Next() {
		var record domain.InteractionRecord
		if err := rows.Scan(
			&record.Group,
			&record.InputLabel,
			&record.LatencySeconds,
			&record.ResponseTimeSeconds,
			&record.Correct,
			&record.HandoffSucceeded,
			&record.TokenCount,
			&record.ErrorText,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning interaction for run %s: %w", runID, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating interactions for run %s: %w", runID, err)
	}
	return records, nil
}

// ListRuns returns summaries of stored runs, newest first. A non-positive
// limit returns all runs.
func (s *SQLiteRunStore) ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	query := `
		SELECT id, mode, provider, winner, started_at,
		       (SELECT COUNT(*) FROM interactions i WHERE i.run_id = runs.id)
		FROM runs
		ORDER BY started_at DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var summaries []domain.RunSummary
	for rows.Next() {
		var summary domain.RunSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.Mode,
			&summary.Provider,
			&summary.Winner,
			&summary.StartedAt,
			&summary.TotalInteractions,
		); err != nil {
			return nil, fmt.Errorf("scanning run summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return summaries, nil
}

// Close releases the database handle.
func (s *SQLiteRunStore) Close() error { return s.db.Close() }
