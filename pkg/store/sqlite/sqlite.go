// Package sqlite is the SQLite-backed transcript store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/drover-ai/drover/pkg/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	mode        TEXT NOT NULL,
	model       TEXT NOT NULL,
	instruction TEXT NOT NULL,
	answer      TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP
);
CREATE TABLE IF NOT EXISTS steps (
	run_id      TEXT NOT NULL REFERENCES runs(run_id),
	iteration   INTEGER NOT NULL,
	assistant   BLOB,
	results     BLOB,
	stop_reason TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL,
	PRIMARY KEY (run_id, iteration)
);
`

// Store implements store.TranscriptStore on SQLite.
type Store struct {
	db *sql.DB
}

var _ store.TranscriptStore = (*Store)(nil)

// Open opens (and migrates) a transcript database. A DSN like
// "sqlite:file:drover.sqlite?_pragma=busy_timeout(5000)" or a bare file
// path is accepted; ":memory:" works for tests.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("dsn is empty")
	}
	dsn = strings.TrimPrefix(dsn, "sqlite:")
	// ncruces/go-sqlite3 registers driver name "sqlite3"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) CreateRun(ctx context.Context, run store.RunRecord) error {
	if run.RunID == "" {
		return errors.New("run_id is empty")
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, mode, model, instruction, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Mode, run.Model, run.Instruction, run.Status, started)
	return err
}

func (s *Store) FinishRun(ctx context.Context, runID, status, answer, errText string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, answer = ?, error = ?, finished_at = ? WHERE run_id = ?`,
		status, answer, errText, time.Now().UTC(), runID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %q not found", runID)
	}
	return nil
}

func (s *Store) AppendStep(ctx context.Context, step store.StepRow) error {
	created := step.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO steps (run_id, iteration, assistant, results, stop_reason, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		step.RunID, step.Iteration, step.Assistant, step.Results, step.StopReason, created)
	return err
}

func (s *Store) GetRun(ctx context.Context, runID string) (store.RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, mode, model, instruction, answer, status, error, started_at, COALESCE(finished_at, started_at) FROM runs WHERE run_id = ?`,
		runID)
	var r store.RunRecord
	if err := row.Scan(&r.RunID, &r.Mode, &r.Model, &r.Instruction, &r.Answer, &r.Status, &r.Error, &r.StartedAt, &r.FinishedAt); err != nil {
		return store.RunRecord{}, err
	}
	return r, nil
}

func (s *Store) ListSteps(ctx context.Context, runID string) ([]store.StepRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, iteration, assistant, results, stop_reason, created_at FROM steps WHERE run_id = ? ORDER BY iteration`,
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.StepRow
	for rows.Next() {
		var st store.StepRow
		if err := rows.Scan(&st.RunID, &st.Iteration, &st.Assistant, &st.Results, &st.StopReason, &st.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
