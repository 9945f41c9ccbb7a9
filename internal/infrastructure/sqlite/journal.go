// Package sqlite keeps the attempt journal in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/visa-watch/internal/domain/attempt"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS attempts (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	candidate TEXT NOT NULL DEFAULT '',
	pages_advanced INTEGER NOT NULL DEFAULT 0,
	error_kind TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	next_attempt_at INTEGER NULL
);
CREATE INDEX IF NOT EXISTS idx_attempts_started_at ON attempts(started_at DESC);
`

type Journal struct {
	db *sql.DB
}

// Open creates the file and schema when missing. Timestamps are stored as
// unix nanoseconds.
func Open(ctx context.Context, path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open journal %s: %w", path, err)
	}
	// one writer; the dashboard reads through the same handle
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Record(ctx context.Context, a attempt.Attempt) error {
	var next sql.NullInt64
	if !a.NextAttemptAt.IsZero() {
		next = sql.NullInt64{Int64: a.NextAttemptAt.UnixNano(), Valid: true}
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO attempts (id, started_at, finished_at, outcome, candidate, pages_advanced, error_kind, error, next_attempt_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.StartedAt.UnixNano(), a.FinishedAt.UnixNano(), string(a.Outcome), a.Candidate, a.PagesAdvanced,
		a.ErrorKind, a.Error, next)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (j *Journal) Recent(ctx context.Context, limit int) ([]attempt.Attempt, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, outcome, candidate, pages_advanced, error_kind, error, next_attempt_at
		FROM attempts
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []attempt.Attempt
	for rows.Next() {
		var (
			a                 attempt.Attempt
			started, finished int64
			outcome           string
			next              sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &started, &finished, &outcome, &a.Candidate, &a.PagesAdvanced,
			&a.ErrorKind, &a.Error, &next); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.StartedAt = time.Unix(0, started)
		a.FinishedAt = time.Unix(0, finished)
		a.Outcome = attempt.Outcome(outcome)
		if next.Valid {
			a.NextAttemptAt = time.Unix(0, next.Int64)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}
