package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/example/visa-watch/internal/domain/attempt"
)

type Querier interface {
	Conn
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

type AttemptRepo struct {
	db    Querier
	close func()
}

func NewAttemptRepo(db Querier) *AttemptRepo { return &AttemptRepo{db: db} }

// OpenJournal connects, migrates and returns a journal that owns the pool.
func OpenJournal(ctx context.Context, dsn string) (*AttemptRepo, error) {
	d, err := Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := d.Ping(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}
	if err := Up(ctx, d); err != nil {
		d.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &AttemptRepo{db: d, close: d.Close}, nil
}

func (r *AttemptRepo) Record(ctx context.Context, a attempt.Attempt) error {
	return r.db.Exec(ctx, `
		INSERT INTO attempts (id, started_at, finished_at, outcome, candidate, pages_advanced, error_kind, error, next_attempt_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, a.ID, a.StartedAt.UTC(), a.FinishedAt.UTC(), string(a.Outcome), a.Candidate, a.PagesAdvanced,
		a.ErrorKind, a.Error, nullTime(a.NextAttemptAt))
}

func (r *AttemptRepo) Recent(ctx context.Context, limit int) ([]attempt.Attempt, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, started_at, finished_at, outcome, candidate, pages_advanced, error_kind, error, next_attempt_at
		FROM attempts ORDER BY started_at DESC, id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []attempt.Attempt
	for rows.Next() {
		var (
			a       attempt.Attempt
			outcome string
			next    *time.Time
		)
		if err := rows.Scan(&a.ID, &a.StartedAt, &a.FinishedAt, &outcome, &a.Candidate, &a.PagesAdvanced,
			&a.ErrorKind, &a.Error, &next); err != nil {
			return nil, err
		}
		a.Outcome = attempt.Outcome(outcome)
		if next != nil {
			a.NextAttemptAt = *next
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AttemptRepo) Close() error {
	if r.close != nil {
		r.close()
	}
	return nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
