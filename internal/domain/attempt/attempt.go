package attempt

import (
	"context"
	"time"
)

type Outcome string

const (
	OutcomeBetterDate Outcome = "better_date"
	OutcomeNotBetter  Outcome = "not_better"
	OutcomeFailed     Outcome = "failed"
)

// Attempt is the journal entry for one login-through-date-check run.
type Attempt struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    Outcome

	// Candidate is YYYY-MM-DD, empty when no date was read.
	Candidate     string
	PagesAdvanced int

	ErrorKind string
	Error     string

	// NextAttemptAt is zero after a better date was found.
	NextAttemptAt time.Time
}

func (a Attempt) Duration() time.Duration {
	return a.FinishedAt.Sub(a.StartedAt)
}

// Journal records attempts. Recent returns newest first.
type Journal interface {
	Record(ctx context.Context, a Attempt) error
	Recent(ctx context.Context, limit int) ([]Attempt, error)
	Close() error
}
