// Package memory is the journal used when no database is configured.
package memory

import (
	"context"
	"sync"

	"github.com/example/visa-watch/internal/domain/attempt"
)

const DefaultCapacity = 100

// Journal keeps the last Capacity attempts in a ring.
type Journal struct {
	mu   sync.Mutex
	buf  []attempt.Attempt
	next int
	full bool
}

func New(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Journal{buf: make([]attempt.Attempt, capacity)}
}

func (j *Journal) Record(ctx context.Context, a attempt.Attempt) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.buf[j.next] = a
	j.next = (j.next + 1) % len(j.buf)
	if j.next == 0 {
		j.full = true
	}
	return nil
}

func (j *Journal) Recent(ctx context.Context, limit int) ([]attempt.Attempt, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := j.next
	if j.full {
		n = len(j.buf)
	}
	limit = min(limit, n)
	if limit <= 0 {
		return nil, nil
	}
	out := make([]attempt.Attempt, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (j.next - i + len(j.buf)) % len(j.buf)
		out = append(out, j.buf[idx])
	}
	return out, nil
}

func (j *Journal) Close() error { return nil }
