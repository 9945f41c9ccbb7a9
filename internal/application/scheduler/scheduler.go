package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/example/visa-watch/internal/application/usecases"
	"github.com/example/visa-watch/internal/ctxlog"
	"github.com/example/visa-watch/internal/domain/appointment"
	"github.com/example/visa-watch/internal/domain/attempt"
	"github.com/example/visa-watch/internal/internaltypes"
	"github.com/google/uuid"
)

type State string

const (
	StateIdle              State = "idle"
	StateRunning           State = "running"
	StateSucceededAlerting State = "succeeded_alerting"
	StateFailedWaiting     State = "failed_waiting"
)

// Attempter runs one attempt. usecases.CheckAvailability implements it.
type Attempter interface {
	Execute(ctx context.Context) (usecases.Result, error)
}

// Alarm sounds until ctx is cancelled.
type Alarm interface {
	Loop(ctx context.Context) error
}

// Status is a point-in-time copy of the runner's progress.
type Status struct {
	State         State
	Target        string
	Attempts      int
	LastCandidate string
	LastErrorKind string
	LastError     string
	LastAttemptAt time.Time
	NextAttemptAt time.Time
}

// Runner drives attempts one after another until a candidate beats Target.
// Attempts never overlap: the next timer is armed only after Attempt.Execute
// has returned, and Execute closes its browser session before returning.
type Runner struct {
	Attempt  Attempter
	Alarm    Alarm
	Journal  attempt.Journal
	Target   appointment.Date
	Interval Interval

	// seams for tests
	After func(time.Duration) <-chan time.Time
	Now   func() time.Time

	// RemindEvery repeats the success log line when the alarm cannot play.
	RemindEvery time.Duration

	mu     sync.Mutex
	status Status
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.status
	if s.State == "" {
		s.State = StateIdle
	}
	s.Target = r.Target.String()
	return s
}

func (r *Runner) update(fn func(s *Status)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.status)
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) after(d time.Duration) <-chan time.Time {
	if r.After != nil {
		return r.After(d)
	}
	return time.After(d)
}

// Run blocks until a better date is found and the alarm stops, or until ctx
// is cancelled. It returns ctx.Err() in both cases.
func (r *Runner) Run(ctx context.Context) error {
	if r.Attempt == nil {
		return errors.New("scheduler: attempt is nil")
	}
	log := ctxlog.FromContext(ctx)

	for {
		a, decision, candidate := r.runAttempt(ctx)

		if decision == appointment.Alert {
			r.record(ctx, a)
			r.update(func(s *Status) {
				s.State = StateSucceededAlerting
				s.NextAttemptAt = time.Time{}
			})
			log.Info("!!! found a better date, hurry up !!!", "candidate", candidate.String(), "registered", r.Target.String())
			return r.alert(ctx, candidate)
		}
		if err := ctx.Err(); err != nil {
			r.record(ctx, a)
			r.update(func(s *Status) { s.State = StateIdle })
			return err
		}

		wait := r.Interval.Next()
		next := r.now().Add(wait)
		a.NextAttemptAt = next
		r.record(ctx, a)
		r.update(func(s *Status) {
			s.State = StateFailedWaiting
			s.NextAttemptAt = next
		})
		log.Info("retry scheduled", "in", wait.String(), "at", next.Format(time.DateTime))

		select {
		case <-ctx.Done():
			r.update(func(s *Status) {
				s.State = StateIdle
				s.NextAttemptAt = time.Time{}
			})
			return ctx.Err()
		case <-r.after(wait):
		}
	}
}

// runAttempt executes one attempt and turns its result into a journal entry
// and a decision. Failures always decide Reschedule.
func (r *Runner) runAttempt(ctx context.Context) (attempt.Attempt, appointment.Decision, appointment.Date) {
	log := ctxlog.FromContext(ctx)

	started := r.now()
	r.update(func(s *Status) {
		s.State = StateRunning
		s.Attempts++
		s.LastAttemptAt = started
		s.NextAttemptAt = time.Time{}
	})
	id := uuid.NewString()
	log.Info("starting a fresh session", "attempt_id", id)

	res, err := r.Attempt.Execute(ctx)
	a := attempt.Attempt{
		ID:            id,
		StartedAt:     started,
		FinishedAt:    r.now(),
		PagesAdvanced: res.PagesAdvanced,
	}

	if err != nil {
		kind := internaltypes.KindOf(err)
		a.Outcome = attempt.OutcomeFailed
		a.ErrorKind = string(kind)
		a.Error = err.Error()
		r.update(func(s *Status) {
			s.LastErrorKind = string(kind)
			s.LastError = err.Error()
		})
		log.Error("attempt failed", "kind", kind, "err", err)
		return a, appointment.Reschedule, appointment.Date{}
	}

	a.Candidate = res.Candidate.String()
	r.update(func(s *Status) {
		s.LastCandidate = a.Candidate
		s.LastErrorKind = ""
		s.LastError = ""
	})

	decision := appointment.Decide(r.Target, res.Candidate)
	if decision == appointment.Alert {
		a.Outcome = attempt.OutcomeBetterDate
	} else {
		a.Outcome = attempt.OutcomeNotBetter
		log.Info("next available date is not earlier than the registered one",
			"candidate", a.Candidate, "registered", r.Target.String(), "pages", res.PagesAdvanced)
	}
	return a, decision, res.Candidate
}

func (r *Runner) record(ctx context.Context, a attempt.Attempt) {
	if r.Journal == nil {
		return
	}
	// the attempt itself may have been cut short by ctx; the record should
	// still land
	if err := r.Journal.Record(context.WithoutCancel(ctx), a); err != nil {
		ctxlog.FromContext(ctx).Warn("journal record failed", "attempt_id", a.ID, "err", err)
	}
}

// alert sounds the alarm until ctx ends. If the alarm cannot play, the
// success line is logged again every RemindEvery instead.
func (r *Runner) alert(ctx context.Context, candidate appointment.Date) error {
	log := ctxlog.FromContext(ctx)
	if r.Alarm != nil {
		err := r.Alarm.Loop(ctx)
		if err == nil || ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error("alarm failed", "err", err)
	}

	every := r.RemindEvery
	if every <= 0 {
		every = time.Minute
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.after(every):
			log.Info("!!! found a better date, hurry up !!!", "candidate", candidate.String(), "registered", r.Target.String())
		}
	}
}
