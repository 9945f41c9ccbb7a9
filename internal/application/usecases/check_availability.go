package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/visa-watch/internal/ctxlog"
	"github.com/example/visa-watch/internal/domain/account"
	"github.com/example/visa-watch/internal/domain/appointment"
	"github.com/example/visa-watch/internal/domain/portal"
	"github.com/example/visa-watch/internal/internaltypes"
)

const (
	selEmail        = "#user_email"
	selPassword     = "#user_password"
	selTerms        = "#policy_confirmed"
	selSubmit       = `input[type="submit"]`
	selContinue     = "ul.actions > li > a"
	selReschedule   = ".fa-calendar-minus"
	selApplicants   = `input[type="submit"]`
	selDateInput    = "#appointments_consulate_appointment_date"
	selAvailableDay = "a.ui-state-default"
	selNextMonth    = "a.ui-datepicker-next"

	DefaultStepTimeout = 30 * time.Second
)

// ErrCalendarExhausted is returned when no selectable day shows up within the
// page bound.
var ErrCalendarExhausted = errors.New("no selectable day in calendar")

// Pauses are the fixed waits between clicks. The portal ignores clicks that
// land before its scripts have bound their handlers.
type Pauses struct {
	Short time.Duration
	Long  time.Duration
}

func DefaultPauses() Pauses {
	return Pauses{Short: time.Second, Long: 2 * time.Second}
}

// CheckAvailability runs one attempt: log in, walk to the reschedule screen
// and read the earliest selectable date. It owns the browser session for the
// duration of Execute and closes it on every return path.
type CheckAvailability struct {
	Browser     portal.Browser
	Credentials account.Credentials

	LoginURL           string
	Language           string
	MultipleApplicants bool

	// MaxCalendarPages bounds forward clicks in the date picker.
	MaxCalendarPages int
	CalendarWait     time.Duration
	StepTimeout      time.Duration
	Pauses           Pauses
}

type Result struct {
	Candidate     appointment.Date
	PagesAdvanced int
}

type step struct {
	name string
	run  func(ctx context.Context, p portal.Page) error
}

func (u CheckAvailability) Execute(ctx context.Context) (Result, error) {
	if u.Browser == nil {
		return Result{}, fmt.Errorf("browser is nil")
	}
	log := ctxlog.FromContext(ctx)

	page, err := u.Browser.Open(ctx)
	if err != nil {
		return Result{}, internaltypes.Wrap("open browser", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Warn("closing browser session", "err", err)
		}
	}()

	steps := []step{
		{"navigate", u.navigate},
		{"login", u.login},
		{"continue application", u.continueApplication},
		{"reschedule screen", u.goToRescheduleScreen},
	}
	if u.MultipleApplicants {
		steps = append(steps, step{"confirm applicants", u.confirmApplicants})
	}
	steps = append(steps, step{"open date picker", u.openDatePicker})

	for _, s := range steps {
		log.Debug("attempt step", "step", s.name)
		if err := u.runStep(ctx, page, s); err != nil {
			return Result{}, internaltypes.Wrap(s.name, err)
		}
	}

	date, pages, err := FindEarliestDate(ctx, page, u.scanOptions())
	if err != nil {
		return Result{PagesAdvanced: pages}, err
	}
	return Result{Candidate: date, PagesAdvanced: pages}, nil
}

func (u CheckAvailability) runStep(ctx context.Context, p portal.Page, s step) error {
	ctx, cancel := context.WithTimeout(ctx, u.stepTimeout())
	defer cancel()
	return s.run(ctx, p)
}

func (u CheckAvailability) stepTimeout() time.Duration {
	if u.StepTimeout > 0 {
		return u.StepTimeout
	}
	return DefaultStepTimeout
}

func (u CheckAvailability) scanOptions() ScanOptions {
	return ScanOptions{
		MaxPages:     u.MaxCalendarPages,
		Wait:         u.CalendarWait,
		ClickTimeout: u.stepTimeout(),
	}
}

func (u CheckAvailability) navigate(ctx context.Context, p portal.Page) error {
	return p.Navigate(ctx, u.LoginURL)
}

func (u CheckAvailability) login(ctx context.Context, p portal.Page) error {
	if err := p.Type(ctx, selEmail, u.Credentials.Email); err != nil {
		return err
	}
	if err := p.Type(ctx, selPassword, u.Credentials.Password); err != nil {
		return err
	}
	if err := p.WaitFor(ctx, selTerms, 0); err != nil {
		return err
	}
	if err := p.Click(ctx, selTerms); err != nil {
		return err
	}
	if err := pause(ctx, u.Pauses.Short); err != nil {
		return err
	}
	if err := p.WaitFor(ctx, selSubmit, 0); err != nil {
		return err
	}
	return p.Click(ctx, selSubmit)
}

func (u CheckAvailability) continueApplication(ctx context.Context, p portal.Page) error {
	if err := p.WaitFor(ctx, selContinue, 0); err != nil {
		return err
	}
	if err := pause(ctx, u.Pauses.Long); err != nil {
		return err
	}
	return p.Click(ctx, selContinue)
}

func (u CheckAvailability) goToRescheduleScreen(ctx context.Context, p portal.Page) error {
	if err := p.WaitFor(ctx, selReschedule, 0); err != nil {
		return err
	}
	if err := pause(ctx, u.Pauses.Short); err != nil {
		return err
	}
	if err := p.Click(ctx, selReschedule); err != nil {
		return err
	}
	if err := pause(ctx, u.Pauses.Short); err != nil {
		return err
	}
	return p.ClickLink(ctx, portal.RescheduleLinkText(u.Language))
}

func (u CheckAvailability) confirmApplicants(ctx context.Context, p portal.Page) error {
	if err := p.WaitFor(ctx, selApplicants, 0); err != nil {
		return err
	}
	return p.Click(ctx, selApplicants)
}

func (u CheckAvailability) openDatePicker(ctx context.Context, p portal.Page) error {
	if err := pause(ctx, u.Pauses.Long); err != nil {
		return err
	}
	if err := p.WaitFor(ctx, selDateInput, 0); err != nil {
		return err
	}
	return p.Click(ctx, selDateInput)
}

type ScanOptions struct {
	// MaxPages is the number of "next month" clicks allowed before giving up.
	MaxPages int
	// Wait is how long each page gets to show a selectable day.
	Wait         time.Duration
	ClickTimeout time.Duration
}

// FindEarliestDate scans the open date picker forward one month at a time and
// returns the first selectable day together with the number of pages it
// advanced. The first match on a page is the earliest one on that page.
func FindEarliestDate(ctx context.Context, p portal.Page, opts ScanOptions) (appointment.Date, int, error) {
	log := ctxlog.FromContext(ctx)
	if opts.Wait <= 0 {
		opts.Wait = time.Second
	}
	if opts.ClickTimeout <= 0 {
		opts.ClickTimeout = DefaultStepTimeout
	}

	for advanced := 0; ; advanced++ {
		err := p.WaitFor(ctx, selAvailableDay, opts.Wait)
		if err == nil {
			cell, err := p.CalendarDay(ctx, selAvailableDay)
			if err != nil {
				return appointment.Date{}, advanced, internaltypes.Wrap("read date", err)
			}
			d, err := appointment.NewDate(cell.Year, time.Month(cell.Month), cell.Day)
			if err != nil {
				return appointment.Date{}, advanced, &internaltypes.AttemptError{
					Step: "read date", Kind: internaltypes.KindDecision, Err: err,
				}
			}
			return d, advanced, nil
		}
		if ctx.Err() != nil {
			return appointment.Date{}, advanced, internaltypes.Wrap("find earliest date", ctx.Err())
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			return appointment.Date{}, advanced, internaltypes.Wrap("find earliest date", err)
		}
		if advanced >= opts.MaxPages {
			return appointment.Date{}, advanced, &internaltypes.AttemptError{
				Step: "find earliest date",
				Kind: internaltypes.KindCalendarExhausted,
				Err:  fmt.Errorf("%w after %d pages", ErrCalendarExhausted, advanced),
			}
		}

		log.Debug("no selectable day on page, advancing", "page", advanced+1)
		if err := clickNext(ctx, p, opts.ClickTimeout); err != nil {
			return appointment.Date{}, advanced, internaltypes.Wrap("next month", err)
		}
	}
}

func clickNext(ctx context.Context, p portal.Page, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.WaitFor(ctx, selNextMonth, 0); err != nil {
		return err
	}
	return p.Click(ctx, selNextMonth)
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
