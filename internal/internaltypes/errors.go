package internaltypes

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// Kind classifies an attempt failure. The retry policy is the same for every
// kind; it exists so logs and the journal can tell them apart.
type Kind string

const (
	KindNavigation        Kind = "navigation"
	KindLookup            Kind = "lookup"
	KindDecision          Kind = "decision"
	KindCalendarExhausted Kind = "calendar_exhausted"
)

// AttemptError is the only error type the attempt sequence returns.
type AttemptError struct {
	Step string
	Kind Kind
	Err  error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Step, e.Kind, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// Wrap tags err with the step it happened in. Errors that are already an
// AttemptError keep their original step and kind.
func Wrap(step string, err error) error {
	if err == nil {
		return nil
	}
	var ae *AttemptError
	if errors.As(err, &ae) {
		return err
	}
	return &AttemptError{Step: step, Kind: classify(err), Err: err}
}

// KindOf reports the kind of err. Anything unclassified counts as navigation.
func KindOf(err error) Kind {
	var ae *AttemptError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return classify(err)
}

// classify maps lookup misses to KindLookup; timeouts and everything else are
// navigation failures.
func classify(err error) Kind {
	if errors.Is(err, ErrNotFound) {
		return KindLookup
	}
	return KindNavigation
}
