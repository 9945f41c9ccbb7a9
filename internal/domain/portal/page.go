package portal

import (
	"context"
	"time"

	"github.com/example/visa-watch/internal/internaltypes"
)

// ErrNotFound is returned by Page implementations when a selector or link
// matches nothing.
var ErrNotFound = internaltypes.ErrNotFound

// CalendarCell is a selectable day as read from the date picker. Month is
// 1-based.
type CalendarCell struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Page drives one browser tab. A Page belongs to exactly one attempt and is
// closed by it.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// Type sends text to the element one key at a time.
	Type(ctx context.Context, selector, text string) error
	// WaitFor waits until selector is present. A timeout of zero waits as long
	// as ctx allows. Expiry yields an error wrapping context.DeadlineExceeded.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	Click(ctx context.Context, selector string) error
	// ClickLink clicks the first anchor whose text contains text.
	ClickLink(ctx context.Context, text string) error
	// CalendarDay reads the cell for the first element matching selector.
	CalendarDay(ctx context.Context, selector string) (CalendarCell, error)
	Close() error
}

// Browser starts a fresh session per attempt.
type Browser interface {
	Name() string
	Open(ctx context.Context) (Page, error)
}
