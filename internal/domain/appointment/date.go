package appointment

import (
	"fmt"
	"strings"
	"time"
)

const layout = "2006-01-02"

// Date is a calendar day without time of day or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate validates the triple. Overflowing values such as February 30 are
// rejected instead of normalised.
func NewDate(year int, month time.Month, day int) (Date, error) {
	if month < time.January || month > time.December {
		return Date{}, fmt.Errorf("invalid month %d", month)
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return Date{}, fmt.Errorf("invalid date %04d-%02d-%02d", year, int(month), day)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// accepted REGISTERED_DATE layouts, most specific last
var parseLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	layout,
}

// ParseDate reads an ISO-like date. Any time of day is dropped; an offset, if
// present, is ignored rather than converted so the written day is kept.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, l := range parseLayouts {
		t, err := time.Parse(l, s)
		if err == nil {
			return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
}

// String formats as YYYY-MM-DD with zero-padded month and day.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether d is at least one day earlier than o.
func (d Date) Before(o Date) bool {
	return d.Time().Before(o.Time())
}

// DaysUntil returns the whole days from d to o, negative when o is earlier.
func (d Date) DaysUntil(o Date) int {
	return int(o.Time().Sub(d.Time()).Hours() / 24)
}
