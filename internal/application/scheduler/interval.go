package scheduler

import (
	"math"
	"math/rand/v2"
	"time"
)

// Interval is the retry policy: base minutes with up to one minute of jitter
// either side so attempts do not land on a fixed period.
type Interval struct {
	BaseMinutes int
	// Rand returns a value in [0, 1). Defaults to math/rand/v2.
	Rand func() float64
}

func (i Interval) Next() time.Duration {
	r := i.Rand
	if r == nil {
		r = rand.Float64
	}
	return JitteredInterval(i.BaseMinutes, r())
}

// JitteredInterval returns round(base - 1 + 2u) minutes for u in [0, 1),
// which always falls within [base-1, base+1] minutes.
func JitteredInterval(baseMinutes int, u float64) time.Duration {
	if u < 0 {
		u = 0
	}
	if u >= 1 {
		u = math.Nextafter(1, 0)
	}
	minutes := math.Round(float64(baseMinutes) - 1 + u*2)
	if minutes < 0 {
		minutes = 0
	}
	return time.Duration(minutes) * time.Minute
}
