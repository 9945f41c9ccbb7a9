package appointment

// Decision is what the runner does with a candidate date.
type Decision int

const (
	Reschedule Decision = iota
	Alert
)

func (d Decision) String() string {
	if d == Alert {
		return "alert"
	}
	return "reschedule"
}

// Decide alerts only when candidate is strictly earlier than target at day
// granularity. An equal or later candidate, or a zero candidate, reschedules.
func Decide(target, candidate Date) Decision {
	if candidate.IsZero() || target.IsZero() {
		return Reschedule
	}
	if candidate.Before(target) {
		return Alert
	}
	return Reschedule
}
