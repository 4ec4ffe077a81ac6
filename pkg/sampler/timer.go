package sampler

// Elapsed returns the milliseconds between since and now on a free-running
// 32-bit counter. The subtraction is modular, so a counter that wrapped past
// zero between the two readings still yields the true distance; wraparound is
// a normal condition here, not an error.
func Elapsed(now, since uint32) uint32 {
	return now - since
}

// Timer gates a periodic action on a millisecond counter without blocking.
// The first Tick always fires. After that Tick fires only once Interval
// milliseconds have passed since the previous fire, so consecutive fires are
// never closer than Interval.
type Timer struct {
	Interval uint32

	last  uint32
	fired bool
}

// NewTimer creates a timer firing at most once every intervalMs.
func NewTimer(intervalMs uint32) Timer {
	return Timer{Interval: intervalMs}
}

// Tick reports whether the interval has elapsed at now. The reference point
// moves to now only when it returns true.
func (t *Timer) Tick(now uint32) bool {
	if t.fired && Elapsed(now, t.last) < t.Interval {
		return false
	}
	t.last = now
	t.fired = true
	return true
}

// Last returns the counter value of the previous fire and whether there was one.
func (t *Timer) Last() (uint32, bool) {
	return t.last, t.fired
}
