package overlay

import "time"

// throttle collapses bursts of calls into at most one execution per window.
// The window length is read through a func on every call, so a settings
// change rebinds the rate without touching the registered callback identity.
// A window of zero or less disables throttling.
type throttle struct {
	interval func() time.Duration
	fn       func()
	now      func() time.Time
	last     time.Time
}

func newThrottle(interval func() time.Duration, fn func()) *throttle {
	return &throttle{interval: interval, fn: fn, now: time.Now}
}

func (t *throttle) call() {
	window := t.interval()
	if window <= 0 {
		t.fn()
		return
	}
	n := t.now()
	if t.last.IsZero() || n.Sub(t.last) >= window {
		t.last = n
		t.fn()
	}
}
