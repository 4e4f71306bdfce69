package logic

import "time"

// Settled reports whether a raw level that has been asserted since the given
// time counts as active at now. A level that is not asserted is never active.
func Settled(asserted bool, since, now time.Time, window time.Duration) bool {
	if !asserted {
		return false
	}
	return now.Sub(since) >= window
}

// Debouncer filters chatter on a single mechanical switch.
type Debouncer struct {
	window time.Duration

	asserted bool
	// Time when the raw level was first observed asserted
	since time.Time
}

// NewDebouncer creates a debouncer with the given settle window.
// A negative window is treated as zero.
func NewDebouncer(window time.Duration) *Debouncer {
	if window < 0 {
		window = 0
	}
	return &Debouncer{window: window}
}

// Window returns the configured settle window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Update records a raw sample taken at now and returns the debounced state.
// Dropping the level resets the settle timer, so any pulse shorter than the
// window is never reported active.
func (d *Debouncer) Update(raw bool, now time.Time) bool {
	if !raw {
		d.asserted = false
		d.since = time.Time{}
		return false
	}

	if !d.asserted {
		// Rising edge, start the settle timer
		d.asserted = true
		d.since = now
	}

	return Settled(d.asserted, d.since, now, d.window)
}

// Active returns the debounced state at now without taking a new sample.
func (d *Debouncer) Active(now time.Time) bool {
	return Settled(d.asserted, d.since, now, d.window)
}
