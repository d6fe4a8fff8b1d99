// Package debounce provides a cancellable trailing-edge debouncer driven by an injectable clock.
package debounce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultDelay is the quiet period used when none is configured.
const DefaultDelay = 300 * time.Millisecond

// Debouncer runs the most recently scheduled function once no new call has
// arrived for the configured delay. Only the last call inside a window runs.
type Debouncer struct {
	clock clockwork.Clock
	delay time.Duration

	mu      sync.Mutex
	timer   clockwork.Timer
	pending func()
	seq     uint64
	stopped bool
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithClock sets the clock used for timers. Tests pass a fake clock.
func WithClock(c clockwork.Clock) Option {
	return func(d *Debouncer) {
		if c != nil {
			d.clock = c
		}
	}
}

// New returns a Debouncer with the given delay. A non-positive delay means DefaultDelay.
func New(delay time.Duration, opts ...Option) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	d := &Debouncer{clock: clockwork.NewRealClock(), delay: delay}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Delay returns the configured quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule replaces any pending call with fn and restarts the delay.
// Calls after Stop are ignored.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = fn
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(seq) })
}

// fire runs the pending call if seq is still the latest schedule.
func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if d.stopped || seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()
	fn()
}

// Pending reports whether a call is waiting for its delay to elapse.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Cancel drops the pending call. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

func (d *Debouncer) cancelLocked() bool {
	had := d.pending != nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.seq++
	return had
}

// Flush runs the pending call now, on the caller's goroutine.
// It reports whether anything ran.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.stopped || d.pending == nil {
		d.mu.Unlock()
		return false
	}
	fn := d.pending
	d.cancelLocked()
	d.mu.Unlock()
	fn()
	return true
}

// Stop cancels the pending call and makes all later calls no-ops.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}
