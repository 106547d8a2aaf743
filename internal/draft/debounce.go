// Package draft keeps unsaved solutions across reloads. Edits are coalesced
// by a Debouncer so storage sees at most one write per quiet interval.
package draft

import (
	"sync"
	"time"
)

const DefaultDelay = 500 * time.Millisecond

type Timer interface {
	Stop() bool
}

// Clock schedules callbacks; tests swap in a manual one.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

var SystemClock Clock = realClock{}

// Debouncer runs the most recently triggered func once delay has passed
// without another Trigger.
type Debouncer struct {
	delay time.Duration
	clock Clock

	mu      sync.Mutex
	timer   Timer
	pending func()
	gen     uint64
}

func NewDebouncer(delay time.Duration, clock Clock) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Debouncer{delay: delay, clock: clock}
}

func (o *Debouncer) Trigger(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopLocked()
	o.pending = fn
	gen := o.gen
	o.timer = o.clock.AfterFunc(o.delay, func() { o.fire(gen) })
}

func (o *Debouncer) fire(gen uint64) {
	o.mu.Lock()
	if gen != o.gen || o.pending == nil {
		o.mu.Unlock()
		return
	}
	fn := o.pending
	o.pending = nil
	o.timer = nil
	o.gen++
	o.mu.Unlock()

	fn()
}

// Cancel drops the pending call, if any.
func (o *Debouncer) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopLocked()
	o.pending = nil
}

// FlushPending runs the pending call now. It reports whether there was one.
func (o *Debouncer) FlushPending() bool {
	o.mu.Lock()
	fn := o.pending
	o.stopLocked()
	o.pending = nil
	o.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

func (o *Debouncer) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending != nil
}

// stopLocked invalidates the armed timer; a callback that already fired
// sees a stale generation and does nothing.
func (o *Debouncer) stopLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.gen++
}
