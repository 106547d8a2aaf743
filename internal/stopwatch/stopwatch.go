// Package stopwatch measures the time spent on a problem. The elapsed
// seconds are sent with each submission.
package stopwatch

import (
	"fmt"
	"sync"
	"time"
)

type State string

const (
	Idle    State = "idle"
	Running State = "running"
	Paused  State = "paused"
)

type Stopwatch struct {
	mu      sync.Mutex
	now     func() time.Time
	state   State
	elapsed time.Duration
	since   time.Time
}

func New(now func() time.Time) *Stopwatch {
	if now == nil {
		now = time.Now
	}
	return &Stopwatch{now: now, state: Idle}
}

func (o *Stopwatch) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != Idle {
		return
	}
	o.state = Running
	o.since = o.now()
}

func (o *Stopwatch) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != Running {
		return
	}
	o.elapsed += o.now().Sub(o.since)
	o.state = Paused
}

func (o *Stopwatch) Resume() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != Paused {
		return
	}
	o.state = Running
	o.since = o.now()
}

// Toggle is the single timer button: start, then pause and resume in turn.
func (o *Stopwatch) Toggle() {
	switch o.State() {
	case Idle:
		o.Start()
	case Running:
		o.Pause()
	case Paused:
		o.Resume()
	}
}

func (o *Stopwatch) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Stopwatch) Elapsed() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == Running {
		return o.elapsed + o.now().Sub(o.since)
	}
	return o.elapsed
}

// Seconds is the elapsed time in whole seconds.
func (o *Stopwatch) Seconds() int {
	return int(o.Elapsed() / time.Second)
}

// Format renders elapsed time as HH:MM:SS.
func Format(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
