// Package notify holds the single user-facing status message of the client.
//
// Publishing replaces the current notification; there is no queue, so a
// second publish before the banner is rendered discards the first.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

type Notification struct {
	ID      uuid.UUID `json:"id"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Channel struct {
	// deliver serializes publishes so subscribers see them in the order
	// Current reports them.
	deliver sync.Mutex

	mu          sync.Mutex
	current     *Notification
	subscribers map[int]func(Notification)
	nextSub     int
	now         func() time.Time
}

func NewChannel() *Channel {
	return &Channel{
		subscribers: make(map[int]func(Notification)),
		now:         time.Now,
	}
}

// Publish makes (kind, message) the active notification and hands it to every
// subscriber before returning.
func (o *Channel) Publish(kind Kind, message string) Notification {
	n := Notification{
		ID:      uuid.New(),
		Kind:    kind,
		Message: message,
		At:      o.now(),
	}

	o.deliver.Lock()
	defer o.deliver.Unlock()

	o.mu.Lock()
	o.current = &n
	subs := make([]func(Notification), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
	return n
}

func (o *Channel) Info(message string) Notification    { return o.Publish(KindInfo, message) }
func (o *Channel) Success(message string) Notification { return o.Publish(KindSuccess, message) }
func (o *Channel) Warning(message string) Notification { return o.Publish(KindWarning, message) }
func (o *Channel) Error(message string) Notification   { return o.Publish(KindError, message) }

func (o *Channel) Current() (Notification, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return Notification{}, false
	}
	return *o.current, true
}

func (o *Channel) Dismiss() {
	o.mu.Lock()
	o.current = nil
	o.mu.Unlock()
}

// Take returns the active notification and dismisses it; pages call it once
// per render so a banner is shown exactly once.
func (o *Channel) Take() (Notification, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return Notification{}, false
	}
	n := *o.current
	o.current = nil
	return n, true
}

// Subscribe registers fn for every later publish. The returned func removes it.
// fn runs inside Publish and must not publish itself.
func (o *Channel) Subscribe(fn func(Notification)) (cancel func()) {
	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subscribers[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subscribers, id)
			o.mu.Unlock()
		})
	}
}
