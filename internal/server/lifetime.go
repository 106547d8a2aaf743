package server

import (
	"context"
	"sync"

	"github.com/google/uuid"

	debuglog "github.com/interactive-sql-tutor/sqltutor/internal/log"
)

// Lifetime spans one visit of one page. Navigating elsewhere cancels its
// context and runs its close hooks; requests still in flight for the page see
// the cancellation and leave page state alone.
type Lifetime struct {
	ID   uuid.UUID
	Path string

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	values  map[string]any
	onClose []func()
}

func (o *Lifetime) Context() context.Context {
	return o.ctx
}

func (o *Lifetime) Alive() bool {
	return o.ctx.Err() == nil
}

func (o *Lifetime) Value(key string) any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.values[key]
}

func (o *Lifetime) SetValue(key string, v any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.values[key] = v
}

// OnClose registers fn to run when the page is left.
func (o *Lifetime) OnClose(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onClose = append(o.onClose, fn)
}

func (o *Lifetime) close() {
	o.cancel()
	o.mu.Lock()
	hooks := o.onClose
	o.onClose = nil
	o.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// Navigator tracks the single open page, like one browser tab.
type Navigator struct {
	mu      sync.Mutex
	base    context.Context
	current *Lifetime
}

func NewNavigator(base context.Context) *Navigator {
	if base == nil {
		base = context.Background()
	}
	return &Navigator{base: base}
}

// Enter makes path the open page. Re-entering the open page keeps its
// lifetime; any other path closes it first.
func (o *Navigator) Enter(path string) *Lifetime {
	o.mu.Lock()
	prev := o.current
	if prev != nil && prev.Path == path && prev.Alive() {
		o.mu.Unlock()
		return prev
	}

	ctx, cancel := context.WithCancel(o.base)
	next := &Lifetime{
		ID:     uuid.New(),
		Path:   path,
		ctx:    ctx,
		cancel: cancel,
		values: make(map[string]any),
	}
	o.current = next
	o.mu.Unlock()

	if prev != nil {
		debuglog.Debug(debuglog.Trace, "leaving %s for %s\n", prev.Path, path)
		prev.close()
	}
	return next
}

func (o *Navigator) Current() *Lifetime {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Close leaves the open page, if any.
func (o *Navigator) Close() {
	o.mu.Lock()
	prev := o.current
	o.current = nil
	o.mu.Unlock()
	if prev != nil {
		prev.close()
	}
}
