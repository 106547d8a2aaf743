package draft

import (
	"time"

	debuglog "github.com/interactive-sql-tutor/sqltutor/internal/log"
	"github.com/interactive-sql-tutor/sqltutor/internal/store"
)

// Saver persists the draft of one problem under store.DraftKey.
type Saver struct {
	store store.Store
	key   string
	deb   *Debouncer
}

func NewSaver(st store.Store, problemID int, delay time.Duration, clock Clock) *Saver {
	return &Saver{
		store: st,
		key:   store.DraftKey(problemID),
		deb:   NewDebouncer(delay, clock),
	}
}

// Edit records the full editor text; only the last text of a burst is written.
func (o *Saver) Edit(text string) {
	o.deb.Trigger(func() {
		if err := o.store.Set(o.key, text); err != nil {
			debuglog.Log("saving draft %s failed: %v\n", o.key, err)
			return
		}
		debuglog.Debug(debuglog.Trace, "draft %s saved (%d bytes)\n", o.key, len(text))
	})
}

// Load returns the stored draft, if any.
func (o *Saver) Load() (string, bool) {
	text, ok, err := o.store.Get(o.key)
	if err != nil {
		debuglog.Log("loading draft %s failed: %v\n", o.key, err)
		return "", false
	}
	return text, ok
}

// Close ends the editing session. Without flush a pending write is dropped,
// so an edit made inside the last quiet interval is lost.
func (o *Saver) Close(flush bool) {
	if flush {
		o.deb.FlushPending()
		return
	}
	o.deb.Cancel()
}

func (o *Saver) Pending() bool {
	return o.deb.Pending()
}
