// Package inbox is the local message list shown on the inbox page. Messages
// live in memory for the lifetime of the process.
package inbox

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// PreviewLength is how much of a message the list shows.
const PreviewLength = 100

type Message struct {
	ID        uuid.UUID
	From      string
	Content   string
	IsRead    bool
	Timestamp time.Time
}

// Preview shortens Content to PreviewLength characters plus "...".
func (m Message) Preview() string {
	runes := []rune(m.Content)
	if len(runes) <= PreviewLength {
		return m.Content
	}
	return string(runes[:PreviewLength]) + "..."
}

type Inbox struct {
	mu       sync.Mutex
	messages []Message
	now      func() time.Time
}

func New(seed ...Message) *Inbox {
	return &Inbox{messages: append([]Message{}, seed...), now: time.Now}
}

// Welcome is the message a fresh inbox starts with.
func Welcome(at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		From:      "SQL Tutor",
		Content:   "Welcome! Pick a problem from the Problems page, start the timer and submit your query when you are ready. Use the bulb button for up to three hints per problem.",
		Timestamp: at,
	}
}

func (o *Inbox) Add(from, content string) Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	m := Message{ID: uuid.New(), From: from, Content: content, Timestamp: o.now()}
	o.messages = append(o.messages, m)
	return m
}

// List returns the messages newest first.
func (o *Inbox) List() []Message {
	o.mu.Lock()
	out := append([]Message{}, o.messages...)
	o.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (o *Inbox) UnreadCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return lo.CountBy(o.messages, func(m Message) bool { return !m.IsRead })
}

func (o *Inbox) MarkRead(id uuid.UUID) bool   { return o.setRead(id, true) }
func (o *Inbox) MarkUnread(id uuid.UUID) bool { return o.setRead(id, false) }

func (o *Inbox) setRead(id uuid.UUID, read bool) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.messages {
		if o.messages[i].ID == id {
			o.messages[i].IsRead = read
			return true
		}
	}
	return false
}

func (o *Inbox) MarkAllRead() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.messages {
		o.messages[i].IsRead = true
	}
}

func (o *Inbox) Delete(id uuid.UUID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	before := len(o.messages)
	o.messages = lo.Reject(o.messages, func(m Message, _ int) bool { return m.ID == id })
	return len(o.messages) != before
}
