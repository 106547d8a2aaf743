// Package hint is the hint and question dialog of the problem page. Hints
// are limited to MaxHints per problem; questions are not limited.
package hint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/interactive-sql-tutor/sqltutor/internal/api"
	"github.com/interactive-sql-tutor/sqltutor/internal/domain"
	"github.com/interactive-sql-tutor/sqltutor/internal/i18n"
	debuglog "github.com/interactive-sql-tutor/sqltutor/internal/log"
	"github.com/interactive-sql-tutor/sqltutor/internal/notify"
)

const MaxHints = 3

type Tab string

const (
	TabHints     Tab = "hints"
	TabQuestions Tab = "questions"
)

var (
	ErrBusy          = errors.New("a hint request is already pending")
	ErrLimitReached  = errors.New("hint limit reached")
	ErrEmptyQuestion = errors.New("question is empty")
)

type Requester interface {
	RequestHint(ctx context.Context, prompt string) (string, error)
}

type Dialog struct {
	requester Requester
	notes     *notify.Channel

	mu        sync.Mutex
	tab       Tab
	pending   bool
	hints     []string
	questions []string
}

// View is a render-only copy of the dialog state.
type View struct {
	Tab       Tab
	Pending   bool
	Hints     []string
	Questions []string
	HintStep  int
}

func (v View) CanRequestHint() bool {
	return !v.Pending && v.HintStep < MaxHints
}

func NewDialog(requester Requester, notes *notify.Channel) *Dialog {
	return &Dialog{requester: requester, notes: notes, tab: TabHints}
}

// HintStep is the number of hints received so far.
func (o *Dialog) HintStep() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.hints)
}

// NextPrompt builds the prompt for the next hint of problem.
func (o *Dialog) NextPrompt(problem domain.Problem) string {
	o.mu.Lock()
	previous := append([]string{}, o.hints...)
	o.mu.Unlock()
	return BuildPrompt(problem, previous, len(previous))
}

// RequestHint asks for the next hint. Past the limit it publishes a warning
// and makes no request.
func (o *Dialog) RequestHint(ctx context.Context, prompt string) error {
	o.mu.Lock()
	if o.pending {
		o.mu.Unlock()
		return ErrBusy
	}
	if len(o.hints) >= MaxHints {
		o.mu.Unlock()
		o.notes.Warning(fmt.Sprintf(i18n.T("hint_limit_reached"), MaxHints))
		return ErrLimitReached
	}
	o.pending = true
	o.mu.Unlock()

	answer, err := o.requester.RequestHint(ctx, prompt)
	return o.complete(ctx, err, func() { o.hints = append(o.hints, answer) })
}

// Ask sends a free-text question through the hint endpoint.
func (o *Dialog) Ask(ctx context.Context, question string) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyQuestion
	}
	o.mu.Lock()
	if o.pending {
		o.mu.Unlock()
		return ErrBusy
	}
	o.pending = true
	o.mu.Unlock()

	answer, err := o.requester.RequestHint(ctx, question)
	return o.complete(ctx, err, func() {
		o.questions = append(o.questions, fmt.Sprintf("You: %s\nAI: %s", question, answer))
	})
}

// complete clears pending and applies a successful answer, unless the page
// that asked has gone away.
func (o *Dialog) complete(ctx context.Context, err error, apply func()) error {
	o.mu.Lock()
	o.pending = false
	if err == nil && ctx.Err() == nil {
		apply()
	}
	o.mu.Unlock()

	if ctx.Err() != nil {
		debuglog.Debug(debuglog.Detailed, "dropping hint answer, page closed\n")
		return ctx.Err()
	}
	if err != nil {
		o.notes.Error(api.Message(err))
	}
	return err
}

func (o *Dialog) SelectTab(tab Tab) {
	if tab != TabHints && tab != TabQuestions {
		return
	}
	o.mu.Lock()
	o.tab = tab
	o.mu.Unlock()
}

func (o *Dialog) History() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return View{
		Tab:       o.tab,
		Pending:   o.pending,
		Hints:     append([]string{}, o.hints...),
		Questions: append([]string{}, o.questions...),
		HintStep:  len(o.hints),
	}
}
