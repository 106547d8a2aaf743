package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/interactive-sql-tutor/sqltutor/internal/api"
	"github.com/interactive-sql-tutor/sqltutor/internal/domain"
	"github.com/interactive-sql-tutor/sqltutor/internal/draft"
	"github.com/interactive-sql-tutor/sqltutor/internal/hint"
	"github.com/interactive-sql-tutor/sqltutor/internal/i18n"
	debuglog "github.com/interactive-sql-tutor/sqltutor/internal/log"
	"github.com/interactive-sql-tutor/sqltutor/internal/stopwatch"
)

const (
	problemStateKey = "problem"

	tabDescription = "description"
	tabAttempts    = "attempts"
)

// problemState is everything the problem page keeps while it is open.
type problemState struct {
	problem domain.Problem
	draft   *draft.Saver
	dialog  *hint.Dialog
	timer   *stopwatch.Stopwatch

	mu         sync.Mutex
	solution   string
	dialogOpen bool
}

func (p *problemState) setSolution(text string) {
	p.mu.Lock()
	p.solution = text
	p.mu.Unlock()
	p.draft.Edit(text)
}

type problemView struct {
	Problem    domain.Problem
	Prev, Next int
	Tab        string
	Schemas    []Table
	Inputs     []Table
	Output     Table
	Attempts   []domain.Attempt
	Solution   string
	Timer      stopwatch.State
	Elapsed    int
	DialogOpen bool
	Dialog     hint.View
	MaxHints   int
	HintsLeft  int
	LoggedIn   bool
}

func problemPath(id int) string {
	return fmt.Sprintf("/problems/%d", id)
}

func (o *Server) problemID(c *gin.Context) (int, bool) {
	id, err := domain.ParseProblemID(c.Param("id"))
	if err != nil {
		o.notFound(c)
		return 0, false
	}
	return id, true
}

// openProblem returns the state of the open problem page, loading the
// problem and the saved draft on first visit.
func (o *Server) openProblem(lt *Lifetime, id int) (*problemState, error) {
	if p, ok := lt.Value(problemStateKey).(*problemState); ok {
		return p, nil
	}

	problem, err := o.app.API.GetProblem(lt.Context(), id)
	if err != nil {
		return nil, err
	}
	if !lt.Alive() {
		return nil, lt.Context().Err()
	}

	p := &problemState{
		problem: problem,
		draft:   draft.NewSaver(o.app.Store, id, o.app.Config.DraftDelay, nil),
		dialog:  hint.NewDialog(o.app.API, o.app.Notes),
		timer:   stopwatch.New(o.now),
	}
	if text, ok := p.draft.Load(); ok {
		p.solution = text
	}
	flush := o.app.Config.FlushDraftsOnLeave
	lt.OnClose(func() { p.draft.Close(flush) })
	lt.SetValue(problemStateKey, p)
	return p, nil
}

// currentProblem finds the open problem page for a POST, opening it if the
// browser posted from a page the server no longer tracks.
func (o *Server) currentProblem(c *gin.Context) (*problemState, *Lifetime, int, bool) {
	id, ok := o.problemID(c)
	if !ok {
		return nil, nil, 0, false
	}
	lt := o.lifetime(c, problemPath(id))
	p, err := o.openProblem(lt, id)
	if err != nil {
		o.problemLoadFailed(c, err)
		return nil, nil, 0, false
	}
	return p, lt, id, true
}

func (o *Server) problemLoadFailed(c *gin.Context, err error) {
	if !errors.Is(err, context.Canceled) {
		o.app.Notes.Error(api.Message(err))
	}
	o.redirect(c, "/")
}

func (o *Server) problemPage(c *gin.Context) {
	id, ok := o.problemID(c)
	if !ok {
		return
	}
	lt := o.lifetime(c, problemPath(id))
	p, err := o.openProblem(lt, id)
	if err != nil {
		o.problemLoadFailed(c, err)
		return
	}

	s := o.app.Session.Snapshot()
	v := problemView{
		Problem:  p.problem,
		Tab:      tabDescription,
		Timer:    p.timer.State(),
		Elapsed:  p.timer.Seconds(),
		Dialog:   p.dialog.History(),
		MaxHints: hint.MaxHints,
		LoggedIn: s.IsLoggedIn,
	}
	v.Prev, v.Next = domain.PrevNext(id)
	v.HintsLeft = hint.MaxHints - v.Dialog.HintStep
	p.mu.Lock()
	v.Solution = p.solution
	v.DialogOpen = p.dialogOpen
	p.mu.Unlock()

	for _, t := range p.problem.Tables {
		table := Table{Name: "Schema: " + t.TableName, Header: []string{"Column Name", "Type", "Description"}}
		for _, col := range t.Columns {
			table.Rows = append(table.Rows, []string{col.Name, col.Type, col.Description})
		}
		v.Schemas = append(v.Schemas, table)
	}
	for name, rows := range p.problem.InputData {
		v.Inputs = append(v.Inputs, rowsTable("Example input: "+name, rows))
	}
	sortTables(v.Inputs)
	v.Output = rowsTable("Example output", p.problem.ExpectedOutput)

	if c.Query("tab") == tabAttempts {
		v.Tab = tabAttempts
		if s.IsLoggedIn {
			attempts, err := o.app.API.AttemptHistory(lt.Context(), id)
			if err != nil {
				o.app.Notes.Error(api.Message(err))
			} else {
				v.Attempts = attempts
			}
		}
	}

	o.render(c, http.StatusOK, "problem", p.problem.Title, navNone, v)
}

// saveDraft receives editor text as the user types.
func (o *Server) saveDraft(c *gin.Context) {
	p, _, _, ok := o.currentProblem(c)
	if !ok {
		return
	}
	p.setSolution(c.PostForm("solution"))
	c.Status(http.StatusNoContent)
}

func (o *Server) toggleDialog(c *gin.Context) {
	p, _, id, ok := o.currentProblem(c)
	if !ok {
		return
	}
	p.mu.Lock()
	p.dialogOpen = c.PostForm("open") == "true"
	p.mu.Unlock()
	if tab := c.PostForm("tab"); tab != "" {
		p.dialog.SelectTab(hint.Tab(tab))
	}
	o.redirect(c, problemPath(id))
}

func (o *Server) requestHint(c *gin.Context) {
	p, lt, id, ok := o.currentProblem(c)
	if !ok {
		return
	}
	p.mu.Lock()
	p.dialogOpen = true
	p.mu.Unlock()

	err := p.dialog.RequestHint(lt.Context(), p.dialog.NextPrompt(p.problem))
	if err != nil {
		debuglog.Debug(debuglog.Detailed, "hint request: %v\n", err)
	}
	o.redirect(c, problemPath(id))
}

func (o *Server) askQuestion(c *gin.Context) {
	p, lt, id, ok := o.currentProblem(c)
	if !ok {
		return
	}
	p.dialog.SelectTab(hint.TabQuestions)
	if err := p.dialog.Ask(lt.Context(), c.PostForm("question")); err != nil {
		debuglog.Debug(debuglog.Detailed, "question: %v\n", err)
	}
	o.redirect(c, problemPath(id))
}

func (o *Server) toggleTimer(c *gin.Context) {
	p, _, id, ok := o.currentProblem(c)
	if !ok {
		return
	}
	p.timer.Toggle()
	o.redirect(c, problemPath(id))
}

// submit sends the solution with the hints used and the elapsed time.
func (o *Server) submit(c *gin.Context) {
	p, lt, id, ok := o.currentProblem(c)
	if !ok {
		return
	}
	if solution, posted := c.GetPostForm("solution"); posted {
		p.setSolution(solution)
	}

	if !o.app.Session.LoggedIn() {
		o.app.Notes.Warning(i18n.T("guard_not_logged_in"))
		o.redirect(c, "/login")
		return
	}

	p.timer.Pause()
	p.mu.Lock()
	req := api.AttemptRequest{
		UserQuery: p.solution,
		HintsUsed: p.dialog.HintStep(),
		TimeTaken: p.timer.Seconds(),
	}
	p.mu.Unlock()

	result, err := o.app.API.SubmitAttempt(lt.Context(), id, req)
	switch {
	case !lt.Alive():
		c.Status(http.StatusNoContent)
		return
	case err != nil:
		o.app.Notes.Error(api.Message(err))
	case !result.Passed():
		o.app.Notes.Error(result.Feedback)
	default:
		o.app.Notes.Success(i18n.T("submit_passed"))
	}
	o.redirect(c, problemPath(id))
}
