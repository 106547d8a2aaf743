package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/interactive-sql-tutor/sqltutor/internal/domain"
	"github.com/interactive-sql-tutor/sqltutor/internal/i18n"
	debuglog "github.com/interactive-sql-tutor/sqltutor/internal/log"
	"github.com/interactive-sql-tutor/sqltutor/internal/markdown"
	"github.com/interactive-sql-tutor/sqltutor/internal/notify"
	"github.com/interactive-sql-tutor/sqltutor/internal/session"
	"github.com/interactive-sql-tutor/sqltutor/internal/stopwatch"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Navbar tabs.
const (
	navNone = iota - 1
	navDashboard
	navProblems
	navInbox
	navProfile
)

type view struct {
	Title   string
	Path    string
	Nav     int
	Session session.State
	Notice  *notify.Notification
	Page    any
}

// Table is the generic titled grid used for schemas, examples and results.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

func rowsTable(name string, rows domain.Rows) Table {
	t := Table{Name: name}
	for _, cell := range rows.Header() {
		t.Header = append(t.Header, domain.CellString(cell))
	}
	t.Rows = stringRows(rows.Body())
	return t
}

func sortTables(tables []Table) {
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
}

func stringRows(rows [][]any) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, domain.CellString(cell))
		}
		out = append(out, cells)
	}
	return out
}

var funcs = template.FuncMap{
	"t":          i18n.T,
	"acceptance": domain.FormatAcceptance,
	"clock":      stopwatch.Format,
	"inc":        func(i int) int { return i + 1 },
	"difficultyClass": func(level string) string {
		switch level {
		case "Easy":
			return "easy"
		case "Medium":
			return "medium"
		}
		return "hard"
	},
	"markdown": func(src string) template.HTML {
		out, err := markdown.ToHTML(src)
		if err != nil {
			return template.HTML(template.HTMLEscapeString(src))
		}
		return template.HTML(out)
	},
}

// mustParsePages pairs every page template with the shared layout.
func mustParsePages() map[string]*template.Template {
	names, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		panic(err)
	}
	pages := make(map[string]*template.Template)
	for _, name := range names {
		base := strings.TrimPrefix(name, "templates/")
		if base == "layout.html" || base == "partials.html" {
			continue
		}
		pages[strings.TrimSuffix(base, ".html")] = template.Must(
			template.New(base).Funcs(funcs).ParseFS(templatesFS,
				"templates/layout.html", "templates/partials.html", name),
		)
	}
	return pages
}

// render writes a full page. The active notification is consumed, so each
// banner is shown once.
func (o *Server) render(c *gin.Context, status int, page, title string, nav int, data any) {
	tmpl, ok := o.pages[page]
	if !ok {
		c.String(http.StatusInternalServerError, "unknown page %q", page)
		return
	}

	v := view{
		Title:   title,
		Path:    c.Request.URL.Path,
		Nav:     nav,
		Session: o.app.Session.Snapshot(),
		Page:    data,
	}
	if n, ok := o.app.Notes.Take(); ok {
		v.Notice = &n
	}

	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(c.Writer, "layout", v); err != nil {
		debuglog.Log("rendering %s failed: %v\n", page, err)
	}
}

func (o *Server) redirect(c *gin.Context, to string) {
	c.Redirect(http.StatusSeeOther, to)
}
