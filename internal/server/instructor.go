package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/interactive-sql-tutor/sqltutor/internal/api"
	"github.com/interactive-sql-tutor/sqltutor/internal/domain"
	"github.com/interactive-sql-tutor/sqltutor/internal/i18n"
	"github.com/interactive-sql-tutor/sqltutor/internal/markdown"
	"github.com/interactive-sql-tutor/sqltutor/internal/upload"
)

const (
	analyticsPath     = "/analytics"
	analyticsStateKey = "analytics"
	maxUploadBytes    = 8 << 20
)

func (o *Server) addProblemPage(c *gin.Context) {
	o.render(c, http.StatusOK, "add_problem", "Add Problem", navNone, nil)
}

// addProblem forwards the three uploaded files. Missing files are reported
// without contacting the server.
func (o *Server) addProblem(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	var bundle upload.Bundle
	var err error
	for _, target := range []struct {
		field string
		dst   **upload.File
	}{
		{upload.FieldMetadata, &bundle.Metadata},
		{upload.FieldProblem, &bundle.Problem},
		{upload.FieldSolution, &bundle.Solution},
	} {
		if *target.dst, err = formFile(c, target.field); err != nil {
			o.app.Notes.Error(err.Error())
			o.redirect(c, "/add-problem")
			return
		}
	}

	if err = bundle.CheckComplete(); err != nil {
		o.app.Notes.Error(i18n.T("upload_files_missing"))
		o.redirect(c, "/add-problem")
		return
	}
	if err = bundle.Check(); err != nil {
		o.app.Notes.Error(err.Error())
		o.redirect(c, "/add-problem")
		return
	}

	if err = o.app.API.UploadProblem(c.Request.Context(), bundle); err != nil {
		o.app.Notes.Error(api.Message(err))
	} else {
		o.app.Notes.Success(i18n.T("upload_success"))
	}
	o.redirect(c, "/add-problem")
}

// formFile reads an optional upload field; an absent field yields nil.
func formFile(c *gin.Context, field string) (*upload.File, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return readPart(header)
}

func readPart(header *multipart.FileHeader) (*upload.File, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &upload.File{Name: header.Filename, Data: data}, nil
}

// analyticsState is the analytics page between requests.
type analyticsState struct {
	mu            sync.Mutex
	schemas       []Table
	schemasLoaded bool
	query         string
	question      string
	answer        string
	output        domain.QueryResult
}

type analyticsView struct {
	Schemas  []Table
	Query    string
	Question string
	Answer   string
	Output   Table
}

func (o *Server) analyticsState(lt *Lifetime) *analyticsState {
	if st, ok := lt.Value(analyticsStateKey).(*analyticsState); ok {
		return st
	}
	st := &analyticsState{}
	lt.SetValue(analyticsStateKey, st)
	return st
}

func schemaTables(schemas map[string][]domain.SchemaColumn) []Table {
	names := lo.Keys(schemas)
	sort.Strings(names)
	return lo.Map(names, func(name string, _ int) Table {
		return Table{
			Name:   "Schema: " + name,
			Header: []string{"Column Name", "Type"},
			Rows: lo.Map(schemas[name], func(col domain.SchemaColumn, _ int) []string {
				return []string{col.Name, col.Type}
			}),
		}
	})
}

func (o *Server) analyticsPage(c *gin.Context) {
	lt := o.lifetime(c, analyticsPath)
	st := o.analyticsState(lt)

	st.mu.Lock()
	loaded := st.schemasLoaded
	st.mu.Unlock()
	if !loaded {
		schemas, err := o.app.API.AllowedSchemas(lt.Context())
		if err != nil {
			o.app.Notes.Error(api.Message(err))
		} else if lt.Alive() {
			st.mu.Lock()
			st.schemas = schemaTables(schemas)
			st.schemasLoaded = true
			st.mu.Unlock()
		}
	}

	st.mu.Lock()
	v := analyticsView{
		Schemas:  st.schemas,
		Query:    st.query,
		Question: st.question,
		Answer:   st.answer,
		Output: Table{
			Name:   "Output Table",
			Header: st.output.Columns,
			Rows:   stringRows(st.output.Rows),
		},
	}
	st.mu.Unlock()

	o.render(c, http.StatusOK, "analytics", "Analytics", navNone, v)
}

// runQuery executes the editor query. On failure the previous output stays.
func (o *Server) runQuery(c *gin.Context) {
	lt := o.lifetime(c, analyticsPath)
	st := o.analyticsState(lt)
	query := c.PostForm("query")

	st.mu.Lock()
	st.query = query
	st.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		o.redirect(c, analyticsPath)
		return
	}

	result, err := o.app.API.RunQuery(lt.Context(), query)
	if !lt.Alive() {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		o.app.Notes.Error(api.Message(err))
		o.redirect(c, analyticsPath)
		return
	}

	o.app.Notes.Success(i18n.T("query_success"))
	st.mu.Lock()
	st.output = result
	st.mu.Unlock()
	o.redirect(c, analyticsPath)
}

func (o *Server) generateQuery(c *gin.Context) {
	lt := o.lifetime(c, analyticsPath)
	st := o.analyticsState(lt)
	question := c.PostForm("question")

	st.mu.Lock()
	st.question = question
	st.mu.Unlock()

	if strings.TrimSpace(question) == "" {
		o.redirect(c, analyticsPath)
		return
	}

	answer, err := o.app.API.GenerateQuery(lt.Context(), question)
	if !lt.Alive() {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		o.app.Notes.Error(api.Message(err))
	} else {
		st.mu.Lock()
		st.answer = answer
		st.mu.Unlock()
	}
	o.redirect(c, analyticsPath)
}

// copyGenerated puts the generated answer into the editor as plain SQL.
func (o *Server) copyGenerated(c *gin.Context) {
	st := o.analyticsState(o.lifetime(c, analyticsPath))

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.answer != "" {
		if text, err := markdown.ToPlainText(st.answer); err == nil {
			st.query = text
		} else {
			o.app.Notes.Error(err.Error())
		}
	}
	o.redirect(c, analyticsPath)
}

func (o *Server) clearQuestion(c *gin.Context) {
	st := o.analyticsState(o.lifetime(c, analyticsPath))
	st.mu.Lock()
	st.question = ""
	st.mu.Unlock()
	o.redirect(c, analyticsPath)
}
