package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/interactive-sql-tutor/sqltutor/internal/api"
	"github.com/interactive-sql-tutor/sqltutor/internal/domain"
)

type problemListView struct {
	Topics       []string
	Difficulties []string
	Filter       domain.ProblemFilter
	Problems     []domain.ProblemSummary
}

func (o *Server) problemList(c *gin.Context) {
	lt := o.lifetime(c, c.Request.URL.Path)
	v := problemListView{
		Topics:       domain.Topics,
		Difficulties: domain.Difficulties,
		Filter: domain.ProblemFilter{
			Difficulty: c.Query("difficulty"),
			Topic:      c.Query("topic"),
		},
	}

	problems, err := o.app.API.ListProblems(lt.Context(), v.Filter)
	if err != nil {
		o.app.Notes.Error(api.Message(err))
	} else {
		v.Problems = problems
	}
	o.render(c, http.StatusOK, "problems", "Problems", navProblems, v)
}

func (o *Server) notFound(c *gin.Context) {
	o.render(c, http.StatusNotFound, "not_found", "Not Found", navNone, nil)
}
