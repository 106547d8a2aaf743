package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/interactive-sql-tutor/sqltutor/internal/domain"
	"github.com/interactive-sql-tutor/sqltutor/internal/i18n"
	debuglog "github.com/interactive-sql-tutor/sqltutor/internal/log"
	"github.com/interactive-sql-tutor/sqltutor/internal/notify"
	"github.com/interactive-sql-tutor/sqltutor/internal/session"
)

// Redirect sends the visitor to To, optionally with a notification.
type Redirect struct {
	To        string
	Kind      notify.Kind
	MessageID string
}

// Policy decides who may open a page. A zero Policy admits everyone.
type Policy struct {
	Anonymous    *Redirect
	Role         string
	Unauthorized *Redirect
	GuestsOnly   bool
}

var (
	guestPage = Policy{GuestsOnly: true}

	problemPolicy = Policy{
		Anonymous: &Redirect{To: "/", Kind: notify.KindWarning, MessageID: "guard_not_logged_in"},
	}

	memberPage = Policy{
		Anonymous: &Redirect{To: "/login"},
	}

	instructorPage = Policy{
		Anonymous:    &Redirect{To: "/login", Kind: notify.KindError, MessageID: "guard_not_logged_in"},
		Role:         domain.RoleInstructor,
		Unauthorized: &Redirect{To: "/", Kind: notify.KindError, MessageID: "guard_not_authorized"},
	}
)

// Check returns where to send a visitor with session s, if anywhere.
func (p Policy) Check(s session.State) (Redirect, bool) {
	switch {
	case p.GuestsOnly && s.IsLoggedIn:
		return Redirect{To: "/"}, true
	case !s.IsLoggedIn && p.Anonymous != nil:
		return *p.Anonymous, true
	case s.IsLoggedIn && p.Role != "" && s.Profile.Role() != p.Role && p.Unauthorized != nil:
		return *p.Unauthorized, true
	}
	return Redirect{}, false
}

func (o *Server) guard(p Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, redirect := p.Check(o.app.Session.Snapshot())
		if !redirect {
			c.Next()
			return
		}
		debuglog.Debug(debuglog.Detailed, "guard: %s -> %s\n", c.Request.URL.Path, r.To)
		if r.MessageID != "" {
			o.app.Notes.Publish(r.Kind, i18n.T(r.MessageID))
		}
		c.Redirect(http.StatusSeeOther, r.To)
		c.Abort()
	}
}
