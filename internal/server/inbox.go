package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/interactive-sql-tutor/sqltutor/internal/inbox"
)

type inboxView struct {
	Messages []inbox.Message
	Unread   int
	Open     *inbox.Message
}

// inboxPage lists the messages; ?open=<id> expands one and marks it read.
func (o *Server) inboxPage(c *gin.Context) {
	v := inboxView{}
	if raw := c.Query("open"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			o.app.Inbox.MarkRead(id)
			for _, m := range o.app.Inbox.List() {
				if m.ID == id {
					v.Open = &m
					break
				}
			}
		}
	}
	v.Messages = o.app.Inbox.List()
	v.Unread = o.app.Inbox.UnreadCount()
	o.render(c, http.StatusOK, "inbox", "Inbox", navInbox, v)
}

func (o *Server) markAllRead(c *gin.Context) {
	o.app.Inbox.MarkAllRead()
	o.redirect(c, "/inbox")
}

func (o *Server) inboxAction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("msg"))
	if err != nil {
		o.notFound(c)
		return
	}

	var found bool
	switch c.Param("action") {
	case "read":
		found = o.app.Inbox.MarkRead(id)
	case "unread":
		found = o.app.Inbox.MarkUnread(id)
	case "delete":
		found = o.app.Inbox.Delete(id)
	}
	if !found {
		o.notFound(c)
		return
	}
	o.redirect(c, "/inbox")
}
