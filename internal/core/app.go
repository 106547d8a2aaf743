// Package core builds the long-lived services of the client and hands them to
// the page server and the terminal commands.
package core

import (
	"time"

	"github.com/interactive-sql-tutor/sqltutor/internal/api"
	"github.com/interactive-sql-tutor/sqltutor/internal/config"
	"github.com/interactive-sql-tutor/sqltutor/internal/inbox"
	debuglog "github.com/interactive-sql-tutor/sqltutor/internal/log"
	"github.com/interactive-sql-tutor/sqltutor/internal/notify"
	"github.com/interactive-sql-tutor/sqltutor/internal/session"
	"github.com/interactive-sql-tutor/sqltutor/internal/store"
)

type App struct {
	Config  *config.Config
	Store   store.Store
	Notes   *notify.Channel
	API     *api.Client
	Session *session.Service
	Inbox   *inbox.Inbox
}

// New opens the credential store under the configured data directory and
// wires every service on top of it.
func New(cfg *config.Config) (ret *App, err error) {
	var st *store.SQLiteStore
	if st, err = store.OpenSQLite(cfg.StoragePath()); err != nil {
		return
	}
	ret = NewWithStore(cfg, st)
	return
}

func NewWithStore(cfg *config.Config, st store.Store, opts ...api.Option) *App {
	opts = append([]api.Option{api.WithTimeout(cfg.Timeout)}, opts...)
	client := api.NewClient(cfg.APIURL, st, opts...)
	notes := notify.NewChannel()

	debuglog.Debug(debuglog.Detailed, "platform API at %s\n", client.BaseURL())
	return &App{
		Config:  cfg,
		Store:   st,
		Notes:   notes,
		API:     client,
		Session: session.NewService(client, st, notes),
		Inbox:   inbox.New(inbox.Welcome(time.Now())),
	}
}

// HasCredentials reports whether a token pair from an earlier login is stored.
func (o *App) HasCredentials() bool {
	_, _, ok, err := store.Credentials(o.Store)
	return err == nil && ok
}

func (o *App) Close() error {
	return o.Store.Close()
}
