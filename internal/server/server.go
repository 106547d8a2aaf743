// Package server is the local page server: it routes browser requests to
// page handlers, applies the access policies and keeps the one open page.
package server

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/interactive-sql-tutor/sqltutor/internal/core"
	debuglog "github.com/interactive-sql-tutor/sqltutor/internal/log"
)

const lifetimeKey = "lifetime"

type Server struct {
	app    *core.App
	engine *gin.Engine
	nav    *Navigator
	pages  map[string]*template.Template
	now    func() time.Time
}

func New(app *core.App) *Server {
	gin.SetMode(gin.ReleaseMode)
	if debuglog.Enabled(debuglog.Trace) {
		gin.SetMode(gin.DebugMode)
	}

	o := &Server{
		app:    app,
		engine: gin.New(),
		nav:    NewNavigator(context.Background()),
		pages:  mustParsePages(),
		now:    time.Now,
	}
	o.engine.Use(gin.Recovery(), requestLogger(), sameOrigin())
	o.routes()
	return o
}

func (o *Server) Handler() http.Handler {
	return o.engine
}

func (o *Server) routes() {
	r := o.engine

	r.GET("/", o.enter, o.dashboard)

	r.GET("/login", o.guard(guestPage), o.enter, o.loginPage)
	r.POST("/login", o.guard(guestPage), o.login)
	r.GET("/signup", o.guard(guestPage), o.enter, o.signupPage)
	r.POST("/signup", o.guard(guestPage), o.signup)
	r.POST("/logout", o.logout)

	r.GET("/problems", o.enter, o.problemList)
	problem := r.Group("/problems/:id", o.guard(problemPolicy))
	problem.GET("", o.enter, o.problemPage)
	problem.POST("/draft", o.saveDraft)
	problem.POST("/dialog", o.toggleDialog)
	problem.POST("/hint", o.requestHint)
	problem.POST("/ask", o.askQuestion)
	problem.POST("/timer", o.toggleTimer)
	problem.POST("/submit", o.submit)

	instructor := r.Group("", o.guard(instructorPage))
	instructor.GET("/add-problem", o.enter, o.addProblemPage)
	instructor.POST("/add-problem", o.addProblem)
	instructor.GET("/analytics", o.enter, o.analyticsPage)
	instructor.POST("/analytics/query", o.runQuery)
	instructor.POST("/analytics/generate", o.generateQuery)
	instructor.POST("/analytics/copy", o.copyGenerated)
	instructor.POST("/analytics/clear", o.clearQuestion)

	member := r.Group("", o.guard(memberPage))
	member.GET("/inbox", o.enter, o.inboxPage)
	member.POST("/inbox/read-all", o.markAllRead)
	member.POST("/inbox/:msg/:action", o.inboxAction)
	member.GET("/profile", o.enter, o.profilePage)
	member.POST("/profile", o.updateProfile)

	r.GET("/favicon.ico", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	// Unknown paths never open a lifetime, so stray requests leave the open
	// page alone.
	r.NoRoute(o.notFound)
}

// enter opens the page lifetime for the requested path.
func (o *Server) enter(c *gin.Context) {
	c.Set(lifetimeKey, o.nav.Enter(c.Request.URL.Path))
	c.Next()
}

// lifetime returns the lifetime opened by enter, or the one of path for the
// POST endpoints that act on an already open page.
func (o *Server) lifetime(c *gin.Context, path string) *Lifetime {
	if v, ok := c.Get(lifetimeKey); ok {
		return v.(*Lifetime)
	}
	return o.nav.Enter(path)
}

// Run serves until ctx is done, then leaves the open page and shuts down.
func (o *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           o.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		debuglog.Log("serving on http://%s\n", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	o.nav.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// sameOrigin rejects unsafe requests sent by another site, since every POST
// acts with the credentials of the one logged-in session.
func sameOrigin() gin.HandlerFunc {
	cop := http.NewCrossOriginProtection()
	return func(c *gin.Context) {
		if err := cop.Check(c.Request); err != nil {
			debuglog.Debug(debuglog.Basic, "rejected %s %s from %q: %v\n",
				c.Request.Method, c.Request.URL.Path, c.GetHeader("Origin"), err)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		debuglog.Debug(debuglog.Detailed, "%s %s %d %s\n",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}
