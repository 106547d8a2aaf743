package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/interactive-sql-tutor/sqltutor/internal/api"
	"github.com/interactive-sql-tutor/sqltutor/internal/i18n"
	"github.com/interactive-sql-tutor/sqltutor/internal/validate"
)

type loginView struct {
	Email string
}

type signupView struct {
	Name  string
	Email string
}

type dashboardView struct {
	Instructor bool
	Name       string
}

// dashboard is public: visitors without a session get the login form.
func (o *Server) dashboard(c *gin.Context) {
	s := o.app.Session.Snapshot()
	if !s.IsLoggedIn {
		o.render(c, http.StatusOK, "login", "Sign In", navNone, loginView{})
		return
	}
	o.render(c, http.StatusOK, "dashboard", "Dashboard", navDashboard, dashboardView{
		Instructor: s.Profile.IsInstructor(),
		Name:       s.Profile.Name(),
	})
}

func (o *Server) loginPage(c *gin.Context) {
	o.render(c, http.StatusOK, "login", "Sign In", navNone, loginView{})
}

func (o *Server) login(c *gin.Context) {
	var form validate.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		o.app.Notes.Error(err.Error())
		o.redirect(c, "/login")
		return
	}
	if err := validate.Login(form); err != nil {
		o.app.Notes.Error(err.Error())
		o.redirect(c, "/login")
		return
	}

	if err := o.app.Session.Login(c.Request.Context(), form.Email, form.Password); err != nil {
		o.redirect(c, "/login")
		return
	}
	o.app.Notes.Success(i18n.T("login_success"))
	o.redirect(c, "/")
}

func (o *Server) signupPage(c *gin.Context) {
	o.render(c, http.StatusOK, "signup", "Sign Up", navNone, signupView{})
}

// signup registers, then signs the new user in.
func (o *Server) signup(c *gin.Context) {
	var form validate.SignupForm
	if err := c.ShouldBind(&form); err != nil {
		o.app.Notes.Error(err.Error())
		o.redirect(c, "/signup")
		return
	}
	if err := validate.Signup(form); err != nil {
		o.app.Notes.Error(err.Error())
		o.redirect(c, "/signup")
		return
	}

	ctx := c.Request.Context()
	if _, err := o.app.API.Register(ctx, api.RegisterRequest{
		Name:           form.Name,
		Email:          form.Email,
		Password:       form.Password,
		VerifyPassword: form.VerifyPassword,
	}); err != nil {
		o.app.Notes.Error(api.Message(err))
		o.redirect(c, "/signup")
		return
	}
	o.app.Notes.Success(i18n.T("signup_success"))

	if err := o.app.Session.Login(ctx, form.Email, form.Password); err != nil {
		o.redirect(c, "/login")
		return
	}
	o.redirect(c, "/")
}

func (o *Server) logout(c *gin.Context) {
	if err := o.app.Session.Logout(c.Request.Context()); err != nil {
		o.app.Notes.Error(err.Error())
	} else {
		o.app.Notes.Success(i18n.T("logout_success"))
	}
	o.redirect(c, "/login")
}
