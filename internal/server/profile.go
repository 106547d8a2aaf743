package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/interactive-sql-tutor/sqltutor/internal/api"
	"github.com/interactive-sql-tutor/sqltutor/internal/i18n"
	"github.com/interactive-sql-tutor/sqltutor/internal/validate"
)

type profileView struct {
	Name        string
	Email       string
	Role        string
	ProfileInfo string
}

func (o *Server) profilePage(c *gin.Context) {
	p := o.app.Session.Snapshot().Profile
	o.render(c, http.StatusOK, "profile", "Profile", navProfile, profileView{
		Name:        p.Name(),
		Email:       p.Email(),
		Role:        p.Role(),
		ProfileInfo: p.ProfileInfo(),
	})
}

// updateProfile saves the form on the server, then patches the session so
// the navbar and dashboard pick up the new name at once.
func (o *Server) updateProfile(c *gin.Context) {
	var form validate.ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		o.app.Notes.Error(err.Error())
		o.redirect(c, "/profile")
		return
	}
	form.Email = o.app.Session.Snapshot().Profile.Email()
	if err := validate.Profile(form); err != nil {
		o.app.Notes.Error(err.Error())
		o.redirect(c, "/profile")
		return
	}

	if _, err := o.app.API.UpdateProfile(c.Request.Context(), api.UpdateProfileRequest{
		Name:           form.Name,
		ProfileInfo:    form.ProfileInfo,
		Password:       form.Password,
		VerifyPassword: form.VerifyPassword,
	}); err != nil {
		o.app.Notes.Error(api.Message(err))
		o.redirect(c, "/profile")
		return
	}

	o.app.Session.UpdateProfile(form.Name, form.Password, form.ProfileInfo)
	o.app.Notes.Success(i18n.T("profile_updated"))
	o.redirect(c, "/profile")
}
