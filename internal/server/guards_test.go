package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/interactive-sql-tutor/sqltutor/internal/domain"
	"github.com/interactive-sql-tutor/sqltutor/internal/session"
)

func TestPolicyCheck(t *testing.T) {
	anonymous := session.Initial()
	student := session.State{IsLoggedIn: true, Profile: domain.Profile{"role": domain.RoleStudent}}
	instructor := session.State{IsLoggedIn: true, Profile: domain.Profile{"role": domain.RoleInstructor}}

	tests := []struct {
		name     string
		policy   Policy
		state    session.State
		redirect bool
		to       string
		message  string
	}{
		{"guest page anonymous", guestPage, anonymous, false, "", ""},
		{"guest page logged in", guestPage, student, true, "/", ""},
		{"problem anonymous", problemPolicy, anonymous, true, "/", "guard_not_logged_in"},
		{"problem student", problemPolicy, student, false, "", ""},
		{"member anonymous", memberPage, anonymous, true, "/login", ""},
		{"member student", memberPage, student, false, "", ""},
		{"instructor anonymous", instructorPage, anonymous, true, "/login", "guard_not_logged_in"},
		{"instructor student", instructorPage, student, true, "/", "guard_not_authorized"},
		{"instructor instructor", instructorPage, instructor, false, "", ""},
		{"open page", Policy{}, anonymous, false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, redirect := tt.policy.Check(tt.state)
			assert.Equal(t, tt.redirect, redirect)
			assert.Equal(t, tt.to, r.To)
			assert.Equal(t, tt.message, r.MessageID)
		})
	}
}
