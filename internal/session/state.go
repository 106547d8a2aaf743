// Package session owns the signed-in user. State transitions are the pure
// Reduce function; Service applies them and performs the side effects
// (credential storage, notifications).
package session

import "github.com/interactive-sql-tutor/sqltutor/internal/domain"

type State struct {
	Profile    domain.Profile
	IsLoggedIn bool
	IsPending  bool
	Error      string
}

// Initial is the logged-out default.
func Initial() State {
	return State{Profile: domain.Profile{}}
}

func (s State) clone() State {
	s.Profile = s.Profile.Clone()
	return s
}

type Event interface {
	event()
}

type LoginStarted struct{}

type LoginFailed struct {
	Err string
}

type LoginSucceeded struct {
	Profile domain.Profile
}

type LoggedOut struct{}

type ProfileUpdated struct {
	Name        string
	Password    string
	ProfileInfo string
}

func (LoginStarted) event()   {}
func (LoginFailed) event()    {}
func (LoginSucceeded) event() {}
func (LoggedOut) event()      {}
func (ProfileUpdated) event() {}

// Reduce returns the state that follows s after ev. It never mutates s.
func Reduce(s State, ev Event) State {
	next := s.clone()
	switch e := ev.(type) {
	case LoginStarted:
		next.IsPending = true
	case LoginFailed:
		next = Initial()
		next.Error = e.Err
	case LoginSucceeded:
		next = State{Profile: e.Profile.Clone(), IsLoggedIn: true}
	case LoggedOut:
		next = Initial()
	case ProfileUpdated:
		next.Profile["name"] = e.Name
		next.Profile["password"] = e.Password
		next.Profile["profile_info"] = e.ProfileInfo
	}
	return next
}
