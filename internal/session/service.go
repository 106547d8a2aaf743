package session

import (
	"context"
	"sync"

	"github.com/interactive-sql-tutor/sqltutor/internal/api"
	"github.com/interactive-sql-tutor/sqltutor/internal/domain"
	debuglog "github.com/interactive-sql-tutor/sqltutor/internal/log"
	"github.com/interactive-sql-tutor/sqltutor/internal/notify"
	"github.com/interactive-sql-tutor/sqltutor/internal/store"
)

// Authenticator is the part of the platform API the session talks to.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (domain.Profile, error)
	Logout(ctx context.Context, refresh string) error
}

type Service struct {
	auth  Authenticator
	store store.Store
	notes *notify.Channel

	mu          sync.Mutex
	state       State
	subscribers map[int]func(State)
	nextSub     int
}

func NewService(auth Authenticator, credentials store.Store, notes *notify.Channel) *Service {
	return &Service{
		auth:        auth,
		store:       credentials,
		notes:       notes,
		state:       Initial(),
		subscribers: make(map[int]func(State)),
	}
}

// Login authenticates and, on success, stores both tokens in one write
// before the session is marked logged in. Failures leave storage untouched
// and publish the error.
func (o *Service) Login(ctx context.Context, email, password string) (err error) {
	o.dispatch(LoginStarted{})

	var profile domain.Profile
	if profile, err = o.auth.Login(ctx, email, password); err != nil {
		o.fail(err)
		return
	}

	if err = o.store.SetMany(map[string]string{
		store.AccessTokenKey:  profile.AccessToken(),
		store.RefreshTokenKey: profile.RefreshToken(),
	}); err != nil {
		o.fail(err)
		return
	}

	o.dispatch(LoginSucceeded{Profile: profile})
	debuglog.Debug(debuglog.Detailed, "logged in as %s\n", profile.Email())
	return
}

func (o *Service) fail(err error) {
	msg := api.Message(err)
	debuglog.Log("login failed: %s\n", msg)
	o.dispatch(LoginFailed{Err: msg})
	o.notes.Error(msg)
}

// Logout tells the server (best effort), resets the session and removes the
// stored token pair.
func (o *Service) Logout(ctx context.Context) error {
	refresh, ok, err := o.store.Get(store.RefreshTokenKey)
	if err != nil {
		debuglog.Log("could not read refresh token: %v\n", err)
	}
	if ok && refresh != "" {
		if err := o.auth.Logout(ctx, refresh); err != nil {
			debuglog.Log("server logout failed: %s\n", api.Message(err))
		}
	}

	o.dispatch(LoggedOut{})
	return o.store.Remove(store.AccessTokenKey, store.RefreshTokenKey)
}

// UpdateProfile patches the in-memory profile only; the caller has already
// saved the change on the server.
func (o *Service) UpdateProfile(name, password, profileInfo string) {
	o.dispatch(ProfileUpdated{Name: name, Password: password, ProfileInfo: profileInfo})
}

func (o *Service) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

func (o *Service) LoggedIn() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.IsLoggedIn
}

// Subscribe calls fn with a copy of every new state.
func (o *Service) Subscribe(fn func(State)) (cancel func()) {
	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subscribers[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.subscribers, id)
			o.mu.Unlock()
		})
	}
}

func (o *Service) dispatch(ev Event) {
	o.mu.Lock()
	o.state = Reduce(o.state, ev)
	subs := make([]func(State), 0, len(o.subscribers))
	for _, fn := range o.subscribers {
		subs = append(subs, fn)
	}
	o.mu.Unlock()

	for _, fn := range subs {
		fn(o.Snapshot())
	}
}
