package api

import (
	"net/http"
	"net/http/httputil"

	"golang.org/x/oauth2"

	debuglog "github.com/interactive-sql-tutor/sqltutor/internal/log"
	"github.com/interactive-sql-tutor/sqltutor/internal/store"
)

// storeTokenSource reads the access token from the credential store on every
// request, so a login or logout takes effect on the next call.
type storeTokenSource struct {
	store store.Store
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	access, ok, err := s.store.Get(store.AccessTokenKey)
	if err != nil {
		return nil, err
	}
	if !ok || access == "" {
		return nil, ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: access, TokenType: "Bearer"}, nil
}

// wireTransport dumps full requests and responses at the Wire debug level.
type wireTransport struct {
	base http.RoundTripper
}

func (t wireTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !debuglog.Enabled(debuglog.Wire) {
		return t.base.RoundTrip(req)
	}

	if dump, err := httputil.DumpRequestOut(req, true); err == nil {
		debuglog.Debug(debuglog.Wire, "request:\n%s\n", dump)
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		debuglog.Debug(debuglog.Wire, "transport error: %v\n", err)
		return nil, err
	}
	if dump, err := httputil.DumpResponse(resp, true); err == nil {
		debuglog.Debug(debuglog.Wire, "response:\n%s\n", dump)
	}
	return resp, nil
}
