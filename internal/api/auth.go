package api

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/interactive-sql-tutor/sqltutor/internal/domain"
)

var ErrMissingTokens = stderrors.New("login response carries no access/refresh token pair")

type RegisterRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	VerifyPassword string `json:"verify_password"`
}

type UpdateProfileRequest struct {
	Name           string `json:"name"`
	ProfileInfo    string `json:"profile_info"`
	Password       string `json:"password"`
	VerifyPassword string `json:"verify_password"`
}

func (o *Client) Register(ctx context.Context, req RegisterRequest) (ret domain.Profile, err error) {
	err = o.doJSON(ctx, false, http.MethodPost, "/auth/register/", req, &ret)
	return
}

// Login returns the user profile echoed with the access and refresh tokens.
func (o *Client) Login(ctx context.Context, email, password string) (ret domain.Profile, err error) {
	body := map[string]string{"email": email, "password": password}
	if err = o.doJSON(ctx, false, http.MethodPost, "/auth/login/", body, &ret); err != nil {
		return nil, err
	}
	if ret.AccessToken() == "" || ret.RefreshToken() == "" {
		return nil, ErrMissingTokens
	}
	return
}

func (o *Client) Logout(ctx context.Context, refresh string) error {
	return o.doJSON(ctx, false, http.MethodPost, "/logout/", map[string]string{"refresh": refresh}, nil)
}

func (o *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (ret domain.Profile, err error) {
	err = o.doJSON(ctx, true, http.MethodPut, "/auth/update/", req, &ret)
	return
}
