package api

import (
	"context"
	"net/http"

	"github.com/me/gobank/pkg/model"
)

// The auth endpoints bypass the 401-refresh coordination: a 401 here means
// the credentials themselves are bad, and retrying through the refresh path
// would recurse.

// Login exchanges username/password for a token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	req := model.LoginRequest{Username: username, Password: password}
	if err := c.doNoRetry(ctx, http.MethodPost, "/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the token server-side. Callers treat failures as
// best-effort: the local session is cleared regardless.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.doNoRetry(ctx, http.MethodPost, "/auth/logout", nil, model.LogoutRequest{Token: token}, nil)
}

// Validate asks the server who the current bearer token belongs to.
func (c *Client) Validate(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.doNoRetry(ctx, http.MethodGet, "/auth/validate", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RefreshExchange trades a refresh token for fresh credentials. Only used
// with the "exchange" refresh strategy.
func (c *Client) RefreshExchange(ctx context.Context, refreshToken string) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	req := model.RefreshRequest{RefreshToken: refreshToken}
	if err := c.doNoRetry(ctx, http.MethodPost, "/auth/refresh", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
