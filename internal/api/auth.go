package api

import (
	"context"
	"net/http"

	"github.com/Veraticus/spend/internal/common"
	"github.com/Veraticus/spend/internal/model"
)

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, creds model.LoginCredentials) (*model.TokenPair, error) {
	var tokens model.TokenPair
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   creds,
		out:    &tokens,
		kind:   common.ErrRequestFailed,
		anon:   true,
	})
	if err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, common.NewUserError("Login failed: server returned no access token", common.ErrUnauthenticated)
	}
	return &tokens, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, creds model.RegisterCredentials) (*model.User, error) {
	var user model.User
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/auth/register",
		body:   creds,
		out:    &user,
		kind:   common.ErrRequestFailed,
		anon:   true,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout asks the server to invalidate the refresh token.
func (c *Client) Logout(ctx context.Context, tokens model.TokenPair) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/auth/logout",
		body:   struct {
			RefreshToken string `json:"refreshToken"`
		}{RefreshToken: tokens.RefreshToken},
		kind: common.ErrRequestFailed,
		anon: true,
	})
}

// Summary returns the generated spending summary.
func (c *Client) Summary(ctx context.Context) (*model.Summary, error) {
	var s model.Summary
	if err := c.get(ctx, "/api/aiSummary", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
