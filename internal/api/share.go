package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Veraticus/spend/internal/common"
)

// SharedWith lists the users the caller shares payments with.
func (c *Client) SharedWith(ctx context.Context) ([]string, error) {
	var emails []string
	if err := c.get(ctx, "/api/share/", nil, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// SharedToMe lists the users sharing their payments with the caller. These are
// the delegates whose history can be browsed.
func (c *Client) SharedToMe(ctx context.Context) ([]string, error) {
	var emails []string
	if err := c.get(ctx, "/api/share/to-me", nil, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// AddShare grants email access to the caller's payments.
func (c *Client) AddShare(ctx context.Context, email string) ([]string, error) {
	return c.changeShare(ctx, http.MethodPost, email)
}

// RemoveShare revokes email's access.
func (c *Client) RemoveShare(ctx context.Context, email string) ([]string, error) {
	return c.changeShare(ctx, http.MethodDelete, email)
}

func (c *Client) changeShare(ctx context.Context, method, email string) ([]string, error) {
	var emails []string
	err := c.do(ctx, call{
		method: method,
		path:   "/api/share/",
		query:  url.Values{"email": {email}},
		out:    &emails,
		kind:   common.ErrRequestFailed,
	})
	if err != nil {
		return nil, err
	}
	return emails, nil
}
