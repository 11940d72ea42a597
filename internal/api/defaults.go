package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Veraticus/spend/internal/common"
	"github.com/Veraticus/spend/internal/model"
)

type defaultBody struct {
	Pay string `json:"pay"`
}

// Defaults returns both default lists.
func (c *Client) Defaults(ctx context.Context) (*model.Defaults, error) {
	var d model.Defaults
	if err := c.get(ctx, "/api/defaults", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// DefaultsOf returns one default list.
func (c *Client) DefaultsOf(ctx context.Context, kind model.DefaultKind) ([]string, error) {
	path, err := defaultsPath(kind)
	if err != nil {
		return nil, err
	}
	var values []string
	if err := c.get(ctx, path, nil, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// AddDefault adds value to a default list and returns the updated list.
func (c *Client) AddDefault(ctx context.Context, kind model.DefaultKind, value string) ([]string, error) {
	return c.changeDefault(ctx, http.MethodPost, kind, value)
}

// DeleteDefault removes value from a default list and returns the updated list.
func (c *Client) DeleteDefault(ctx context.Context, kind model.DefaultKind, value string) ([]string, error) {
	return c.changeDefault(ctx, http.MethodDelete, kind, value)
}

// PayedToDefaults returns the payee defaults.
func (c *Client) PayedToDefaults(ctx context.Context) ([]string, error) {
	return c.DefaultsOf(ctx, model.DefaultPayedTo)
}

// AddPayedToDefault adds a payee default.
func (c *Client) AddPayedToDefault(ctx context.Context, value string) ([]string, error) {
	return c.AddDefault(ctx, model.DefaultPayedTo, value)
}

// DeletePayedToDefault removes a payee default.
func (c *Client) DeletePayedToDefault(ctx context.Context, value string) ([]string, error) {
	return c.DeleteDefault(ctx, model.DefaultPayedTo, value)
}

// PayedFromDefaults returns the payer defaults.
func (c *Client) PayedFromDefaults(ctx context.Context) ([]string, error) {
	return c.DefaultsOf(ctx, model.DefaultPayedFrom)
}

// AddPayedFromDefault adds a payer default.
func (c *Client) AddPayedFromDefault(ctx context.Context, value string) ([]string, error) {
	return c.AddDefault(ctx, model.DefaultPayedFrom, value)
}

// DeletePayedFromDefault removes a payer default.
func (c *Client) DeletePayedFromDefault(ctx context.Context, value string) ([]string, error) {
	return c.DeleteDefault(ctx, model.DefaultPayedFrom, value)
}

func (c *Client) changeDefault(ctx context.Context, method string, kind model.DefaultKind, value string) ([]string, error) {
	path, err := defaultsPath(kind)
	if err != nil {
		return nil, err
	}
	var values []string
	err = c.do(ctx, call{
		method: method,
		path:   path,
		body:   defaultBody{Pay: value},
		out:    &values,
		kind:   common.ErrRequestFailed,
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

func defaultsPath(kind model.DefaultKind) (string, error) {
	switch kind {
	case model.DefaultPayedTo, model.DefaultPayedFrom:
		return "/api/defaults/" + string(kind), nil
	default:
		return "", fmt.Errorf("unknown defaults list %q", kind)
	}
}
