package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Veraticus/spend/internal/common"
	"github.com/Veraticus/spend/internal/model"
)

// ListPayments returns one page of the caller's own payments.
func (c *Client) ListPayments(ctx context.Context, page, size int) ([]model.Payment, error) {
	var payments []model.Payment
	if err := c.get(ctx, "/api/payment", pageQuery(page, size), &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// ListSharedPayments returns one page of a delegate's payments. The caller
// must have been granted access by the delegate.
func (c *Client) ListSharedPayments(ctx context.Context, email string, page, size int) ([]model.Payment, error) {
	q := pageQuery(page, size)
	q.Set("email", email)

	var payments []model.Payment
	if err := c.get(ctx, "/api/share/check", q, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// FetchPage lists a page for either scope.
func (c *Client) FetchPage(ctx context.Context, scope model.Scope, page, size int) ([]model.Payment, error) {
	if scope.IsSelf() {
		return c.ListPayments(ctx, page, size)
	}
	return c.ListSharedPayments(ctx, scope.Delegate, page, size)
}

// CreatePayment records a new payment and returns it as stored by the server.
func (c *Client) CreatePayment(ctx context.Context, p model.CreatePayment) (*model.Payment, error) {
	var created model.Payment
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/payment",
		body:   p,
		out:    &created,
		kind:   common.ErrRequestFailed,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeletePayment deletes one of the caller's payments.
func (c *Client) DeletePayment(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		path:   "/api/payment",
		query:  url.Values{"paymentId": {id}},
		kind:   common.ErrDeleteFailed,
	})
}

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	return q
}
