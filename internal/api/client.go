// Package api is the typed client for the expense-tracking HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/spend/internal/common"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds every request unless overridden with WithTimeout.
const DefaultTimeout = 30 * time.Second

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Client talks to the API. Authenticated calls get their bearer credential
// from the token source on every request, so a logout or re-login takes
// effect without rebuilding the client.
type Client struct {
	authed  *http.Client
	anon    *http.Client
	baseURL string
	retry   common.RetryOptions
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	transport http.RoundTripper
	retry     common.RetryOptions
	timeout   time.Duration
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithTransport sets the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) {
		if rt != nil {
			o.transport = rt
		}
	}
}

// WithRetry sets the retry policy for idempotent reads.
func WithRetry(opts common.RetryOptions) Option {
	return func(o *clientOptions) {
		o.retry = opts
	}
}

// New creates a client for baseURL. tokens may be nil, in which case only the
// unauthenticated auth endpoints work and everything else fails with
// common.ErrUnauthenticated.
func New(baseURL string, tokens oauth2.TokenSource, opts ...Option) *Client {
	o := clientOptions{
		transport: http.DefaultTransport,
		timeout:   DefaultTimeout,
		retry: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	if tokens == nil {
		tokens = missingTokenSource{}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		retry:   o.retry,
		anon: &http.Client{
			Timeout:   o.timeout,
			Transport: o.transport,
		},
		authed: &http.Client{
			Timeout: o.timeout,
			Transport: &oauth2.Transport{
				Source: tokens,
				Base:   o.transport,
			},
		},
	}
}

type missingTokenSource struct{}

func (missingTokenSource) Token() (*oauth2.Token, error) {
	return nil, common.ErrUnauthenticated
}

// call describes one request.
type call struct {
	query  url.Values
	body   any
	out    any
	kind   error
	method string
	path   string
	anon   bool
}

// get performs an authenticated, retried read.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req := call{method: http.MethodGet, path: path, query: query, out: out, kind: common.ErrFetchFailed}

	return common.WithRetry(ctx, func() error {
		err := c.do(ctx, req)
		if err == nil || !retryable(err) {
			return err
		}
		return &common.RetryableError{Err: err, Retryable: true}
	}, c.retry)
}

func (c *Client) do(ctx context.Context, r call) error {
	u, err := url.Parse(c.baseURL + r.path)
	if err != nil {
		return fmt.Errorf("invalid request path %q: %w", r.path, err)
	}
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	httpClient := c.authed
	if r.anon {
		httpClient = c.anon
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(err, common.ErrUnauthenticated) {
			return common.ErrUnauthenticated
		}
		return fmt.Errorf("%w: %s %s: %w", r.kind, r.method, r.path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Debug("Failed to close response body", "error", closeErr)
		}
	}()

	slog.Debug("API request",
		"method", r.method,
		"path", r.path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(r, resp)
	}

	if r.out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
		return fmt.Errorf("%w: failed to decode %s %s response: %w", r.kind, r.method, r.path, err)
	}
	return nil
}

// retryable reports whether a read failure is worth repeating: transport
// failures and server-side errors are, client errors are not.
func retryable(err error) bool {
	if errors.Is(err, common.ErrUnauthenticated) || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
