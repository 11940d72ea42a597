// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Application errors. Every failure reported to the user wraps one of these.
var (
	// ErrUnauthenticated means the credential is missing, expired or rejected.
	// Consumers treat it as "log in again", never as a retryable failure.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrFetchFailed covers transport failures and non-success statuses on reads.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrDeleteFailed means a payment could not be deleted; it stays listed.
	ErrDeleteFailed = errors.New("delete failed")
	// ErrRequestFailed covers non-success statuses on writes other than delete.
	ErrRequestFailed = errors.New("request failed")
	// ErrNoSession means no credentials have been saved.
	ErrNoSession = errors.New("no saved session")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage returns the text to show for err: the UserError message when
// there is one, a login hint for authentication failures, else err itself.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	if errors.Is(err, ErrUnauthenticated) {
		return "Not logged in. Run 'spend login' first."
	}
	return err.Error()
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrUnauthenticated) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
