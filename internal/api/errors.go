package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Veraticus/spend/internal/common"
)

const maxErrorBody = 512

// StatusError is a non-success HTTP response. It matches, via errors.Is, the
// failure kind of the operation that produced it, and common.ErrUnauthenticated
// for 401 on authenticated calls. A 403 is a valid credential lacking
// permission and keeps the operation's kind.
type StatusError struct {
	kind       error
	Method     string
	Path       string
	Body       string
	StatusCode int
}

func newStatusError(r call, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	kind := r.kind
	if !r.anon && resp.StatusCode == http.StatusUnauthorized {
		kind = common.ErrUnauthenticated
	}

	return &StatusError{
		kind:       kind,
		Method:     r.method,
		Path:       r.path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: %s %s returned %d", e.kind, e.Method, e.Path, e.StatusCode)
	if e.Body != "" {
		msg += " - " + e.Body
	}
	return msg
}

// Is matches the failure kind.
func (e *StatusError) Is(target error) bool {
	return errors.Is(e.kind, target)
}
