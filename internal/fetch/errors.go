package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/sells-group/leadscout/internal/model"
)

// ErrKind classifies a fetch failure. Timeout, ConnectionFailed, and
// retryable HTTP statuses (429, 5xx) are retried with backoff; everything
// else is terminal.
type ErrKind string

const (
	KindTimeout          ErrKind = "timeout"
	KindConnectionFailed ErrKind = "connection_failed"
	KindHTTPStatus       ErrKind = "http_status"
	KindBlocked          ErrKind = "blocked"
	KindCancelled        ErrKind = "cancelled"
)

// Error is a typed fetch failure.
type Error struct {
	Kind       ErrKind
	StatusCode int
	URL        string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.URL, e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorKind maps a fetch error kind onto the adapter failure taxonomy.
func (e *Error) ErrorKind() model.ErrorKind {
	switch e.Kind {
	case KindTimeout:
		return model.ErrTimeout
	case KindConnectionFailed:
		return model.ErrConnectionFailed
	case KindBlocked:
		return model.ErrBlocked
	case KindCancelled:
		return model.ErrCancelled
	default:
		return model.ErrHTTPStatus
	}
}

// retryable reports whether the failure is worth another attempt.
func (e *Error) retryable() bool {
	switch e.Kind {
	case KindTimeout, KindConnectionFailed:
		return true
	case KindHTTPStatus:
		return e.StatusCode == 429 || e.StatusCode >= 500
	default:
		// Blocked and Cancelled are terminal: retrying against a block is
		// futile and wastes proxy goodwill.
		return false
	}
}

// classifyTransport turns a transport-level error into a typed fetch error.
func classifyTransport(ctx context.Context, rawURL string, err error) *Error {
	if ctx.Err() != nil {
		return &Error{Kind: KindCancelled, URL: rawURL, Err: ctx.Err()}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, URL: rawURL, Err: err}
	}

	return &Error{Kind: KindConnectionFailed, URL: rawURL, Err: err}
}
