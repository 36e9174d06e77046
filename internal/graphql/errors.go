package graphql

import (
	"fmt"
	"strings"
	"time"
)

// AuthError reports that the upstream rejected the credential (HTTP 401).
// It is recoverable exactly once per logical call via the retry wrapper's
// refresh callback; after that it is fatal and user-facing.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("linear: authentication failed (status %d)", e.Status)
}

// RateLimitError reports upstream throttling (HTTP 429). RetryAfter is
// the server-suggested wait parsed from the Retry-After header, or zero
// when the header was absent or unparsable.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("linear: rate limited, retry after %s", e.RetryAfter)
	}
	return "linear: rate limited"
}

// APIError is any other upstream failure: a non-2xx status outside the
// auth/throttle cases, or a 2xx response carrying application-level
// errors. The body is kept verbatim for diagnosability.
type APIError struct {
	Status   int
	Body     string
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("linear: api error: %s", strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("linear: request failed with status %d: %s", e.Status, truncate(e.Body, 300))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
