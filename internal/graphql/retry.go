package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// RefreshFunc obtains a fresh credential after an authentication
// failure. It is a capability parameter: the token lifecycle manager
// supplies it at call time, keeping this package testable with fakes.
type RefreshFunc func(ctx context.Context) (Credential, error)

// RetryPolicy bounds the retry wrapper. The zero value is not usable;
// use DefaultRetryPolicy and override fields as needed.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of executed calls, counting
	// the first one. Rate-limit waits consume attempts; the single
	// permitted re-authentication does not.
	MaxAttempts int

	// MaxTotalWait caps the cumulative time spent sleeping on
	// rate-limit backoff across all attempts.
	MaxTotalWait time.Duration

	// Refresh, when non-nil, is invoked once after an authentication
	// failure on the first attempt. Nil disables re-authentication.
	Refresh RefreshFunc
}

// DefaultRetryPolicy returns the standard bounds: three attempts and at
// most 30 seconds of cumulative backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, MaxTotalWait: 30 * time.Second}
}

// backoffBase is the first exponential backoff step when the server
// supplies no Retry-After hint. Steps double per rate-limited attempt.
const backoffBase = time.Second

// sleepFn is a package-level var to allow test injection, mirroring the
// context so cancellation interrupts a pending backoff.
var sleepFn = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ExecuteWithRetry wraps Execute with the bounded retry algorithm:
//
//   - AuthError on the first attempt, with a refresh callback: refresh
//     once, retry with the new credential. Otherwise propagate.
//   - RateLimitError: wait min(server hint, exponential backoff) capped
//     by the remaining cumulative budget, then retry, up to MaxAttempts.
//   - Anything else propagates immediately.
//
// Exhausting the budget propagates the last observed error.
func (c *Client) ExecuteWithRetry(ctx context.Context, cred Credential, query string, vars map[string]any, policy RetryPolicy) (json.RawMessage, error) {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	var (
		attempt   int
		refreshed bool
		waited    time.Duration
	)

	for {
		attempt++
		data, err := c.Execute(ctx, cred, query, vars)
		if err == nil {
			return data, nil
		}

		var authErr *AuthError
		if errors.As(err, &authErr) {
			// One re-authentication per logical call, and only when
			// the very first attempt failed. A credential that was
			// just refreshed and still fails is fatal.
			if attempt == 1 && !refreshed && policy.Refresh != nil {
				fresh, refreshErr := policy.Refresh(ctx)
				if refreshErr != nil {
					return nil, refreshErr
				}
				cred = fresh
				refreshed = true
				// The refresh retry does not consume an attempt slot.
				attempt--
				continue
			}
			return nil, err
		}

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			if attempt >= policy.MaxAttempts {
				return nil, err
			}
			wait := rlErr.RetryAfter
			if wait <= 0 {
				wait = backoffBase << (attempt - 1)
			}
			if remaining := policy.MaxTotalWait - waited; wait > remaining {
				if remaining <= 0 {
					return nil, err
				}
				wait = remaining
			}
			if sleepErr := sleepFn(ctx, wait); sleepErr != nil {
				return nil, sleepErr
			}
			waited += wait
			continue
		}

		return nil, err
	}
}
