// Package graphql implements the outbound request layer for the Linear
// GraphQL API: a single-shot executor that classifies failures into the
// auth / rate-limit / generic taxonomy, and a bounded retry wrapper that
// composes re-authentication and backoff around it.
//
// The package knows nothing about Linear's schema: callers supply the
// query document and variables and decode the returned data themselves.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Credential is an opaque bearer value plus its wire form. Static API
// keys go into the Authorization header verbatim; OAuth access tokens
// carry the "Bearer " prefix.
type Credential struct {
	Value  string
	Bearer bool
}

// Header returns the Authorization header value for this credential.
func (c Credential) Header() string {
	if c.Bearer {
		return "Bearer " + c.Value
	}
	return c.Value
}

// IsZero reports whether the credential is empty.
func (c Credential) IsZero() bool { return c.Value == "" }

// Client performs GraphQL round trips against a single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests, custom
// transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit installs a client-side pacer so fan-out name resolution
// does not burst into the upstream limiter. rps is sustained requests
// per second, burst the bucket size.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithLogger attaches a structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client for the given GraphQL endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request is the wire form of a GraphQL call.
type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// response is the wire form of a GraphQL reply.
type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Execute performs one network round trip and classifies the outcome.
// The returned raw message is the "data" member of the GraphQL response;
// callers unmarshal it into their per-query types.
func (c *Client) Execute(ctx context.Context, cred Credential, query string, vars map[string]any) (json.RawMessage, error) {
	if cred.IsZero() {
		return nil, &AuthError{Status: 0, Body: "no credential available"}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", cred.Header())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling linear api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &AuthError{Status: resp.StatusCode, Body: string(respBody)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(parsed.Errors) > 0 {
		msgs := make([]string, len(parsed.Errors))
		for i, e := range parsed.Errors {
			msgs[i] = e.Message
		}
		c.logger.Debug("graphql errors in response", "count", len(msgs))
		return nil, &APIError{Status: resp.StatusCode, Body: string(respBody), Messages: msgs}
	}

	return parsed.Data, nil
}

// parseRetryAfter reads an integer-seconds Retry-After value. Anything
// else (HTTP dates, garbage, absence) yields zero, which tells the
// retry wrapper to fall back to exponential backoff.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
