package linear

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lineargate/lineargate/internal/graphql"
	"github.com/lineargate/lineargate/internal/refcache"
)

// CredentialSource supplies the credential for each call and the
// re-authentication capability the retry wrapper uses after a 401.
// *token.Manager satisfies it.
type CredentialSource interface {
	Identity() string
	Credential(ctx context.Context) (graphql.Credential, error)
	ForceRefresh(ctx context.Context) (graphql.Credential, error)
}

// executor is the retrying transport seam. *graphql.Client satisfies it;
// tests substitute a fake.
type executor interface {
	ExecuteWithRetry(ctx context.Context, cred graphql.Credential, query string, vars map[string]any, policy graphql.RetryPolicy) (json.RawMessage, error)
}

// Client composes the transport, the credential source, and the
// reference cache into the domain operations. One Client serves one
// session; the cache is private to it.
type Client struct {
	exec   executor
	creds  CredentialSource
	cache  *refcache.Cache
	policy graphql.RetryPolicy
	logger *slog.Logger

	mu           sync.Mutex
	lastIdentity string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRetryPolicy overrides the retry bounds. The refresh callback is
// always taken from the credential source regardless.
func WithRetryPolicy(p graphql.RetryPolicy) ClientOption {
	return func(c *Client) { c.policy = p }
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client around a retrying transport and a
// credential source.
func NewClient(exec *graphql.Client, creds CredentialSource, opts ...ClientOption) *Client {
	c := &Client{
		exec:   exec,
		creds:  creds,
		cache:  refcache.New(),
		policy: graphql.DefaultRetryPolicy(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// query runs one GraphQL document through the retry wrapper and decodes
// the data member into out.
func (c *Client) query(ctx context.Context, doc string, vars map[string]any, out any) error {
	cred, err := c.creds.Credential(ctx)
	if err != nil {
		return err
	}
	c.trackIdentity()

	policy := c.policy
	policy.Refresh = c.creds.ForceRefresh

	raw, err := c.exec.ExecuteWithRetry(ctx, cred, doc, vars, policy)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}

// trackIdentity drops every cached reference list when the acting
// identity changes mid-session, so one user's lookups never resolve
// against another's workspace.
func (c *Client) trackIdentity() {
	id := c.creds.Identity()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastIdentity != "" && c.lastIdentity != id {
		c.logger.Debug("identity changed, clearing reference cache",
			"previous", c.lastIdentity, "current", id)
		c.cache.Clear()
	}
	c.lastIdentity = id
}

// Viewer returns the authenticated user. Never cached, so an identity
// switch is observed immediately.
func (c *Client) Viewer(ctx context.Context) (User, error) {
	var data struct {
		Viewer User `json:"viewer"`
	}
	if err := c.query(ctx, queryViewer, nil, &data); err != nil {
		return User{}, err
	}
	return data.Viewer, nil
}
