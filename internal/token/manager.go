// Package token implements the credential lifecycle: deciding whether a
// stored credential set is valid, near expiry, expired, or non-expiring,
// and performing the refresh grant against the upstream token endpoint
// when renewal is needed.
//
// Concurrent refreshes for the same identity are collapsed into one
// in-flight token exchange via singleflight; every waiter receives the
// outcome of that single network call.
package token

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lineargate/lineargate/internal/credstore"
	"github.com/lineargate/lineargate/internal/graphql"
)

const (
	// expiryHorizon is the proactive refresh window: a credential
	// within this distance of its expiry is renewed before use.
	expiryHorizon = 5 * time.Minute

	// defaultLifetime is the conservative fallback when the token
	// endpoint omits expires_in.
	defaultLifetime = 23 * time.Hour

	// farFuture is the synthetic expiry given to static API keys,
	// which cannot be renewed and are assumed not to expire.
	farFuture = 10 * 365 * 24 * time.Hour
)

// ReauthRequiredError is the fatal, user-facing outcome of the
// lifecycle: the credential cannot be renewed and the user must run the
// interactive flow again. It deliberately hides transport details.
type ReauthRequiredError struct {
	Reason string
}

func (e *ReauthRequiredError) Error() string {
	return fmt.Sprintf("authentication required (%s): run `lineargate auth` to re-authenticate", e.Reason)
}

// Endpoint identifies the upstream OAuth token endpoint and the client
// credentials used for the refresh grant.
type Endpoint struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// Manager owns the lifecycle of one identity's credential set.
type Manager struct {
	identity string
	store    credstore.Store
	endpoint Endpoint

	// bearer selects the wire form of produced credentials: true for
	// OAuth access tokens, false for static API keys sent verbatim.
	bearer bool

	httpClient *http.Client
	logger     *slog.Logger
	group      singleflight.Group

	// now is a field to allow clock injection in tests.
	now func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithHTTPClient overrides the HTTP client used for token exchanges.
func WithHTTPClient(hc *http.Client) ManagerOption {
	return func(m *Manager) { m.httpClient = hc }
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a Manager for one identity. bearer should be true
// for OAuth identities and false for static-key identities.
func NewManager(identity string, store credstore.Store, endpoint Endpoint, bearer bool, opts ...ManagerOption) *Manager {
	m := &Manager{
		identity:   identity,
		store:      store,
		endpoint:   endpoint,
		bearer:     bearer,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Identity returns the identity key this manager serves.
func (m *Manager) Identity() string { return m.identity }

// RegisterStaticKey persists a non-expiring credential set for a static
// API key identity. No refresh is ever attempted for such a set.
func RegisterStaticKey(ctx context.Context, store credstore.Store, identity, key string, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	set := &credstore.CredentialSet{
		AccessToken: key,
		ExpiresAt:   now().Add(farFuture).UnixMilli(),
	}
	return store.Put(ctx, identity, set)
}

// Credential returns a credential ready for use, refreshing proactively
// when the stored set is within the expiry horizon. The error is a
// ReauthRequiredError whenever the set is missing or unrenewable.
func (m *Manager) Credential(ctx context.Context) (graphql.Credential, error) {
	set, err := m.store.Get(ctx, m.identity)
	if err != nil {
		return graphql.Credential{}, fmt.Errorf("loading credential: %w", err)
	}
	if set == nil {
		return graphql.Credential{}, &ReauthRequiredError{Reason: "no stored credential"}
	}

	switch {
	case !set.HasExpiry() && !set.HasRefresh():
		// Non-expiring, static-key case: nothing to renew.
		return m.credential(set), nil

	case !set.HasExpiry() && set.HasRefresh():
		// Legacy session missing an expiry: force one refresh to
		// establish a real one, then proceed normally.
		return m.refresh(ctx)
	}

	remaining := set.Expiry().Sub(m.now())
	switch {
	case remaining > expiryHorizon:
		return m.credential(set), nil

	case set.HasRefresh():
		// Near expiry or expired, renewable.
		return m.refresh(ctx)

	case remaining > 0:
		// Near expiry but not renewable: still usable, hand it out.
		return m.credential(set), nil

	default:
		return graphql.Credential{}, &ReauthRequiredError{Reason: "credential expired and no refresh token is available"}
	}
}

// ForceRefresh performs a refresh regardless of the stored expiry. The
// retry wrapper uses it as the refresh callback after an upstream 401.
// Static-key sets cannot be renewed, so a 401 on one is fatal.
func (m *Manager) ForceRefresh(ctx context.Context) (graphql.Credential, error) {
	set, err := m.store.Get(ctx, m.identity)
	if err != nil {
		return graphql.Credential{}, fmt.Errorf("loading credential: %w", err)
	}
	if set == nil || !set.HasRefresh() {
		return graphql.Credential{}, &ReauthRequiredError{Reason: "credential rejected upstream and cannot be refreshed"}
	}
	return m.refresh(ctx)
}

func (m *Manager) credential(set *credstore.CredentialSet) graphql.Credential {
	return graphql.Credential{Value: set.AccessToken, Bearer: m.bearer}
}

// refresh collapses concurrent callers into a single token exchange.
func (m *Manager) refresh(ctx context.Context) (graphql.Credential, error) {
	v, err, _ := m.group.Do(m.identity, func() (any, error) {
		return m.doRefresh(ctx)
	})
	if err != nil {
		return graphql.Credential{}, err
	}
	return m.credential(v.(*credstore.CredentialSet)), nil
}

// tokenResponse is the wire form of a successful token grant.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// doRefresh performs the network exchange and persists the replacement
// set. It re-reads the store first so a refresh completed by another
// process is picked up instead of repeated.
func (m *Manager) doRefresh(ctx context.Context) (*credstore.CredentialSet, error) {
	set, err := m.store.Get(ctx, m.identity)
	if err != nil {
		return nil, fmt.Errorf("loading credential: %w", err)
	}
	if set == nil || !set.HasRefresh() {
		return nil, &ReauthRequiredError{Reason: "no refresh token available"}
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {set.RefreshToken},
		"client_id":     {m.endpoint.ClientID},
		"client_secret": {m.endpoint.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling token endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		m.logger.Warn("token refresh rejected",
			"identity", m.identity, "status", resp.StatusCode)
		return nil, &ReauthRequiredError{Reason: fmt.Sprintf("token refresh rejected with status %d", resp.StatusCode)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, &ReauthRequiredError{Reason: "token endpoint returned no access token"}
	}

	lifetime := defaultLifetime
	if tr.ExpiresIn > 0 {
		lifetime = time.Duration(tr.ExpiresIn) * time.Second
	}

	// The response may omit the refresh token; carry the old one
	// forward so the set stays renewable.
	refreshToken := tr.RefreshToken
	if refreshToken == "" {
		refreshToken = set.RefreshToken
	}

	fresh := &credstore.CredentialSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    m.now().Add(lifetime).UnixMilli(),
	}
	if err := m.store.Put(ctx, m.identity, fresh); err != nil {
		return nil, fmt.Errorf("persisting refreshed credential: %w", err)
	}

	m.logger.Debug("credential refreshed",
		"identity", m.identity, "expires_at", fresh.Expiry())
	return fresh, nil
}
