// Package oauth implements the contract side of the authorization-code
// flow: building the authorize URL with a signed state parameter,
// verifying that state on the redirect, and exchanging the code for a
// credential set at the token endpoint.
//
// The browser-facing approval dialog belongs to the upstream service;
// this package only produces the URL and consumes the redirect.
package oauth

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

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lineargate/lineargate/internal/credstore"
)

// stateLifetime bounds how long an authorize URL stays redeemable.
const stateLifetime = 10 * time.Minute

// stateAudience ties signed state tokens to this flow.
const stateAudience = "lineargate-oauth-state"

// Flow holds everything needed to run one authorization-code exchange.
type Flow struct {
	ClientID     string
	ClientSecret string
	AuthorizeURL string
	TokenURL     string
	RedirectURI  string
	Scope        string

	HTTPClient *http.Client
	Logger     *slog.Logger

	// now is a field to allow clock injection in tests.
	now func() time.Time
}

// NewFlow creates a Flow with default HTTP client and clock.
func NewFlow(clientID, clientSecret, authorizeURL, tokenURL, redirectURI, scope string) *Flow {
	return &Flow{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AuthorizeURL: authorizeURL,
		TokenURL:     tokenURL,
		RedirectURI:  redirectURI,
		Scope:        scope,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		Logger:       slog.Default(),
		now:          time.Now,
	}
}

// BuildAuthorizeURL returns the browser URL for the approval dialog,
// carrying a signed state token that the callback verifies.
func (f *Flow) BuildAuthorizeURL() (string, error) {
	state, err := f.signState()
	if err != nil {
		return "", err
	}

	q := url.Values{
		"client_id":     {f.ClientID},
		"redirect_uri":  {f.RedirectURI},
		"response_type": {"code"},
		"scope":         {f.Scope},
		"state":         {state},
	}
	return f.AuthorizeURL + "?" + q.Encode(), nil
}

// signState mints a short-lived HS256 JWT keyed by the client secret.
// The uuid jti makes every authorize URL single-purpose.
func (f *Flow) signState() (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Audience:  jwt.ClaimStrings{stateAudience},
		IssuedAt:  jwt.NewNumericDate(f.now()),
		ExpiresAt: jwt.NewNumericDate(f.now().Add(stateLifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(f.ClientSecret))
	if err != nil {
		return "", fmt.Errorf("oauth: signing state: %w", err)
	}
	return signed, nil
}

// VerifyState checks the signature, audience, and expiry of a state
// token returned on the redirect.
func (f *Flow) VerifyState(state string) error {
	_, err := jwt.ParseWithClaims(state, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			return []byte(f.ClientSecret), nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience(stateAudience),
		jwt.WithTimeFunc(func() time.Time { return f.now() }),
	)
	if err != nil {
		return fmt.Errorf("oauth: invalid state parameter: %w", err)
	}
	return nil
}

// Exchange redeems an authorization code for a credential set. The
// returned set carries an absolute expiry computed from expires_in, or
// no expiry when the endpoint omits it (the token lifecycle manager
// handles that case).
func (f *Flow) Exchange(ctx context.Context, code string) (*credstore.CredentialSet, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {f.RedirectURI},
		"client_id":     {f.ClientID},
		"client_secret": {f.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("oauth: creating exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oauth: calling token endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("oauth: reading token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("oauth: code exchange failed with status %d: %s",
			resp.StatusCode, body)
	}

	var tr struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("oauth: decoding token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("oauth: token endpoint returned no access token")
	}

	set := &credstore.CredentialSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
	}
	if tr.ExpiresIn > 0 {
		set.ExpiresAt = f.now().Add(time.Duration(tr.ExpiresIn) * time.Second).UnixMilli()
	}
	return set, nil
}
