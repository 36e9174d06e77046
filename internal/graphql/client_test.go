package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

// --- Credential wire form ---

func TestCredentialHeader(t *testing.T) {
	oauth := Credential{Value: "tok123", Bearer: true}
	assert.Equal(t, "Bearer tok123", oauth.Header())

	apiKey := Credential{Value: "lin_api_abc"}
	assert.Equal(t, "lin_api_abc", apiKey.Header())
}

// --- Execute ---

func TestExecute_Success(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, http.MethodPost, r.Method)

		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "viewer")

		_, _ = w.Write([]byte(`{"data":{"viewer":{"id":"u1"}}}`))
	})

	data, err := c.Execute(context.Background(), Credential{Value: "tok", Bearer: true},
		`query { viewer { id } }`, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"viewer":{"id":"u1"}}`, string(data))
}

func TestExecute_EmptyCredentialIsAuthError(t *testing.T) {
	c := NewClient("http://unused.invalid")

	_, err := c.Execute(context.Background(), Credential{}, `query { viewer { id } }`, nil)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestExecute_Unauthorized(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	})

	_, err := c.Execute(context.Background(), Credential{Value: "bad"}, `query { viewer { id } }`, nil)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
}

func TestExecute_RateLimitedWithRetryAfter(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Execute(context.Background(), Credential{Value: "tok"}, `query { teams { nodes { id } } }`, nil)
	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, 7*time.Second, rlErr.RetryAfter)
}

func TestExecute_RateLimitedWithoutHint(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Execute(context.Background(), Credential{Value: "tok"}, `query { teams { nodes { id } } }`, nil)
	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Zero(t, rlErr.RetryAfter)
}

func TestExecute_ServerErrorCarriesBody(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := c.Execute(context.Background(), Credential{Value: "tok"}, `query { viewer { id } }`, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Contains(t, apiErr.Body, "upstream exploded")
}

func TestExecute_ApplicationLevelErrors(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"Field 'bogus' not found"}]}`))
	})

	_, err := c.Execute(context.Background(), Credential{Value: "tok"}, `query { bogus }`, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Messages[0], "bogus")
}

// --- parseRetryAfter ---

func TestParseRetryAfter(t *testing.T) {
	cases := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"0", 0},
		{"-3", 0},
		{"Wed, 21 Oct 2026 07:28:00 GMT", 0},
		{"garbage", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseRetryAfter(tc.header), "header %q", tc.header)
	}
}
