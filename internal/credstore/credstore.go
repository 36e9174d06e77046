// Package credstore persists per-identity credential sets, encrypted at
// rest with AES-256-GCM and stored as a keyed blob in SQLite.
//
// A decrypt failure (corrupt row, rotated key) is reported as "no
// credential" rather than an error: corrupted state degrades to "not
// authenticated" instead of crashing the server.
package credstore

import (
	"time"
)

// CredentialSet is the unit persisted and refreshed: an access token,
// an optional refresh token, and an optional absolute expiry in epoch
// milliseconds. A refresh replaces the whole set; there are no partial
// updates.
type CredentialSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

// Expiry returns the absolute expiry instant, or the zero time when no
// expiry is recorded.
func (s *CredentialSet) Expiry() time.Time {
	if s.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.ExpiresAt)
}

// HasRefresh reports whether the set can be renewed.
func (s *CredentialSet) HasRefresh() bool { return s.RefreshToken != "" }

// HasExpiry reports whether an expiry instant was recorded.
func (s *CredentialSet) HasExpiry() bool { return s.ExpiresAt != 0 }
