package domain

import "time"

// APIKey is an opaque bearer token with an absolute expiry.
// Records are keyed by the token itself.
type APIKey struct {
	Key       string    `json:"key" db:"api_key"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
}

// ExpiredAt reports whether the key is no longer usable at t.
func (k APIKey) ExpiredAt(t time.Time) bool {
	return !t.Before(k.ExpiresAt)
}
