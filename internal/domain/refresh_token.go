package domain

import "time"

// RefreshToken is an opaque, store-backed credential. The ID is the bearer
// value handed to the client.
//
// Tokens are not rotated on use: a token stays valid until it is revoked
// (logout) or found expired, at which point it is deleted.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
