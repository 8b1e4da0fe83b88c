package domain

import "time"

// User is a registered chat account. PasswordHash is persisted by the store
// but never rendered by the HTTP layer.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Email        *string   `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}
