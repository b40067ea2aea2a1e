package domain

import "time"

// User is an account that owns tasks
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity is the verified user behind a request.
// Handlers receive it from the session verifier only.
type Identity struct {
	UserID int64
	Email  string
}

// IdentityOf returns the identity of a stored user
func IdentityOf(u User) Identity {
	return Identity{UserID: u.ID, Email: u.Email}
}
