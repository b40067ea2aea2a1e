package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are carried by a session token. The subject is the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}
