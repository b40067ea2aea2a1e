// Package auth resolves the caller behind a request from a signed session token.
package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"task-manager/internal/config"
	"task-manager/internal/domain"
	"task-manager/internal/errors"

	"github.com/golang-jwt/jwt/v5"
)

// UserLookup loads the account a token refers to
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

// Verifier turns a request's session token into a verified Identity
type Verifier struct {
	secret     []byte
	issuer     string
	cookieName string
	users      UserLookup
	now        func() time.Time
}

// NewVerifier creates a Verifier from auth configuration
func NewVerifier(cfg config.AuthConfig, users UserLookup) *Verifier {
	return &Verifier{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		cookieName: cfg.CookieName,
		users:      users,
		now:        time.Now,
	}
}

// Verify resolves the identity of the caller. A missing, malformed,
// expired or foreign token, or one naming a user that no longer exists,
// yields an unauthenticated error. The user store is only consulted
// once the token itself checks out.
func (v *Verifier) Verify(ctx context.Context, r *http.Request) (domain.Identity, error) {
	raw := v.tokenFromRequest(r)
	if raw == "" {
		return domain.Identity{}, errors.NewUnauthenticatedError("missing session token")
	}

	claims, err := v.ParseToken(raw)
	if err != nil {
		return domain.Identity{}, errors.NewUnauthenticatedError("invalid session token").WithContext("cause", err.Error())
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return domain.Identity{}, errors.NewUnauthenticatedError("invalid token subject")
	}

	user, err := v.users.GetUser(ctx, userID)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return domain.Identity{}, errors.NewUnauthenticatedError("unknown user")
		}
		return domain.Identity{}, err
	}

	return domain.IdentityOf(*user), nil
}

// ParseToken checks the signature, algorithm, issuer and expiry of a token
func (v *Verifier) ParseToken(raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// tokenFromRequest reads a bearer token, falling back to the session cookie
func (v *Verifier) tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookie, err := r.Cookie(v.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}
