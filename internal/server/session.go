package server

import (
	"context"
	"net/http"
	"time"

	"task-manager/internal/auth"
)

// requireSession resolves the caller before next runs. Without a valid
// session the request ends with 401 and next, which does all validation
// and storage work, is never called.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := s.sessions.Verify(storeContext(r), r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		next(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	}
}

// storeContext detaches store work from the client connection.
// A client that goes away does not abort an operation already under way;
// the store bounds each call with its own timeout.
func storeContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	creds, err := s.users.ValidateLogin(s.limitBody(w, r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	user, err := s.api.Authenticate(storeContext(r), creds.Email, creds.Password)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	token, expiresAt, err := s.issuer.Issue(*user)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	http.SetCookie(w, auth.SessionCookie(s.config.Auth, token, expiresAt))
	s.respondJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt.UTC()})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearSessionCookie(s.config.Auth))
	w.WriteHeader(http.StatusNoContent)
}
