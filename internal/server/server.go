// Package server exposes the task API over HTTP.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"

	"task-manager/internal/api"
	"task-manager/internal/auth"
	"task-manager/internal/config"
	"task-manager/internal/domain"
	"task-manager/internal/validation"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

// IdentityResolver resolves the verified caller of a request
type IdentityResolver interface {
	Verify(ctx context.Context, r *http.Request) (domain.Identity, error)
}

// Server wires the request pipeline: session, validation, store, response
type Server struct {
	api      api.API
	config   *config.Config
	logger   *log.Logger
	sessions IdentityResolver
	issuer   *auth.Issuer
	tasks    *validation.TaskValidator
	users    *validation.UserValidator
	router   *mux.Router
}

// New creates a Server backed by a. Sessions are verified against a's users.
func New(a api.API, cfg *config.Config, logger *log.Logger) *Server {
	return NewWithResolver(a, cfg, logger, auth.NewVerifier(cfg.Auth, a))
}

// NewWithResolver creates a Server with a custom identity resolver
func NewWithResolver(a api.API, cfg *config.Config, logger *log.Logger, sessions IdentityResolver) *Server {
	s := &Server{
		api:      a,
		config:   cfg,
		logger:   logger,
		sessions: sessions,
		issuer:   auth.NewIssuer(cfg.Auth),
		tasks:    validation.NewTaskValidatorWithConfig(cfg),
		users:    validation.NewUserValidatorWithConfig(cfg),
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully,
// giving in-flight requests the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String(), "env", s.config.Application.Environment)

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "grace", s.config.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
