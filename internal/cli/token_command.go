package cli

import (
	"context"

	"task-manager/internal/auth"

	"github.com/dustin/go-humanize"
)

// TokenCommand handles the token command
type TokenCommand struct {
	app          *App
	issuer       *auth.Issuer
	errorHandler *ErrorHandler
}

// NewTokenCommand creates a new token command handler
func NewTokenCommand(app *App) *TokenCommand {
	return &TokenCommand{
		app:          app,
		issuer:       auth.NewIssuer(app.config.Auth),
		errorHandler: NewErrorHandler(),
	}
}

// Execute prints a fresh session token for the account with email
func (c *TokenCommand) Execute(ctx context.Context, email string) error {
	user, err := c.app.api.GetUserByEmail(ctx, email)
	if err != nil {
		return c.errorHandler.Handle("issue token", err)
	}

	token, expiresAt, err := c.issuer.Issue(*user)
	if err != nil {
		return c.errorHandler.Handle("issue token", err)
	}

	c.app.logger.Info("token issued", "user", user.Email, "expires", humanize.RelTime(expiresAt, timeNow(), "ago", "from now"))
	c.app.printf("%s\n", token)
	return nil
}
