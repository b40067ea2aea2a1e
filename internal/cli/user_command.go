package cli

import (
	"context"
)

// UserAddCommand handles the user add command
type UserAddCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewUserAddCommand creates a new user add command handler
func NewUserAddCommand(app *App) *UserAddCommand {
	return &UserAddCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute registers an account
func (c *UserAddCommand) Execute(ctx context.Context, email, password string) error {
	user, err := c.app.api.RegisterUser(ctx, email, password)
	if err != nil {
		return c.errorHandler.Handle("create user", err)
	}
	c.app.printf("Created user %s (id %d)\n", user.Email, user.ID)
	return nil
}
