package cli

import (
	"context"

	"task-manager/internal/server"
)

// ServeCommand handles the serve command
type ServeCommand struct {
	app *App
}

// NewServeCommand creates a new serve command handler
func NewServeCommand(app *App) *ServeCommand {
	return &ServeCommand{app: app}
}

// Execute serves HTTP until ctx is cancelled
func (c *ServeCommand) Execute(ctx context.Context) error {
	srv := server.New(c.app.api, c.app.config, c.app.logger)
	return srv.Run(ctx)
}
