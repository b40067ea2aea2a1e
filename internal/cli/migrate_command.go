package cli

import (
	"context"
	"fmt"
	"strings"

	"task-manager/internal/repository/sqlstore/migrations"
)

// MigrateCommand handles the migrate command. Opening the store applies
// pending migrations, so only rollbacks need work here.
type MigrateCommand struct {
	app *App
}

// NewMigrateCommand creates a new migrate command handler
func NewMigrateCommand(app *App) *MigrateCommand {
	return &MigrateCommand{app: app}
}

// Execute reverts rollback migrations, if any, and prints the applied versions
func (c *MigrateCommand) Execute(ctx context.Context, rollback int) error {
	db := c.app.store.DB()

	if rollback > 0 {
		reverted, err := migrations.Rollback(db, string(c.app.store.Dialect()), rollback)
		for _, version := range reverted {
			c.app.printf("Rolled back migration %d\n", version)
		}
		if err != nil {
			return err
		}
	}

	applied, err := migrations.Applied(db)
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	if len(applied) == 0 {
		c.app.printf("No migrations applied\n")
		return nil
	}

	versions := make([]string, len(applied))
	for i, v := range applied {
		versions[i] = fmt.Sprintf("%d", v)
	}
	c.app.printf("Applied migrations: %s\n", strings.Join(versions, ", "))
	return nil
}
