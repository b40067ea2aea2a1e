package config

import (
	"fmt"
	"os"

	"task-manager/internal/repository/sqlstore"
)

// CreateRepository opens the store described by the configuration,
// creating the SQLite database directory when needed
func CreateRepository(config *Config) (*sqlstore.Store, error) {
	dialect, err := sqlstore.ParseDialect(config.Database.Driver)
	if err != nil {
		return nil, &ConfigError{Field: "database.driver", Message: err.Error()}
	}

	if dialect == sqlstore.DialectSQLite && config.Database.DSN == "" {
		if err := os.MkdirAll(config.Database.Dir, os.FileMode(config.Database.DirPermissions)); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	repo, err := sqlstore.Open(sqlstore.Options{
		Dialect:      dialect,
		DSN:          config.GetDatabaseDSN(),
		QueryTimeout: config.GetQueryTimeout(),
		WriteTimeout: config.GetWriteTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return repo, nil
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository() (*sqlstore.Store, error) {
	repo, err := sqlstore.Open(sqlstore.Options{Dialect: sqlstore.DialectSQLite, DSN: ":memory:"})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}

	return repo, nil
}
