package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Environment names accepted by Application.Environment
const (
	Development = "development"
	Testing     = "testing"
	Production  = "production"
)

// Database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration options for the task manager service
type Config struct {
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Auth        AuthConfig        `toml:"auth"`
	Validation  ValidationConfig  `toml:"validation"`
	Application ApplicationConfig `toml:"application"`
	Logging     LoggingConfig     `toml:"logging"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver         string        `toml:"driver" env:"TM_DB_DRIVER"`
	DSN            string        `toml:"dsn" env:"TM_DB_DSN"`
	Dir            string        `toml:"dir" env:"TM_DB_DIR"`
	Filename       string        `toml:"filename" env:"TM_DB_FILENAME"`
	QueryTimeout   time.Duration `toml:"query_timeout" env:"TM_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `toml:"write_timeout" env:"TM_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `toml:"dir_permissions" env:"TM_DB_DIR_PERMISSIONS"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `toml:"addr" env:"TM_SERVER_ADDR"`
	ReadTimeout     time.Duration `toml:"read_timeout" env:"TM_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `toml:"write_timeout" env:"TM_SERVER_WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `toml:"idle_timeout" env:"TM_SERVER_IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"TM_SERVER_SHUTDOWN_TIMEOUT"`
	MaxBodyBytes    int64         `toml:"max_body_bytes" env:"TM_SERVER_MAX_BODY_BYTES"`
}

// AuthConfig holds session token configuration
type AuthConfig struct {
	Secret       string        `toml:"secret" env:"TM_AUTH_SECRET"`
	Issuer       string        `toml:"issuer" env:"TM_AUTH_ISSUER"`
	TokenTTL     time.Duration `toml:"token_ttl" env:"TM_AUTH_TOKEN_TTL"`
	CookieName   string        `toml:"cookie_name" env:"TM_AUTH_COOKIE_NAME"`
	CookieSecure bool          `toml:"cookie_secure" env:"TM_AUTH_COOKIE_SECURE"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	TitleMinLength    int `toml:"title_min_length" env:"TM_VALIDATION_TITLE_MIN"`
	TitleMaxLength    int `toml:"title_max_length" env:"TM_VALIDATION_TITLE_MAX"`
	PasswordMinLength int `toml:"password_min_length" env:"TM_VALIDATION_PASSWORD_MIN"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Environment string `toml:"environment" env:"TM_ENV"`
	Verbose     bool   `toml:"verbose" env:"TM_APP_VERBOSE"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `toml:"level" env:"TM_LOG_LEVEL"`
	Format string `toml:"format" env:"TM_LOG_FORMAT"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBDir := filepath.Join(homeDir, ".tm")

	return &Config{
		Database: DatabaseConfig{
			Driver:         DriverSQLite,
			Dir:            defaultDBDir,
			Filename:       "tm.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Auth: AuthConfig{
			Issuer:     "task-manager",
			TokenTTL:   24 * time.Hour,
			CookieName: "tm_session",
		},
		Validation: ValidationConfig{
			TitleMinLength:    1,
			TitleMaxLength:    100,
			PasswordMinLength: 8,
		},
		Application: ApplicationConfig{
			Environment: Production,
			Verbose:     false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// GetDatabasePath returns the full path to the SQLite database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetDatabaseDSN returns the data source name handed to the driver.
// An explicit DSN wins; SQLite otherwise falls back to the file path.
func (c *Config) GetDatabaseDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	if c.Database.Driver == DriverSQLite {
		return c.GetDatabasePath()
	}
	return ""
}

// GetQueryTimeout returns the database query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// GetWriteTimeout returns the database write timeout
func (c *Config) GetWriteTimeout() time.Duration {
	return c.Database.WriteTimeout
}

// IsDevelopment reports whether internal error details may be returned to clients
func (c *Config) IsDevelopment() bool {
	return c.Application.Environment == Development
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Database configuration
	if driver := os.Getenv("TM_DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("TM_DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if dir := os.Getenv("TM_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("TM_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if timeout := os.Getenv("TM_DB_QUERY_TIMEOUT"); timeout != "" {
		c.Database.QueryTimeout = ParseDurationWithFallback(timeout, c.Database.QueryTimeout)
	}
	if timeout := os.Getenv("TM_DB_WRITE_TIMEOUT"); timeout != "" {
		c.Database.WriteTimeout = ParseDurationWithFallback(timeout, c.Database.WriteTimeout)
	}
	if perms := os.Getenv("TM_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}

	// Server configuration
	if addr := os.Getenv("TM_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if timeout := os.Getenv("TM_SERVER_READ_TIMEOUT"); timeout != "" {
		c.Server.ReadTimeout = ParseDurationWithFallback(timeout, c.Server.ReadTimeout)
	}
	if timeout := os.Getenv("TM_SERVER_WRITE_TIMEOUT"); timeout != "" {
		c.Server.WriteTimeout = ParseDurationWithFallback(timeout, c.Server.WriteTimeout)
	}
	if timeout := os.Getenv("TM_SERVER_IDLE_TIMEOUT"); timeout != "" {
		c.Server.IdleTimeout = ParseDurationWithFallback(timeout, c.Server.IdleTimeout)
	}
	if timeout := os.Getenv("TM_SERVER_SHUTDOWN_TIMEOUT"); timeout != "" {
		c.Server.ShutdownTimeout = ParseDurationWithFallback(timeout, c.Server.ShutdownTimeout)
	}
	if size := os.Getenv("TM_SERVER_MAX_BODY_BYTES"); size != "" {
		if n, err := strconv.ParseInt(size, 10, 64); err == nil {
			c.Server.MaxBodyBytes = n
		}
	}

	// Auth configuration
	if secret := os.Getenv("TM_AUTH_SECRET"); secret != "" {
		c.Auth.Secret = secret
	}
	if issuer := os.Getenv("TM_AUTH_ISSUER"); issuer != "" {
		c.Auth.Issuer = issuer
	}
	if ttl := os.Getenv("TM_AUTH_TOKEN_TTL"); ttl != "" {
		c.Auth.TokenTTL = ParseDurationWithFallback(ttl, c.Auth.TokenTTL)
	}
	if name := os.Getenv("TM_AUTH_COOKIE_NAME"); name != "" {
		c.Auth.CookieName = name
	}
	if secure := os.Getenv("TM_AUTH_COOKIE_SECURE"); secure != "" {
		c.Auth.CookieSecure = ParseBoolWithFallback(secure, c.Auth.CookieSecure)
	}

	// Validation configuration
	if minLen := os.Getenv("TM_VALIDATION_TITLE_MIN"); minLen != "" {
		c.Validation.TitleMinLength = ParseIntWithFallback(minLen, c.Validation.TitleMinLength)
	}
	if maxLen := os.Getenv("TM_VALIDATION_TITLE_MAX"); maxLen != "" {
		c.Validation.TitleMaxLength = ParseIntWithFallback(maxLen, c.Validation.TitleMaxLength)
	}
	if minLen := os.Getenv("TM_VALIDATION_PASSWORD_MIN"); minLen != "" {
		c.Validation.PasswordMinLength = ParseIntWithFallback(minLen, c.Validation.PasswordMinLength)
	}

	// Application configuration
	if env := os.Getenv("TM_ENV"); env != "" {
		c.Application.Environment = env
	}
	if verbose := os.Getenv("TM_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	// Logging configuration
	if level := os.Getenv("TM_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("TM_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate database configuration
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.DSN == "" && c.Database.Dir == "" {
			return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
		}
		if c.Database.DSN == "" && c.Database.Filename == "" {
			return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return &ConfigError{Field: "database.dsn", Message: "postgres requires a dsn"}
		}
	default:
		return &ConfigError{Field: "database.driver", Message: "driver must be sqlite or postgres"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}

	// Validate server configuration
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "listen address cannot be empty"}
	}
	if c.Server.ShutdownTimeout <= 0 {
		return &ConfigError{Field: "server.shutdown_timeout", Message: "shutdown timeout must be positive"}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return &ConfigError{Field: "server.max_body_bytes", Message: "max body size must be positive"}
	}

	// Validate auth configuration
	if len(c.Auth.Secret) < 16 {
		return &ConfigError{Field: "auth.secret", Message: "secret must be at least 16 bytes (set TM_AUTH_SECRET)"}
	}
	if c.Auth.TokenTTL <= 0 {
		return &ConfigError{Field: "auth.token_ttl", Message: "token ttl must be positive"}
	}
	if c.Auth.CookieName == "" {
		return &ConfigError{Field: "auth.cookie_name", Message: "cookie name cannot be empty"}
	}

	// Validate validation configuration
	if c.Validation.TitleMinLength < 1 {
		return &ConfigError{Field: "validation.title_min_length", Message: "title minimum length must be at least 1"}
	}
	if c.Validation.TitleMaxLength < c.Validation.TitleMinLength {
		return &ConfigError{Field: "validation.title_max_length", Message: "title maximum length must be greater than minimum length"}
	}
	if c.Validation.PasswordMinLength < 1 {
		return &ConfigError{Field: "validation.password_min_length", Message: "password minimum length must be at least 1"}
	}

	// Validate application configuration
	switch c.Application.Environment {
	case Development, Testing, Production:
	default:
		return &ConfigError{Field: "application.environment", Message: "environment must be development, testing or production"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
