package cli

import (
	"context"
	"fmt"

	"task-manager/internal/api"
	"task-manager/internal/config"
	"task-manager/internal/logging"
	"task-manager/internal/repository/sqlstore"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// StoreFactory opens the store a command works against
type StoreFactory func(cfg *config.Config) (*sqlstore.Store, error)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd       *cobra.Command
	openStore StoreFactory
	config    *config.Config
	logger    *log.Logger
	app       *App
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(openStore StoreFactory) *RootCommand {
	root := &RootCommand{openStore: openStore}

	root.cmd = &cobra.Command{
		Use:   "tm",
		Short: "A personal task manager service",
		Long: `Task Manager (tm) serves a personal task list over HTTP and
administers its accounts and database.

EXAMPLES:
  tm migrate                                  # Create or upgrade the database schema
  tm user add --email you@example.com         # Register an account (password read from stdin)
  tm token --email you@example.com            # Print a session token for an account
  tm serve --addr :8080                       # Run the HTTP service
  tm tasks --email you@example.com            # Print an account's tasks, newest first

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > TOML file (--config or TM_CONFIG) > defaults

    TM_DB_DRIVER                             sqlite or postgres (default: sqlite)
    TM_DB_DSN                                Database DSN (default: ~/.tm/tm.db)
    TM_SERVER_ADDR                           Listen address (default: :8080)
    TM_AUTH_SECRET                           Session signing secret (required, 16+ bytes)
    TM_ENV                                   development, testing or production
    TM_LOG_LEVEL / TM_LOG_FORMAT             Logger level and format (text, json, logfmt)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Command exposes the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the root command and releases the store afterwards
func (r *RootCommand) Execute(ctx context.Context) error {
	err := r.cmd.ExecuteContext(ctx)
	if closeErr := r.close(); err == nil {
		err = closeErr
	}
	return err
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "TOML configuration file (overrides TM_CONFIG)")

	// Database configuration
	flags.String("db-driver", "", "Database driver, sqlite or postgres (overrides TM_DB_DRIVER)")
	flags.String("db-dsn", "", "Database DSN (overrides TM_DB_DSN)")
	flags.String("db-dir", "", "SQLite database directory (overrides TM_DB_DIR)")
	flags.String("db-filename", "", "SQLite database filename (overrides TM_DB_FILENAME)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides TM_DB_QUERY_TIMEOUT)")
	flags.Duration("db-write-timeout", 0, "Database write timeout (overrides TM_DB_WRITE_TIMEOUT)")

	// Service configuration
	flags.String("addr", "", "HTTP listen address (overrides TM_SERVER_ADDR)")
	flags.String("auth-secret", "", "Session signing secret (overrides TM_AUTH_SECRET)")

	// Application configuration
	flags.String("env", "", "Environment: development, testing or production (overrides TM_ENV)")
	flags.Bool("verbose", false, "Enable debug logging (overrides TM_APP_VERBOSE)")
	flags.String("log-level", "", "Log level (overrides TM_LOG_LEVEL)")
	flags.String("log-format", "", "Log format: text, json or logfmt (overrides TM_LOG_FORMAT)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Long:  "Serve the task API until interrupted, then drain in-flight requests.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.application(cmd)
			if err != nil {
				return err
			}
			return NewServeCommand(app).Execute(cmd.Context())
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
		Long: `Bring the database schema up to date and list the applied versions.

Examples:
  tm migrate                 # Apply pending migrations
  tm migrate --rollback 1    # Revert the most recent migration`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rollback, _ := cmd.Flags().GetInt("rollback")
			if rollback < 0 {
				return fmt.Errorf("--rollback must not be negative")
			}
			app, err := r.application(cmd)
			if err != nil {
				return err
			}
			return NewMigrateCommand(app).Execute(cmd.Context(), rollback)
		},
	}
	migrateCmd.Flags().Int("rollback", 0, "Number of migrations to revert")

	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	userAddCmd := &cobra.Command{
		Use:   "add",
		Short: "Register an account",
		Long:  "Register an account. Without --password the password is read from the first line of stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if !cmd.Flags().Changed("password") {
				var err error
				if password, err = readPassword(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			app, err := r.application(cmd)
			if err != nil {
				return err
			}
			return NewUserAddCommand(app).Execute(cmd.Context(), email, password)
		},
	}
	userAddCmd.Flags().String("email", "", "Account email")
	userAddCmd.Flags().String("password", "", "Account password")
	userAddCmd.MarkFlagRequired("email")
	userCmd.AddCommand(userAddCmd)

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token for an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			app, err := r.application(cmd)
			if err != nil {
				return err
			}
			return NewTokenCommand(app).Execute(cmd.Context(), email)
		},
	}
	tokenCmd.Flags().String("email", "", "Account email")
	tokenCmd.MarkFlagRequired("email")

	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Print an account's tasks",
		Long:  "Print an account's tasks, newest first, followed by a short summary.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			app, err := r.application(cmd)
			if err != nil {
				return err
			}
			return NewTasksCommand(app).Execute(cmd.Context(), email)
		},
	}
	tasksCmd.Flags().String("email", "", "Account email")
	tasksCmd.MarkFlagRequired("email")

	r.cmd.AddCommand(
		serveCmd,
		migrateCmd,
		userCmd,
		tokenCmd,
		tasksCmd,
	)
}

// loadConfig resolves the configuration from file, environment and the flags
// that were set explicitly, then builds the logger
func (r *RootCommand) loadConfig(cmd *cobra.Command) error {
	flags := cmd.Flags()
	overrides := &config.ConfigOverrides{}

	stringFlag := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}

	overrides.ConfigFile = stringFlag("config")
	overrides.DBDriver = stringFlag("db-driver")
	overrides.DBDSN = stringFlag("db-dsn")
	overrides.DBDir = stringFlag("db-dir")
	overrides.DBFilename = stringFlag("db-filename")
	overrides.Addr = stringFlag("addr")
	overrides.AuthSecret = stringFlag("auth-secret")
	overrides.Environment = stringFlag("env")
	overrides.LogLevel = stringFlag("log-level")
	overrides.LogFormat = stringFlag("log-format")

	if flags.Changed("db-query-timeout") {
		v, _ := flags.GetDuration("db-query-timeout")
		overrides.DBQueryTimeout = &v
	}
	if flags.Changed("db-write-timeout") {
		v, _ := flags.GetDuration("db-write-timeout")
		overrides.DBWriteTimeout = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}

	cfg, err := config.NewLoader().LoadWithOverrides(overrides)
	if err != nil {
		return err
	}
	r.config = cfg

	opts := logging.DefaultOptions()
	opts.Level = cfg.Logging.Level
	opts.Format = cfg.Logging.Format
	r.logger = logging.New(cmd.ErrOrStderr(), opts)
	if cfg.Application.Verbose {
		r.logger.SetLevel(log.DebugLevel)
	}
	return nil
}

// application opens the store on first use
func (r *RootCommand) application(cmd *cobra.Command) (*App, error) {
	if r.app != nil {
		return r.app, nil
	}
	if r.config == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}

	store, err := r.openStore(r.config)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("store opened", "driver", store.Dialect())

	r.app = NewApp(api.NewWithConfig(store, r.config), store, r.config, r.logger, cmd.OutOrStdout())
	return r.app, nil
}

func (r *RootCommand) close() error {
	if r.app == nil {
		return nil
	}
	err := r.app.store.Close()
	r.app = nil
	return err
}
