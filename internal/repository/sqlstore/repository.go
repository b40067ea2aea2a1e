package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"task-manager/internal/errors"
	"task-manager/internal/repository/sqlstore/migrations"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Repository defines the interface for database operations.
// Every task operation is scoped by owner in the same statement as the id filter.
type Repository interface {
	// Task operations
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, ownerID, id int64) (*Task, error)
	ListTasks(ctx context.Context, ownerID int64) ([]*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, ownerID, id int64) error

	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// Utility
	Ping(ctx context.Context) error
	Close() error
}

// Options configures a Store
type Options struct {
	Dialect      Dialect
	DSN          string
	QueryTimeout time.Duration
	WriteTimeout time.Duration
}

// Store implements the Repository interface on database/sql
type Store struct {
	db           *sql.DB
	dialect      Dialect
	queryTimeout time.Duration
	writeTimeout time.Duration
	now          func() time.Time
}

// New creates a SQLite store at dbPath with default timeouts
func New(dbPath string) (*Store, error) {
	return Open(Options{Dialect: DialectSQLite, DSN: dbPath})
}

// Open connects to the database described by opts and runs pending migrations
func Open(opts Options) (*Store, error) {
	if opts.Dialect == "" {
		opts.Dialect = DialectSQLite
	}

	db, err := sql.Open(opts.Dialect.DriverName(), opts.DSN)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}

	if opts.Dialect == DialectSQLite {
		// A single connection keeps :memory: databases alive and
		// serializes writers instead of surfacing SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.NewDatabaseError("enable foreign keys", err)
		}
	}

	if err := migrations.RunMigrations(db, string(opts.Dialect)); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &Store{
		db:           db,
		dialect:      opts.Dialect,
		queryTimeout: opts.QueryTimeout,
		writeTimeout: opts.WriteTimeout,
		now:          time.Now,
	}, nil
}

// DB exposes the underlying handle for maintenance commands
func (r *Store) DB() *sql.DB {
	return r.db
}

// Dialect returns the SQL dialect of the store
func (r *Store) Dialect() Dialect {
	return r.dialect
}

// Close closes the database connection
func (r *Store) Close() error {
	return r.db.Close()
}

// Ping verifies the database is reachable
func (r *Store) Ping(ctx context.Context) error {
	ctx, cancel := r.readContext(ctx)
	defer cancel()
	if err := r.db.PingContext(ctx); err != nil {
		return HandleDatabaseError("ping", err)
	}
	return nil
}

func (r *Store) readContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, r.queryTimeout)
}

func (r *Store) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(ctx, r.writeTimeout)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// timestamp is truncated to the microsecond precision of Postgres TIMESTAMPTZ
// so values handed back to callers match what a later read returns.
func (r *Store) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

const taskColumns ="id, owner_id, title, completed, created_at, updated_at"

// CreateTask inserts a task for task.OwnerID. The store assigns the id and
// both timestamps, and every new task starts out not completed.
func (r *Store) CreateTask(ctx context.Context, task *Task) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	now := r.timestamp()
	query := r.dialect.Rebind(`
	INSERT INTO tasks (owner_id, title, completed, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	RETURNING id`)

	id, err := insertID(ctx, r.db, query, task.OwnerID, task.Title, false, FormatTimeForDB(now), FormatTimeForDB(now))
	if err != nil {
		return err
	}

	task.ID = id
	task.Completed = false
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

// GetTask retrieves a task by ID for its owner
func (r *Store) GetTask(ctx context.Context, ownerID, id int64) (*Task, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := r.dialect.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND owner_id = ?`)
	return queryOne(ctx, r.db, ScanTask, notFound("task", id), query, id, ownerID)
}

// ListTasks retrieves all tasks of an owner, newest first
func (r *Store) ListTasks(ctx context.Context, ownerID int64) ([]*Task, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := r.dialect.Rebind(`
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE owner_id = ?
	ORDER BY created_at DESC, id DESC`)
	return queryAll(ctx, r.db, ScanTasks, query, ownerID)
}

// UpdateTask overwrites title and completed of a task owned by task.OwnerID
// and refreshes task with the stored row. A task owned by someone else is
// reported exactly like a missing one.
func (r *Store) UpdateTask(ctx context.Context, task *Task) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := r.dialect.Rebind(`
	UPDATE tasks
	SET title = ?, completed = ?, updated_at = ?
	WHERE id = ? AND owner_id = ?
	RETURNING ` + taskColumns)

	updated, err := queryOne(ctx, r.db, ScanTask, notFound("task", task.ID), query,
		task.Title, task.Completed, FormatTimeForDB(r.timestamp()), task.ID, task.OwnerID)
	if err != nil {
		return err
	}

	*task = *updated
	return nil
}

// DeleteTask deletes a task by ID for its owner
func (r *Store) DeleteTask(ctx context.Context, ownerID, id int64) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	query := r.dialect.Rebind(`DELETE FROM tasks WHERE id = ? AND owner_id = ?`)
	return execAffecting(ctx, r.db, notFound("task", id), query, id, ownerID)
}

// CreateUser inserts a user. Emails are stored lower-cased and must be unique.
func (r *Store) CreateUser(ctx context.Context, user *User) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	now := r.timestamp()
	email := strings.ToLower(strings.TrimSpace(user.Email))
	query := r.dialect.Rebind(`INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?) RETURNING id`)

	id, err := insertID(ctx, r.db, query, email, user.PasswordHash, FormatTimeForDB(now))
	if err != nil {
		if isUniqueViolation(err) {
			return errors.NewInvalidInputError("email", email, "already registered")
		}
		return err
	}

	user.ID = id
	user.Email = email
	user.CreatedAt = now
	return nil
}

// GetUser retrieves a user by ID
func (r *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := r.dialect.Rebind(`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`)
	return queryOne(ctx, r.db, ScanUser, notFound("user", id), query, id)
}

// GetUserByEmail retrieves a user by email, case-insensitively
func (r *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	email = strings.ToLower(strings.TrimSpace(email))
	query := r.dialect.Rebind(`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`)
	return queryOne(ctx, r.db, ScanUser, notFound("user", email), query, email)
}
