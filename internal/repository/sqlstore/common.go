package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"task-manager/internal/errors"
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// HandleDatabaseError converts database errors to structured app errors
func HandleDatabaseError(operation string, err error) error {
	return errors.NewDatabaseError(operation, err)
}

// notFound builds the error reported when a statement matches no row
func notFound(resource string, id interface{}) func() error {
	return func() error {
		return errors.NewNotFoundError(resource, fmt.Sprint(id))
	}
}

// insertID runs an INSERT ... RETURNING id and returns the new id.
// SQLite and Postgres both support RETURNING; lib/pq has no LastInsertId.
func insertID(ctx context.Context, q queryer, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, HandleDatabaseError("insert", err)
	}
	return id, nil
}

// queryOne scans the single row selected (or returned) by query
func queryOne[T any](ctx context.Context, q queryer, scan func(Scanner) (*T, error), missing func() error, query string, args ...interface{}) (*T, error) {
	result, err := scan(q.QueryRowContext(ctx, query, args...))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, missing()
	}
	if err != nil {
		return nil, HandleDatabaseError("query row", err)
	}
	return result, nil
}

// queryAll scans every row selected by query
func queryAll[T any](ctx context.Context, q queryer, scan func(Rows) ([]*T, error), query string, args ...interface{}) ([]*T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, HandleDatabaseError("query rows", err)
	}
	defer rows.Close()

	results, err := scan(rows)
	if err != nil {
		return nil, HandleDatabaseError("scan rows", err)
	}
	return results, nil
}

// execAffecting runs a statement that must touch at least one row
func execAffecting(ctx context.Context, q queryer, missing func() error, query string, args ...interface{}) error {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return HandleDatabaseError("exec", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return HandleDatabaseError("rows affected", err)
	}
	if n == 0 {
		return missing()
	}
	return nil
}
