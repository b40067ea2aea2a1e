package sqlstore

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// ScanTask scans a single task from a database row.
// Columns: id, owner_id, title, completed, created_at, updated_at
func ScanTask(scanner Scanner) (*Task, error) {
	task := &Task{}
	var createdAt, updatedAt string

	err := scanner.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Completed,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if task.CreatedAt, err = ParseTimeFromDB(createdAt); err != nil {
		return nil, err
	}
	if task.UpdatedAt, err = ParseTimeFromDB(updatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

// ScanTasks scans multiple tasks from database rows.
// The result is never nil so that an empty list encodes as [].
func ScanTasks(rows Rows) ([]*Task, error) {
	tasks := make([]*Task, 0)
	for rows.Next() {
		task, err := ScanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// ScanUser scans a single user from a database row.
// Columns: id, email, password_hash, created_at
func ScanUser(scanner Scanner) (*User, error) {
	user := &User{}
	var createdAt string

	if err := scanner.Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if user.CreatedAt, err = ParseTimeFromDB(createdAt); err != nil {
		return nil, err
	}
	return user, nil
}
