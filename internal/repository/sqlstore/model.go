package sqlstore

import "time"

// Task is a row of the tasks table
type Task struct {
	ID        int64
	OwnerID   int64
	Title     string
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is a row of the users table
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
