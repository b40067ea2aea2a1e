package domain

import "time"

// Task is a to-do item belonging to exactly one user.
// OwnerID is assigned from the verified session, never from a request body.
type Task struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	OwnerID   int64     `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewTask creates an incomplete task with the given title for owner.
func NewTask(ownerID int64, title string) Task {
	return Task{
		OwnerID: ownerID,
		Title:   title,
	}
}

// IsValid checks if the task has the fields every stored task carries.
func (t Task) IsValid() bool {
	return t.Title != "" && t.OwnerID > 0
}
