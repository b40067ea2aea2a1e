package domain

import (
	"task-manager/internal/repository/sqlstore"
)

// TaskMapper handles conversion between domain and database Task models.
type TaskMapper struct{}

// NewTaskMapper creates a new TaskMapper instance.
func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

// ToDatabase converts a domain Task to a database Task.
func (m *TaskMapper) ToDatabase(domainTask Task) sqlstore.Task {
	return sqlstore.Task{
		ID:        domainTask.ID,
		OwnerID:   domainTask.OwnerID,
		Title:     domainTask.Title,
		Completed: domainTask.Completed,
		CreatedAt: domainTask.CreatedAt,
		UpdatedAt: domainTask.UpdatedAt,
	}
}

// FromDatabase converts a database Task to a domain Task.
func (m *TaskMapper) FromDatabase(dbTask sqlstore.Task) Task {
	return Task{
		ID:        dbTask.ID,
		OwnerID:   dbTask.OwnerID,
		Title:     dbTask.Title,
		Completed: dbTask.Completed,
		CreatedAt: dbTask.CreatedAt,
		UpdatedAt: dbTask.UpdatedAt,
	}
}

// FromDatabaseSlice converts database Tasks to domain Tasks.
// The result is never nil.
func (m *TaskMapper) FromDatabaseSlice(dbTasks []*sqlstore.Task) []Task {
	domainTasks := make([]Task, len(dbTasks))
	for i, task := range dbTasks {
		domainTasks[i] = m.FromDatabase(*task)
	}
	return domainTasks
}

// UserMapper handles conversion between domain and database User models.
type UserMapper struct{}

// NewUserMapper creates a new UserMapper instance.
func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

// ToDatabase converts a domain User to a database User.
func (m *UserMapper) ToDatabase(domainUser User) sqlstore.User {
	return sqlstore.User{
		ID:           domainUser.ID,
		Email:        domainUser.Email,
		PasswordHash: domainUser.PasswordHash,
		CreatedAt:    domainUser.CreatedAt,
	}
}

// FromDatabase converts a database User to a domain User.
func (m *UserMapper) FromDatabase(dbUser sqlstore.User) User {
	return User{
		ID:           dbUser.ID,
		Email:        dbUser.Email,
		PasswordHash: dbUser.PasswordHash,
		CreatedAt:    dbUser.CreatedAt,
	}
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	Task *TaskMapper
	User *UserMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		Task: NewTaskMapper(),
		User: NewUserMapper(),
	}
}
