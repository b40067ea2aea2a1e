package api

import (
	"context"
	"fmt"
	"strings"

	"task-manager/internal/auth"
	"task-manager/internal/config"
	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/repository/sqlstore"
	"task-manager/internal/validation"
)

// API defines the owner-scoped task and account operations.
// Every task operation takes the verified owner; a task owned by
// someone else is reported as not found.
type API interface {
	// Task operations
	ListTasks(ctx context.Context, ownerID int64) ([]domain.Task, error)
	GetTask(ctx context.Context, ownerID, id int64) (*domain.Task, error)
	CreateTask(ctx context.Context, ownerID int64, title string) (*domain.Task, error)
	UpdateTask(ctx context.Context, ownerID, id int64, title string, completed bool) (*domain.Task, error)
	DeleteTask(ctx context.Context, ownerID, id int64) error
	SummarizeTasks(ctx context.Context, ownerID int64) (*TaskSummary, error)

	// Account operations
	RegisterUser(ctx context.Context, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	Ping(ctx context.Context) error
}

type apiImpl struct {
	repo          sqlstore.Repository
	mapper        *domain.Mapper
	userValidator *validation.UserValidator
	passwordCost  int
}

// New creates a new API instance with default validation rules.
func New(repo sqlstore.Repository) API {
	return NewWithConfig(repo, nil)
}

// NewWithConfig creates a new API instance using configured validation rules.
func NewWithConfig(repo sqlstore.Repository, cfg *config.Config) API {
	return &apiImpl{
		repo:          repo,
		mapper:        domain.NewMapper(),
		userValidator: validation.NewUserValidatorWithConfig(cfg),
		passwordCost:  auth.DefaultCost,
	}
}

// Task implementations
func (a *apiImpl) ListTasks(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	dbTasks, err := a.repo.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return a.mapper.Task.FromDatabaseSlice(dbTasks), nil
}

func (a *apiImpl) GetTask(ctx context.Context, ownerID, id int64) (*domain.Task, error) {
	dbTask, err := a.repo.GetTask(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	task := a.mapper.Task.FromDatabase(*dbTask)
	return &task, nil
}

func (a *apiImpl) CreateTask(ctx context.Context, ownerID int64, title string) (*domain.Task, error) {
	task := domain.NewTask(ownerID, strings.TrimSpace(title))
	if !task.IsValid() {
		return nil, errors.NewInvalidInputError("title", title, "must not be empty")
	}

	dbTask := a.mapper.Task.ToDatabase(task)
	if err := a.repo.CreateTask(ctx, &dbTask); err != nil {
		return nil, err
	}
	created := a.mapper.Task.FromDatabase(dbTask)
	return &created, nil
}

func (a *apiImpl) UpdateTask(ctx context.Context, ownerID, id int64, title string, completed bool) (*domain.Task, error) {
	task := domain.Task{ID: id, OwnerID: ownerID, Title: strings.TrimSpace(title), Completed: completed}
	if !task.IsValid() {
		return nil, errors.NewInvalidInputError("title", title, "must not be empty")
	}

	dbTask := a.mapper.Task.ToDatabase(task)
	if err := a.repo.UpdateTask(ctx, &dbTask); err != nil {
		return nil, err
	}
	updated := a.mapper.Task.FromDatabase(dbTask)
	return &updated, nil
}

func (a *apiImpl) DeleteTask(ctx context.Context, ownerID, id int64) error {
	return a.repo.DeleteTask(ctx, ownerID, id)
}

// Account implementations
func (a *apiImpl) RegisterUser(ctx context.Context, email, password string) (*domain.User, error) {
	creds, err := a.userValidator.ValidateRegistration(email, password)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(creds.Password, a.passwordCost)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeInvalidInput, "password could not be hashed")
	}

	dbUser := sqlstore.User{Email: creds.Email, PasswordHash: hash}
	if err := a.repo.CreateUser(ctx, &dbUser); err != nil {
		return nil, err
	}
	user := a.mapper.User.FromDatabase(dbUser)
	return &user, nil
}

// Authenticate checks an email and password pair. Unknown emails and wrong
// passwords produce the same error.
func (a *apiImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := a.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, invalidCredentials()
	}
	return user, nil
}

func (a *apiImpl) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	dbUser, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user := a.mapper.User.FromDatabase(*dbUser)
	return &user, nil
}

func (a *apiImpl) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	dbUser, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	user := a.mapper.User.FromDatabase(*dbUser)
	return &user, nil
}

func (a *apiImpl) Ping(ctx context.Context) error {
	if err := a.repo.Ping(ctx); err != nil {
		return fmt.Errorf("store unavailable: %w", err)
	}
	return nil
}

func invalidCredentials() error {
	err := errors.NewUnauthenticatedError("invalid credentials")
	err.Message = "Invalid email or password"
	return err
}
