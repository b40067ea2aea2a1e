package cli

import (
	stderrors "errors"
	"fmt"

	"task-manager/internal/config"
	"task-manager/internal/errors"
	"task-manager/internal/validation"
)

// Exit codes returned by the tm binary
const (
	ExitFailure  = 1
	ExitUsage    = 2
	ExitNotFound = 3
)

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle provides user-friendly error messages for validation and other errors
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if ve, ok := validation.AsValidationError(err); ok {
		return &commandError{
			message: fmt.Sprintf("failed to %s: %s", operation, ve.GetUserFriendlyMessage()),
			cause:   err,
		}
	}

	if _, ok := errors.AsAppError(err); ok {
		return &commandError{
			message: fmt.Sprintf("failed to %s: %s", operation, errors.GetUserMessage(err)),
			cause:   err,
		}
	}

	return fmt.Errorf("failed to %s: %w", operation, err)
}

// commandError shows a friendly message but keeps the cause for ExitCode
type commandError struct {
	message string
	cause   error
}

func (e *commandError) Error() string { return e.message }
func (e *commandError) Unwrap() error { return e.cause }

// ExitCode maps an error returned by a command onto the process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var cfgErr *config.ConfigError
	if stderrors.As(err, &cfgErr) {
		return ExitUsage
	}

	if appErr, ok := errors.AsAppError(err); ok {
		switch appErr.Type {
		case errors.ErrorTypeValidation, errors.ErrorTypeInvalidInput, errors.ErrorTypeMalformed:
			return ExitUsage
		case errors.ErrorTypeNotFound:
			return ExitNotFound
		}
	}
	return ExitFailure
}
