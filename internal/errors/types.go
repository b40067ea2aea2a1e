package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents the category of error
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeDatabase
	ErrorTypeInvalidInput
	ErrorTypeTimeout
	ErrorTypeUnauthenticated
	ErrorTypeMalformed
)

type typeInfo struct {
	name   string
	status int
	// caller errors describe a bad request rather than a service fault
	caller bool
}

var types = map[ErrorType]typeInfo{
	ErrorTypeValidation:      {"validation", http.StatusBadRequest, true},
	ErrorTypeNotFound:        {"not_found", http.StatusNotFound, true},
	ErrorTypeDatabase:        {"database", http.StatusInternalServerError, false},
	ErrorTypeInvalidInput:    {"invalid_input", http.StatusBadRequest, true},
	ErrorTypeTimeout:         {"timeout", http.StatusInternalServerError, false},
	ErrorTypeUnauthenticated: {"unauthenticated", http.StatusUnauthorized, true},
	ErrorTypeMalformed:       {"malformed", http.StatusBadRequest, true},
}

// String returns the string representation of the error type
func (et ErrorType) String() string {
	if info, ok := types[et]; ok {
		return info.name
	}
	return "unknown"
}

// Status returns the HTTP status code for errors of this type
func (et ErrorType) Status() int {
	if info, ok := types[et]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// CallerFault reports whether errors of this type are caused by the request
func (et ErrorType) CallerFault() bool {
	return types[et].caller
}

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another AppError with the same type and code
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	return ok && e.Type == other.Type && e.Code == other.Code
}

// IsType checks if this error is of the specified type
func (e *AppError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}

// WithContext attaches a diagnostic value; it is never shown to callers
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GetContext returns a value attached with WithContext
func (e *AppError) GetContext(key string) (interface{}, bool) {
	value, ok := e.Context[key]
	return value, ok
}
