// Package service provides application-level services for managing tasks
// and their attached files. Services orchestrate the stores and the storage
// gateway; they own the sequencing rules (upload before insert, best-effort
// cleanup) and leave HTTP concerns to the API layer.
package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service
// implementations. Callers check for these with errors.Is(); the API layer
// maps them to HTTP status codes.
var (
	// ErrInvalidFilename indicates an upload carried a filename whose base
	// name is empty or unusable as an object key.
	ErrInvalidFilename = errors.New("invalid filename")
)

// TaskServiceError is a custom error type for task service failures. It
// records which operation failed while preserving the underlying cause for
// errors.Is/errors.As checks.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
