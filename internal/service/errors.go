package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/kanban-api/internal/board"
	"github.com/phrazzld/kanban-api/internal/store"
)

// Sentinel errors callers may check with errors.Is. Input errors from the
// board engine wrap board.ErrInvalidArgument and missing entities wrap
// store.ErrNotFound; both are passed through unchanged.
var (
	// ErrColumnNotEmpty is returned when deleting a column that still holds tasks.
	// API layer should map this to HTTP 409 Conflict.
	ErrColumnNotEmpty = board.ErrColumnNotEmpty

	// ErrRetriesExhausted is returned when an operation kept conflicting with
	// concurrent writers after every allowed retry.
	// API layer should map this to HTTP 409 Conflict.
	ErrRetriesExhausted = errors.New("operation kept conflicting with concurrent changes")
)

// ServiceError wraps unexpected failures with the operation that produced them.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("board service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("board service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// isExpected reports whether err is an outcome the caller is meant to handle
// (bad input, missing entity, non-empty column) rather than a failure.
func isExpected(err error) bool {
	return errors.Is(err, board.ErrInvalidArgument) ||
		errors.Is(err, ErrColumnNotEmpty) ||
		store.IsNotFoundError(err)
}
