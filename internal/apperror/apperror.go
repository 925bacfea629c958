package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrBusy       = errors.New("busy")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Busy signals that the worker pool and its queue are both full. HTTP
// handlers map this to 503 so callers know to back off and retry.
func Busy(capacity int) *AppError {
	return &AppError{
		Err:     ErrBusy,
		Message: fmt.Sprintf("execution queue is full (capacity %d), retry later", capacity),
	}
}
