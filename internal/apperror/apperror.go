package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrDispatch     = errors.New("dispatch failed")
)

// AppError pairs a sentinel error with a human-readable message so the
// HTTP layer can map it to a status code via errors.Is.
type AppError struct {
	Err     error
	Message string
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Dispatch wraps an outbound call placement failure for one reminder.
func Dispatch(reminderID string, err error) *AppError {
	return &AppError{
		Err:     ErrDispatch,
		Message: fmt.Sprintf("placing call for reminder %s: %v", reminderID, err),
	}
}
