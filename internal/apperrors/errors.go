// Package apperrors defines the error taxonomy shared by services and
// handlers. Services return typed errors; the HTTP layer maps each type to a
// status code exactly once.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing, malformed or out-of-range input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation creates a field-level validation error.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// NewNotFound creates a referential-integrity error for the named entity.
func NewNotFound(entity string) *NotFoundError {
	return &NotFoundError{Entity: entity}
}

// UnauthorizedError reports a missing principal where one is required.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// NewUnauthorized creates an unauthenticated error.
func NewUnauthorized(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// ForbiddenError reports a principal lacking the role or ownership needed.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// NewForbidden creates a permission error.
func NewForbidden(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

// ConflictError reports an operation invalid in the record's current state,
// such as cancelling an already-cancelled booking.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflict creates a state-conflict error.
func NewConflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
