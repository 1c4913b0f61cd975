package errors

import (
	"errors"
	"fmt"
)

// Domain error taxonomy for the transaction record service
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// PersistenceError wraps store failures. Handlers surface these as a generic
// service failure; the detail stays in the server logs.
type PersistenceError struct {
	Operation string
	Cause     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during '%s': %v", e.Operation, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

func NewPersistenceError(operation string, cause error) error {
	return &PersistenceError{
		Operation: operation,
		Cause:     cause,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrTransactionNotFound) || errors.Is(err, ErrUserNotFound)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidCredentials)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
