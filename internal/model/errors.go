package model

import "errors"

// Sentinel errors.
var (
	ErrNotFound     = errors.New("game not found")
	ErrLastCategory = errors.New("game must belong to at least one category")
	ErrCancelled    = errors.New("cancelled by user")
)

// ValidationError reports a constraint violated by a game on create or update.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError returns a ValidationError for the given field.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// StorageError wraps a failure of the underlying database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
