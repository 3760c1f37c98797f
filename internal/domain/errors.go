package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrAlreadyExists signals a duplicate document identifier.
	ErrAlreadyExists = errors.New("document already exists")
	// ErrValidation signals a malformed document record.
	ErrValidation = errors.New("invalid document")
	// ErrEmptyCorpus signals an index build attempted over zero documents.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrUnsupportedStrategy signals an unknown ranking strategy name.
	ErrUnsupportedStrategy = errors.New("unsupported ranking strategy")
)

// ValidationError wraps ErrValidation with the missing field name.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", ErrValidation.Error(), e.Field)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for a missing field.
func NewValidationError(field string) error {
	return &ValidationError{Field: field}
}
