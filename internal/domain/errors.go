// Package domain holds sentinel errors shared across layers.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownBackend signals a search request against an unconfigured backend.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrBackendUnavailable signals a backend that could not be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrInvalidContext signals a malformed data context.
	ErrInvalidContext = errors.New("invalid data context")
	// ErrFieldValidation signals a field-level configuration validation failure.
	ErrFieldValidation = errors.New("field validation failed")
	// ErrTermNotFound signals a taxonomy term that could not be resolved.
	ErrTermNotFound = errors.New("term not found")
)

// FieldValidationError rejects a configuration value for a specific field,
// e.g. a sort field the backend reports as not sortable. It surfaces as a
// validation message at configuration time, never as a runtime query failure.
type FieldValidationError struct {
	Field   string
	Message string
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", ErrFieldValidation.Error(), e.Field, e.Message)
}

func (e *FieldValidationError) Unwrap() error { return ErrFieldValidation }

// NewFieldValidation creates a field-level validation error.
func NewFieldValidation(field, message string) error {
	return &FieldValidationError{Field: field, Message: message}
}

// BackendError carries the status and message of a failed backend HTTP call.
// The pipeline does not retry; retry policy belongs to the transport.
type BackendError struct {
	Backend string
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s returned %d: %s",
		ErrBackendUnavailable.Error(), e.Backend, e.Status, e.Message)
}

func (e *BackendError) Unwrap() error { return ErrBackendUnavailable }
