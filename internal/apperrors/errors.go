// Package apperrors holds the error values shared by the composer packages.
package apperrors

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a session, line or snapshot does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotConfirmed is returned when the customer declines the submission.
	ErrNotConfirmed = errors.New("submission not confirmed")

	// ErrStorageUnavailable marks a persistence backend that cannot be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError carries field-scoped messages.
type ValidationError struct {
	Message string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: map[string]string{field: message},
	}
}

// NewFieldErrors creates a validation error from a set of field messages.
// Empty messages are dropped; nil is returned when nothing remains.
func NewFieldErrors(message string, fields map[string]string) *ValidationError {
	details := make(map[string]string, len(fields))
	for field, msg := range fields {
		if msg != "" {
			details[field] = msg
		}
	}
	if len(details) == 0 {
		return nil
	}
	return &ValidationError{Message: message, Details: details}
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}

	fields := make([]string, 0, len(e.Details))
	for field := range e.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.Details[field])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Field returns the message recorded for field, or "".
func (e *ValidationError) Field(field string) string {
	if e == nil {
		return ""
	}
	return e.Details[field]
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
