package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ValidationError collects field level input errors. A nil or empty ValidationError means valid input.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{
		Fields: make(map[string][]string),
	}
}

func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields[field] = append(e.Fields[field], message)
	return e
}

// Merge copies the field errors of err into e. Errors that are not validation errors are ignored.
func (e *ValidationError) Merge(err error) *ValidationError {
	if other, ok := AsValidationError(err); ok {
		for field, messages := range other.Fields {
			for _, message := range messages {
				e.Add(field, message)
			}
		}
	}
	return e
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil returns e as an error when it holds at least one field error.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var parts []string
	for _, field := range fields {
		for _, message := range e.Fields[field] {
			parts = append(parts, fmt.Sprintf("%s: %s", field, message))
		}
	}
	return "validation failed: " + strings.Join(parts, " | ")
}

// NewFieldError is shorthand for a single-field validation failure.
func NewFieldError(field, message string) error {
	return NewValidationError().Add(field, message)
}

func AsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}
