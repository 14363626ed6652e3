package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur during metrics operations.
var (
	// ErrInvalidRecord indicates that an InteractionRecord failed validation
	// before it could be appended to a collector.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidInput indicates that a comparison request was malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBudgetExceeded indicates that a run consumed more resources than
	// its budget allows.
	ErrBudgetExceeded = errors.New("budget exceeded")
)

// RecordError reports why an InteractionRecord was rejected. It names the
// offending field so the call site can be fixed directly.
type RecordError struct {
	// Field is the record field that failed validation.
	Field string

	// Reason describes what was wrong with the field's value.
	Reason string
}

// Error implements the error interface for RecordError.
func (e *RecordError) Error() string {
	return fmt.Sprintf("invalid record: field=%s, reason=%s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidRecord so errors.Is matches the sentinel.
func (e *RecordError) Unwrap() error { return ErrInvalidRecord }

// NewRecordError creates a RecordError for the given field and reason.
func NewRecordError(field, reason string) *RecordError {
	return &RecordError{Field: field, Reason: reason}
}

// InputError reports a malformed comparison request, such as a zero-count
// aggregate where records were required or a quality scalar out of range.
type InputError struct {
	// Field is the argument that failed validation.
	Field string

	// Reason describes what was wrong with the argument.
	Reason string
}

// Error implements the error interface for InputError.
func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: field=%s, reason=%s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidInput so errors.Is matches the sentinel.
func (e *InputError) Unwrap() error { return ErrInvalidInput }

// NewInputError creates an InputError for the given field and reason.
func NewInputError(field, reason string) *InputError {
	return &InputError{Field: field, Reason: reason}
}

// BudgetExceededError reports that a session hit one of its resource
// ceilings and must stop issuing LLM calls.
type BudgetExceededError struct {
	// Resource names the exhausted resource, "tokens" or "calls".
	Resource string

	// Used is the amount consumed including the attempted operation.
	Used int64

	// Limit is the configured maximum for the resource.
	Limit int64
}

// Error implements the error interface for BudgetExceededError.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: resource=%s, used=%d, limit=%d", e.Resource, e.Used, e.Limit)
}

// Unwrap returns ErrBudgetExceeded so errors.Is matches the sentinel.
func (e *BudgetExceededError) Unwrap() error { return ErrBudgetExceeded }

// NewBudgetExceededError creates a BudgetExceededError for the given
// resource and amounts.
func NewBudgetExceededError(resource string, used, limit int64) *BudgetExceededError {
	return &BudgetExceededError{Resource: resource, Used: used, Limit: limit}
}
