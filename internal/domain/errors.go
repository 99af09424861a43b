package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FieldError describes one invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports bad or missing input
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError with a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// NotFoundError reports a referenced entity that does not exist
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// ConflictError reports a duplicate natural key on create
type ConflictError struct {
	Entity string
	Key    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Entity, e.Key)
}

// ProviderError reports a failure of the external ATS
type ProviderError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s failed (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a later attempt may succeed
func (e *ProviderError) Retryable() bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode == http.StatusRequestTimeout:
		return true
	case e.StatusCode >= 500:
		return true
	case e.StatusCode == 0:
		return !errors.Is(e.Err, context.Canceled)
	}
	return false
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsProvider reports whether err is a ProviderError
func IsProvider(err error) bool {
	var target *ProviderError
	return errors.As(err, &target)
}

// ErrorKind classifies errors for the orchestration envelope
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindProvider   ErrorKind = "provider"
	KindInternal   ErrorKind = "internal"
)

// ErrorDetail is the caller-facing error description
type ErrorDetail struct {
	Kind    ErrorKind    `json:"kind"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// DescribeError maps err onto the caller-facing taxonomy
func DescribeError(err error) *ErrorDetail {
	if err == nil {
		return nil
	}

	var (
		verr *ValidationError
		nerr *NotFoundError
		cerr *ConflictError
		perr *ProviderError
	)
	switch {
	case errors.As(err, &verr):
		return &ErrorDetail{Kind: KindValidation, Message: verr.Error(), Fields: verr.Fields}
	case errors.As(err, &nerr):
		return &ErrorDetail{Kind: KindNotFound, Message: nerr.Error()}
	case errors.As(err, &cerr):
		return &ErrorDetail{Kind: KindConflict, Message: cerr.Error()}
	case errors.As(err, &perr):
		return &ErrorDetail{Kind: KindProvider, Message: perr.Error()}
	default:
		return &ErrorDetail{Kind: KindInternal, Message: err.Error()}
	}
}

// Result is the {success, data|error} envelope returned to the outer tier
type Result[T any] struct {
	Success bool         `json:"success"`
	Data    T            `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// Respond wraps a value/error pair into a Result
func Respond[T any](data T, err error) Result[T] {
	if err != nil {
		return Result[T]{Success: false, Error: DescribeError(err)}
	}
	return Result[T]{Success: true, Data: data}
}
