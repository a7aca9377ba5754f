package domain

import (
	"fmt"
	"strings"
	"time"
)

// FieldError attaches a validation message to a request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries one or more field errors. It is never retried and
// maps to 422 at the HTTP boundary.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RateLimitedError reports a throttled creation attempt.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// GoneError marks a resource that existed but has expired.
type GoneError struct {
	Resource string
}

func (e *GoneError) Error() string {
	return e.Resource + " has expired"
}

type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	if e.Reason == "" {
		return "access denied"
	}
	return e.Reason
}

type InvalidPasswordError struct{}

func (e *InvalidPasswordError) Error() string {
	return "invalid password"
}

// ExportGenerationError wraps any failure to produce an export artifact:
// renderer errors, storage write failures, render timeouts.
type ExportGenerationError struct {
	Cause error
}

func (e *ExportGenerationError) Error() string {
	return fmt.Sprintf("export generation failed: %v", e.Cause)
}

func (e *ExportGenerationError) Unwrap() error {
	return e.Cause
}
