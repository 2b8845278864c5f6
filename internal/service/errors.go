package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error wraps exactly one of them, so callers classify
// failures with errors.Is.
var (
	ErrUnauthenticated  = errors.New("authentication credentials were not provided")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
)

// Error is a failure meant to be shown to the caller.
type Error struct {
	Kind    error
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Unauthenticated reports a request without a resolved identity.
func Unauthenticated() error {
	return &Error{Kind: ErrUnauthenticated}
}

// Denied reports an identified actor lacking the required role.
func Denied(format string, args ...any) error {
	return &Error{Kind: ErrPermissionDenied, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing resource, or one the actor may not know about.
func NotFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Invalid reports malformed input. details maps field names to offending values.
func Invalid(details map[string]any, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...), Details: details}
}

// DetailsOf returns the details of a service error, or nil.
func DetailsOf(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
