package tenants

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for callers. Kinds are stable and
// machine-readable; handlers map them to HTTP statuses.
type ErrorKind string

const (
	ErrKindConflict       ErrorKind = "conflict"
	ErrKindNotFound       ErrorKind = "not_found"
	ErrKindForbidden      ErrorKind = "forbidden"
	ErrKindUnauthorized   ErrorKind = "unauthorized"
	ErrKindValidation     ErrorKind = "validation"
	ErrKindTransient      ErrorKind = "transient"
	ErrKindPartialFailure ErrorKind = "partial_failure"
	ErrKindInternal       ErrorKind = "internal"
)

// Error is the typed failure crossing the service boundary. No internal
// error leaves the orchestrator unconverted.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a typed error with a caller-facing message
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates a typed error wrapping an underlying cause
func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the classification of err, or ErrKindInternal for
// anything untyped.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ErrKindInternal
}

// IsConflict reports whether err is a duplicate name/partition failure
func IsConflict(err error) bool { return KindOf(err) == ErrKindConflict }

// IsNotFound reports whether err is an absent organization/record failure
func IsNotFound(err error) bool { return KindOf(err) == ErrKindNotFound }

// IsForbidden reports whether err is an ownership violation
func IsForbidden(err error) bool { return KindOf(err) == ErrKindForbidden }

// IsUnauthorized reports whether err is an authentication failure
func IsUnauthorized(err error) bool { return KindOf(err) == ErrKindUnauthorized }

// IsValidation reports whether err is a malformed-input failure
func IsValidation(err error) bool { return KindOf(err) == ErrKindValidation }

// IsTransient reports whether err is a retryable store failure
func IsTransient(err error) bool { return KindOf(err) == ErrKindTransient }

// IsPartialFailure reports whether a multi-step sequence aborted partway
// without full rollback. These are logged distinctly and need operator
// attention until a reconciliation path exists.
func IsPartialFailure(err error) bool { return KindOf(err) == ErrKindPartialFailure }

// genericLoginMessage deliberately collapses "no such email" and "bad
// password" so the response does not reveal account existence.
const genericLoginMessage = "invalid email or password"
