// Package apperr implements the error taxonomy of spec.md §7, grounded on
// the teacher's common/errors.go typed-error family and
// common/constant/errors.go sentinel catalogue.
package apperr

import "fmt"

// Code is one of the wire error codes enumerated in spec.md §6.1.
type Code string

const (
	CodeIntentNotFound      Code = "INTENT_NOT_FOUND"
	CodeValidationFailed    Code = "VALIDATION_FAILED"
	CodeForbidden           Code = "FORBIDDEN"
	CodeConcurrencyConflict Code = "CONCURRENCY_CONFLICT"
	CodeNotFound            Code = "NOT_FOUND"
	CodeStorageError        Code = "STORAGE_ERROR"
	CodePhysicsViolation    Code = "PHYSICS_VIOLATION"
	CodeAlreadyExists       Code = "ALREADY_EXISTS"
	CodeAgreementLifecycle  Code = "AGREEMENT_LIFECYCLE_INVALID"
	CodeUnauthenticated     Code = "UNAUTHENTICATED"
)

// Error is the uniform application error. Field is optional and only
// populated for field-scoped validation failures.
type Error struct {
	Code    Code
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func Field(code Code, message, field string) *Error {
	return &Error{Code: code, Message: message, Field: field}
}

func IntentNotFound(name string) *Error {
	return New(CodeIntentNotFound, fmt.Sprintf("intent %q is not registered", name))
}

func ValidationFailed(message string) *Error {
	return New(CodeValidationFailed, message)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, message)
}

func ConcurrencyConflict(aggregateID string, expected, got int) *Error {
	return New(CodeConcurrencyConflict, fmt.Sprintf(
		"aggregate %s: expected next version %d, got %d", aggregateID, expected, got))
}

func NotFound(entityType, id string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s %s not found", entityType, id))
}

func StorageError(err error) *Error {
	return Wrap(CodeStorageError, "storage operation failed", err)
}

func PhysicsViolation(reason string) *Error {
	return New(CodePhysicsViolation, reason)
}

func AlreadyExists(entityType, id string) *Error {
	return New(CodeAlreadyExists, fmt.Sprintf("%s %s already exists", entityType, id))
}

func AgreementLifecycleInvalid(from, event string) *Error {
	return New(CodeAgreementLifecycle, fmt.Sprintf("cannot apply %s from status %s", event, from))
}

func Unauthenticated(message string) *Error {
	return New(CodeUnauthenticated, message)
}

// As extracts an *Error from err, returning (nil, false) when err does not
// carry one — callers treat that case as an unclassified runtime failure.
func As(err error) (*Error, bool) {
	type causer interface{ Unwrap() error }

	for err != nil {
		if e, ok := err.(*Error); ok {
			return e, true
		}

		c, ok := err.(causer)
		if !ok {
			return nil, false
		}

		err = c.Unwrap()
	}

	return nil, false
}
