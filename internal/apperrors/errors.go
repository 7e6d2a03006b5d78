// Package apperrors defines the error taxonomy surfaced by the ride engine.
// Every precondition violation maps to a stable kind so transports can
// translate errors without string matching.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindForbidden         Kind = "forbidden"
	KindConflict          Kind = "conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindExpired           Kind = "expired"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindInternal          Kind = "internal"
)

type Error struct {
	Kind    Kind
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

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validationf(format string, args ...interface{}) *Error {
	return Newf(KindValidation, format, args...)
}

func NotFound(entity string) *Error {
	return Newf(KindNotFound, "%s not found", entity)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func Expired(message string) *Error {
	return New(KindExpired, message)
}

func InsufficientFunds(message string) *Error {
	return New(KindInsufficientFunds, message)
}

// InvalidTransition names both the current and the attempted state, per the
// state machine's failure contract.
func InvalidTransition(current, attempted string) *Error {
	return Newf(KindInvalidTransition, "cannot %s a ride in %s state", attempted, current)
}

// KindOf extracts the kind from an error chain; unclassified errors are
// reported as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
