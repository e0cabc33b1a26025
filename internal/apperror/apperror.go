package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Kind classifies an error for the caller
type Kind int

const (
	// KindInternal covers store and concurrency failures
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	// KindCapacity means a sequence reached its ceiling. Not retryable.
	KindCapacity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindCapacity:
		return "capacity_exceeded"
	}
	return "internal"
}

// HTTPStatus maps the kind to a response status
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindCapacity:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Error is an error with a kind and a message safe to show to the caller
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

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed input or an unknown reference
func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

// NotFound reports a missing resource addressed by the request
func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// Conflict reports a uniqueness violation
func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// Duplicate turns a unique key violation reported by the store into a
// conflict carrying message. Other errors, and nil, are returned as is.
func Duplicate(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &Error{Kind: KindConflict, Message: message, Err: err}
	}
	return err
}

// Capacity reports an exhausted sequence
func Capacity(format string, args ...interface{}) *Error {
	return newf(KindCapacity, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Message returns the caller-facing message, or fallback for internal errors
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}
