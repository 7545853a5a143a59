package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBusinessRule
	KindRateLimit
	KindLockTimeout
	KindValidation
	KindUnauthenticated
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindBusinessRule:
		return "BUSINESS_RULE_VIOLATION"
	case KindRateLimit:
		return "RATE_LIMIT_EXCEEDED"
	case KindLockTimeout:
		return "LOCK_TIMEOUT"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindUnauthorized:
		return "FORBIDDEN"
	default:
		return "INTERNAL_ERROR"
	}
}

// Retryable reports whether the same request may succeed if sent again shortly.
func (k Kind) Retryable() bool {
	return k == KindLockTimeout
}

// Error is the single error type surfaced by the submission and staff
// pipelines. Message is safe to show to clients; Err is kept for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrBusinessRule    = &Error{Kind: KindBusinessRule}
	ErrRateLimit       = &Error{Kind: KindRateLimit}
	ErrLockTimeout     = &Error{Kind: KindLockTimeout}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrInternal        = &Error{Kind: KindInternal}
)

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func BusinessRule(format string, args ...any) *Error {
	return &Error{Kind: KindBusinessRule, Message: fmt.Sprintf(format, args...)}
}

func RateLimit(format string, args ...any) *Error {
	return &Error{Kind: KindRateLimit, Message: fmt.Sprintf(format, args...)}
}

func LockTimeout(err error) *Error {
	return &Error{Kind: KindLockTimeout, Message: "Table is busy, please retry", Err: err}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Unexpected error occurred", Err: err}
}

// From converts any error into an *Error, wrapping unknown errors as Internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
