package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to HTTP statuses; services return them
// wrapped in an *Error carrying the human-readable message.
var (
	ErrValidation          = errors.New("validation failed")
	ErrAccessDenied        = errors.New("access denied")
	ErrNotFound            = errors.New("not found")
	ErrDuplicateMembership = errors.New("duplicate membership")
)

// Error wraps a kind with a message suitable for the caller.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

// Message returns the caller-facing text without the kind prefix.
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func Deniedf(format string, args ...any) error {
	return &Error{Kind: ErrAccessDenied, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Duplicatef(format string, args ...any) error {
	return &Error{Kind: ErrDuplicateMembership, Msg: fmt.Sprintf(format, args...)}
}
