package domain

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced to callers. Match them with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrUnavailable     = errors.New("unavailable")
	ErrOperationFailed = errors.New("operation failed")
)

var kinds = []error{ErrNotFound, ErrInvalidArgument, ErrConflict, ErrUnavailable, ErrOperationFailed}

// Error carries a caller-facing message together with its failure kind.
type Error struct {
	Kind    error
	Message string
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

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func InvalidArgument(format string, args ...any) error {
	return newError(ErrInvalidArgument, format, args...)
}

func Conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

func Unavailable(format string, args ...any) error {
	return newError(ErrUnavailable, format, args...)
}

// OperationFailed hides the cause behind a generic message. The cause is
// meant for logs only.
func OperationFailed() error {
	return &Error{Kind: ErrOperationFailed, Message: "operation failed, please try again later"}
}

// KindOf returns the failure kind of err, or nil for errors that did not
// originate in the domain.
func KindOf(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// IsDomain reports whether err should be surfaced to the caller verbatim.
func IsDomain(err error) bool {
	kind := KindOf(err)
	return kind != nil && kind != ErrOperationFailed
}
