package domain

import "fmt"

type ErrorKind string

const (
	ErrInvalidSchedule   ErrorKind = "INVALID_SCHEDULE"
	ErrInvalidTransition ErrorKind = "INVALID_TRANSITION"
	ErrNotFound          ErrorKind = "NOT_FOUND"
	ErrUploadFailed      ErrorKind = "UPLOAD_FAILED"
	ErrSchemaViolation   ErrorKind = "SCHEMA_VIOLATION"
	ErrValidation        ErrorKind = "VALIDATION"
	ErrConflict          ErrorKind = "CONFLICT"
)

// Error is the user-displayable error returned by the workflow and the
// property detail validator. Path is set for schema violations.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Path    string    `json:"path,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, domain.NotFound("")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newErr(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func InvalidSchedule(format string, args ...any) *Error {
	return newErr(ErrInvalidSchedule, format, args...)
}

func InvalidTransition(op string, from State) *Error {
	return newErr(ErrInvalidTransition, "cannot %s an item in state %s", op, from)
}

func NotFound(id string) *Error { return newErr(ErrNotFound, "content %q not found", id) }

func ListingNotFound(id string) *Error { return newErr(ErrNotFound, "listing %q not found", id) }

func UploadFailed(cause error) *Error {
	e := newErr(ErrUploadFailed, "could not store the uploaded asset")
	e.cause = cause
	return e
}

func SchemaViolation(path, format string, args ...any) *Error {
	e := newErr(ErrSchemaViolation, format, args...)
	e.Path = path
	return e
}

func Validation(format string, args ...any) *Error { return newErr(ErrValidation, format, args...) }

func Conflict(id string) *Error {
	return newErr(ErrConflict, "content %q was modified concurrently, retry", id)
}

// KindOf returns the kind of a domain error, or "" for anything else.
func KindOf(err error) ErrorKind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
