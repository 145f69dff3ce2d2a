// Package errs holds the error kinds shared by the upload workflow and the
// HTTP layer, and the mapping between them.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/multierr"
)

var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrConflict            = errors.New("already exists")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrMetadataWriteFailed = errors.New("metadata write failed")
	ErrUnknown             = errors.New("unknown error")
)

type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}

	return e.msg
}

func (e *kindError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}

	return []error{e.kind, e.cause}
}

// New returns an error of the given kind carrying a client facing message.
func New(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap is like New but keeps the underlying cause for logging.
func Wrap(kind, cause error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...), cause: cause}
}

// Attempt is one try against a single storage target.
type Attempt struct {
	Bucket string
	Key    string
	Err    error
}

// AllFailedError is returned when every storage target rejected an operation.
type AllFailedError struct {
	Attempts []Attempt
}

func (e *AllFailedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s/%s: %v", a.Bucket, a.Key, a.Err))
	}

	return "all storage targets failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the kind and the individual attempt errors to errors.Is/As.
func (e *AllFailedError) Unwrap() []error {
	if cause := e.Cause(); cause != nil {
		return []error{ErrStorageUnavailable, cause}
	}

	return []error{ErrStorageUnavailable}
}

// Cause combines the attempt errors into a single error.
func (e *AllFailedError) Cause() error {
	var err error
	for _, a := range e.Attempts {
		err = multierr.Append(err, a.Err)
	}

	return err
}

// Status returns the HTTP status code for an error.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text shown to API clients. Internal details of
// unexpected errors are not exposed.
func Message(err error) string {
	var ke *kindError
	if errors.As(err, &ke) && ke.kind != ErrUnknown {
		return capitalize(ke.msg)
	}

	switch {
	case errors.Is(err, ErrStorageUnavailable):
		return "Failed to generate upload URL. Storage is not available"
	case errors.Is(err, ErrMetadataWriteFailed):
		return "Failed to create file record"
	case errors.Is(err, ErrNotAuthenticated):
		return "User not authenticated"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrValidation):
		return "Invalid request"
	case errors.Is(err, ErrConflict):
		return "Already exists"
	default:
		return "Internal server error"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
