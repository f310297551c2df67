// Package apperr is the failure taxonomy shared by guards and orchestrators.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies a failure by how it must be surfaced.
type Kind int

const (
	Unhandled Kind = iota
	Unauthenticated
	Forbidden
	NotFound
	ValidationFailed
	MissingImage
	StoreUnavailable
	// ExternalServiceDegraded is only ever logged; it never fails a request.
	ExternalServiceDegraded
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case ValidationFailed:
		return "validation_failed"
	case MissingImage:
		return "missing_image"
	case StoreUnavailable:
		return "store_unavailable"
	case ExternalServiceDegraded:
		return "external_service_degraded"
	default:
		return "unhandled"
	}
}

// Status maps a kind to the HTTP status used when it has to be rendered.
func (k Kind) Status() int {
	switch k {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case ValidationFailed, MissingImage:
		return http.StatusBadRequest
	case StoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Msg is safe to show to users; Err is the
// underlying cause and is only logged.
type Error struct {
	Kind   Kind
	Msg    string
	Fields []string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Validation builds a ValidationFailed error whose message joins all field messages.
func Validation(fields []string) *Error {
	return &Error{Kind: ValidationFailed, Msg: strings.Join(fields, ","), Fields: fields}
}

// KindOf extracts the kind of err; errors outside the taxonomy are Unhandled.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unhandled
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
