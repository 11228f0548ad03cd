// Package apperr classifies failures raised by the core services so the HTTP
// layer can map them to status codes without inspecting driver errors.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindAuth        Kind = "auth"
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindPersistence Kind = "persistence"
)

// ErrUnauthenticated is returned when an operation runs without a current user.
var ErrUnauthenticated = errors.New("no authenticated user")

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) *Error {
	if err == nil {
		err = errors.New(string(kind))
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Auth(op string) *Error {
	return newError(KindAuth, op, ErrUnauthenticated)
}

func Validation(op, format string, args ...any) *Error {
	return newError(KindValidation, op, fmt.Errorf(format, args...))
}

func NotFound(op string, err error) *Error {
	return newError(KindNotFound, op, err)
}

func Persistence(op string, err error) *Error {
	return newError(KindPersistence, op, err)
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps err to a response status. Unclassified errors are 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuth:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns a client-safe message. Persistence details stay in the logs.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "Internal server error"
	}
	switch e.Kind {
	case KindPersistence:
		return "Internal server error"
	case KindNotFound:
		return "Not found"
	default:
		return e.Err.Error()
	}
}
