// Package apperror defines the application's error taxonomy.
//
// Services return these typed errors; the HTTP layer maps them to status
// codes in one place (handler/response.go). Nothing below the handlers
// knows about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUnauthenticated = errors.New("unauthenticated")
)

type AppError struct {
	Err     error  // sentinel for errors.Is checks
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound covers both genuinely absent records and records owned by a
// different session token. The two cases are indistinguishable on purpose:
// a caller probing ids must not learn whether a record exists.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(field, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
		Field:   field,
	}
}

// Unauthorized indicates a credential mismatch or a missing identity key
// during login. HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Unauthenticated indicates the request carried no usable session token
// where one is required. Also mapped to 401, but kept distinct so callers
// can tell "log in / get a session" apart from "wrong password".
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}
