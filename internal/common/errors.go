// Package common defines shared constants and sentinel errors used across
// the repository, service and transport layers. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrValidation = errors.New("validation error")

	// ErrPasswordTooLong is returned together with ErrValidation for
	// passwords bcrypt cannot hash (over 72 bytes).
	ErrPasswordTooLong = errors.New("password too long")

	// Credential flow errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnverifiedEmail    = errors.New("email is not verified")
	ErrMissingToken       = errors.New("missing token")

	// Token verification errors. ErrTokenExpired, ErrTokenMalformed and
	// ErrTokenSignatureInvalid all wrap ErrInvalidToken, so callers that
	// do not care about the kind can match ErrInvalidToken alone.
	ErrInvalidToken          = errors.New("invalid token")
	ErrTokenExpired          = tokenError("token expired")
	ErrTokenMalformed        = tokenError("token malformed")
	ErrTokenSignatureInvalid = tokenError("token signature invalid")
)

type tokenKindError struct {
	msg string
}

func tokenError(msg string) error { return &tokenKindError{msg: msg} }

func (e *tokenKindError) Error() string { return e.msg }

func (e *tokenKindError) Unwrap() error { return ErrInvalidToken }
