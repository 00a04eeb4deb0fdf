// Package common defines shared constants and sentinel errors used across
// authgate components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Conflict errors raised by signup. The first two come from the
	// pre-insert existence check, the last one from the storage-level
	// uniqueness constraint when a concurrent signup won the race.
	ErrorEmailTaken    = errors.New("email already registered")
	ErrorUsernameTaken = errors.New("username already taken")
	ErrorConflict      = errors.New("concurrent update, retry")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
