// Package common defines shared constants and sentinel errors used across
// client and server layers of accountkeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenMismatch = errors.New("refresh token does not match stored value")

	// Media store errors.
	ErrEmptyUpload = errors.New("media store returned no url")
)
