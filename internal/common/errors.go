// Package common defines shared constants, helpers and sentinel errors used
// across the Cecil server and its operator CLI. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrVersionConflict = errors.New("version conflict")
	ErrInvalidID       = errors.New("invalid identifier")
	ErrInvalidInput    = errors.New("invalid input")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Token codec errors. Every verification failure collapses into this one
	// value so callers cannot tell a bad signature from an expired token.
	ErrInvalidToken = errors.New("invalid token")

	// Access control errors.
	ErrUnauthenticated       = errors.New("not authenticated")
	ErrInactiveUser          = errors.New("inactive user")
	ErrInsufficientPrivilege = errors.New("user lacks privilege")

	// Credential and registration errors.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidInviteCode  = errors.New("invalid invite code")
	ErrMismatch           = errors.New("new password and confirmation do not match")
)
