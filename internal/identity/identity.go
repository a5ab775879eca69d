// Package identity resolves the current actor to exactly one of
// registered user, anonymous profile, or none, and owns the
// account/session operations behind that.
package identity

import "errors"

// Sentinel errors — callers use errors.Is() instead of string matching.
var (
	// ErrNotFound covers any lookup that matched no rows. It is a
	// normal "create new" or "fall through" signal, never a resolution
	// failure by itself.
	ErrNotFound = errors.New("not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrSessionExpired     = errors.New("session expired")
)
