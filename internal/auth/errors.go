package auth

import "errors"

var (
	ErrDuplicateIdentity = errors.New("username already registered")

	// ErrInvalidCredentials covers both unknown username and wrong password.
	// The two cases must stay indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers unknown, already-rotated and logged-out refresh
	// tokens.
	ErrInvalidToken = errors.New("invalid refresh token")

	// ErrStaleSession means the session's recorded access-token expiry has
	// lapsed and the session can no longer be rotated.
	ErrStaleSession = errors.New("session expired")

	ErrUnauthorized = errors.New("unauthorized")
)
