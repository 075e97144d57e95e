package auth

import "errors"

var (
	ErrNotFound       = errors.New("auth: not found")
	ErrUsernameTaken  = errors.New("auth: username already taken")
	ErrBadCredentials = errors.New("auth: bad credentials")
	ErrInvalidInput   = errors.New("auth: invalid input")
	ErrForbidden      = errors.New("auth: forbidden")

	// ErrInvalidToken covers missing, malformed, tampered and expired tokens.
	// Callers must not distinguish between those cases in responses.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrTokenRevoked indicates a refresh token replay. The client-facing
	// response stays generic; the distinction exists for server-side monitoring.
	ErrTokenRevoked = errors.New("auth: token revoked")
)
