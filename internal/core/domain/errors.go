package domain

import "errors"

// Token failures. Malformed tokens, bad signatures, undecodable payloads, and
// expiry all collapse to ErrInvalidToken so callers cannot be used as an
// oracle for which check failed. ErrWrongTokenType exists for internal
// logging; the HTTP layer maps it identically to ErrInvalidToken.
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Request-gate failures.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")
	ErrRateLimited     = errors.New("too many requests")
	ErrIPBlocked       = errors.New("access denied")
	ErrSuspiciousInput = errors.New("invalid request")
)

// Account failures.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
