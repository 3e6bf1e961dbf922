// Package common defines shared constants and sentinel errors used across
// the service layers of hradmin. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrorValidation = errors.New("validation failed")

	// Credential errors produced by the codec.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Auth rejections. All of them match ErrorUnauthorized.
var (
	ErrUnauthenticated = fmt.Errorf("%w: no credential", ErrorUnauthorized)
	ErrAccountMissing  = fmt.Errorf("%w: account not found", ErrorUnauthorized)
	ErrSessionInvalid  = fmt.Errorf("%w: session is not active", ErrorUnauthorized)
	ErrBadCredentials  = fmt.Errorf("%w: wrong login name or password", ErrorUnauthorized)
	ErrAccountDisabled = fmt.Errorf("%w: account disabled", ErrorUnauthorized)
	ErrRoleMissing     = fmt.Errorf("%w: no role assigned", ErrorUnauthorized)
)
