package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrPermissionDeny  = errors.New("permission denied")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTokenExpired    = errors.New("token expired")
	ErrMalformedToken  = errors.New("malformed token")
	ErrInvalidCreds    = errors.New("invalid credentials")
	ErrBadGateway      = errors.New("upstream provider failed")
	ErrConfiguration   = errors.New("server configuration error")
	ErrInternal        = errors.New("internal error")
)
