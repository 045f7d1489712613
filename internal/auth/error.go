package auth

import "errors"

var (
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyBootstrapped = errors.New("admin credentials already configured")
)
