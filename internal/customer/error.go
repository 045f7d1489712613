package customer

import "errors"

var (
	ErrNotFound          = errors.New("customer not found")
	ErrAlreadyRegistered = errors.New("customer already registered")
	ErrInvalidProfile    = errors.New("invalid customer profile")
)
