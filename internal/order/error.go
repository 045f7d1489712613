package order

import "errors"

var (
	ErrNotFound               = errors.New("order not found")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrPricing                = errors.New("cart references a product that no longer exists")
	ErrInvalidPaymentMethod   = errors.New("operation not valid for this payment method")
	ErrAlreadySettled         = errors.New("payment already settled")
	ErrInvalidStateTransition = errors.New("illegal order status transition")
)
