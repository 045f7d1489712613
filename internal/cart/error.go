package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrCartEmpty       = errors.New("cart is empty")
)
