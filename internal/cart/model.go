package cart

import "time"

// Item is one line of a customer's cart. Carts are exclusively owned by the
// customer identified by Principal; nothing else mutates them.
type Item struct {
	Principal  string
	ProductID  uint64
	Quantity   int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Name       string
	PriceCents int64
}

type AddItemParams struct {
	Principal string
	ProductID uint64
	Quantity  int64
}

type UpdateItemParams struct {
	Principal string
	ProductID uint64
	Quantity  int64
}
