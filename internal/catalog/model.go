package catalog

import "time"

type Product struct {
	ID          uint64
	Name        string
	Description string
	Category    string
	PriceCents  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PriceQuote is the snapshot an order captures at placement time. Orders never
// re-query the catalog afterwards.
type PriceQuote struct {
	ProductID  uint64
	Name       string
	PriceCents int64
}
