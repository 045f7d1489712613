package order

import (
	"time"

	"grocerly-be/internal/customer"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusExpired   Status = "EXPIRED"
	StatusCanceled  Status = "CANCELED"
)

// Dead reports whether the order reached a terminal failure state. Settlement
// attempts against dead orders are illegal.
func (s Status) Dead() bool {
	return s == StatusExpired || s == StatusCanceled
}

type PaymentMethod string

const (
	MethodCardPayment    PaymentMethod = "CARD_PAYMENT"
	MethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodCardPayment || m == MethodCashOnDelivery
}

type PaymentState string

const (
	PaymentStatePending   PaymentState = "PENDING"
	PaymentStateCompleted PaymentState = "COMPLETED"
	PaymentStateFailed    PaymentState = "FAILED"
)

// PaymentStatus is a discriminated variant: each implementation carries only
// the fields meaningful to its state.
type PaymentStatus interface {
	State() PaymentState
}

type PaymentPending struct{}

func (PaymentPending) State() PaymentState { return PaymentStatePending }

type PaymentCompleted struct {
	AmountCents int64
	SessionRef  string
	SettledAt   time.Time
}

func (PaymentCompleted) State() PaymentState { return PaymentStateCompleted }

type PaymentFailed struct {
	Reason string
}

func (PaymentFailed) State() PaymentState { return PaymentStateFailed }

// Item is an order line snapshotted from the cart at placement time. Name and
// unit price are frozen; later catalog changes never touch historical orders.
type Item struct {
	ProductID      uint64
	Name           string
	Quantity       int64
	UnitPriceCents int64
	SubtotalCents  int64
}

type Order struct {
	ID              uint64
	Principal       string
	Status          Status
	PaymentMethod   PaymentMethod
	Payment         PaymentStatus
	Items           []Item
	TotalPriceCents int64
	PickupTime      *time.Time
	CreatedAt       time.Time
}

// TrackingEntry is one immutable audit record of the order timeline. Entries
// are append-only; the latest entry's status always equals the order's status.
type TrackingEntry struct {
	OrderID   uint64
	Seq       int
	Status    Status
	Note      string
	CreatedAt time.Time
}

// KitchenTicket is the read-only fulfillment projection of an order.
type KitchenTicket struct {
	Order    *Order
	Customer *customer.Customer
}
