package server

import (
	"time"

	"grocerly-be/internal/order"
	"grocerly-be/internal/payment"
)

type paymentStatusDTO struct {
	State       string     `json:"state"`
	AmountCents *int64     `json:"amountCents,omitempty"`
	SessionRef  string     `json:"sessionRef,omitempty"`
	SettledAt   *time.Time `json:"settledAt,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

func toPaymentStatusDTO(p order.PaymentStatus) paymentStatusDTO {
	switch v := p.(type) {
	case order.PaymentCompleted:
		amount := v.AmountCents
		settledAt := v.SettledAt
		return paymentStatusDTO{
			State:       string(order.PaymentStateCompleted),
			AmountCents: &amount,
			SessionRef:  v.SessionRef,
			SettledAt:   &settledAt,
		}
	case order.PaymentFailed:
		return paymentStatusDTO{
			State:  string(order.PaymentStateFailed),
			Reason: v.Reason,
		}
	default:
		return paymentStatusDTO{State: string(order.PaymentStatePending)}
	}
}

type orderItemDTO struct {
	ProductID      uint64 `json:"productId"`
	Name           string `json:"name"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	SubtotalCents  int64  `json:"subtotalCents"`
}

type orderDTO struct {
	ID              uint64           `json:"id"`
	Status          string           `json:"status"`
	PaymentMethod   string           `json:"paymentMethod"`
	PaymentStatus   paymentStatusDTO `json:"paymentStatus"`
	Items           []orderItemDTO   `json:"items"`
	TotalPriceCents int64            `json:"totalPriceCents"`
	PickupTime      *time.Time       `json:"pickupTime,omitempty"`
	Timestamp       time.Time        `json:"timestamp"`
}

func toOrderDTO(o *order.Order) orderDTO {
	items := make([]orderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDTO{
			ProductID:      it.ProductID,
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			SubtotalCents:  it.SubtotalCents,
		})
	}
	return orderDTO{
		ID:              o.ID,
		Status:          string(o.Status),
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   toPaymentStatusDTO(o.Payment),
		Items:           items,
		TotalPriceCents: o.TotalPriceCents,
		PickupTime:      o.PickupTime,
		Timestamp:       o.CreatedAt,
	}
}

func toOrderListDTO(orders []*order.Order) []orderDTO {
	out := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderDTO(o))
	}
	return out
}

type trackingEntryDTO struct {
	Seq       int       `json:"seq"`
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

func toTrackingDTO(entries []order.TrackingEntry) []trackingEntryDTO {
	out := make([]trackingEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, trackingEntryDTO{
			Seq:       e.Seq,
			Status:    string(e.Status),
			Note:      e.Note,
			Timestamp: e.CreatedAt,
		})
	}
	return out
}

type sessionStatusDTO struct {
	State       string `json:"state"`
	AmountCents *int64 `json:"amountCents,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

func toSessionStatusDTO(s *payment.SessionStatus) sessionStatusDTO {
	dto := sessionStatusDTO{State: string(s.State)}
	switch s.State {
	case payment.SessionCompleted:
		amount := s.AmountCents
		dto.AmountCents = &amount
	case payment.SessionFailed:
		dto.Reason = s.Reason
	}
	return dto
}
