package payment

import (
	"context"
	"errors"
	"time"

	"grocerly-be/internal/logger"
	"grocerly-be/internal/metrics"
	"grocerly-be/internal/order"

	"go.uber.org/zap"
)

// PollConfig bounds a poll loop: one status fetch per Interval, abandoned
// after MaxDuration without a terminal state.
type PollConfig struct {
	Interval    time.Duration
	MaxDuration time.Duration
}

func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:    2 * time.Second,
		MaxDuration: 2 * time.Minute,
	}
}

// Broker bridges orders to the external payment provider and translates its
// terminal states into payment state machine calls. It holds no session state
// of its own beyond the redis index, so it survives re-instantiation mid-poll.
type Broker struct {
	gateway Gateway
	store   SessionStore
	orders  order.Service
	cfg     PollConfig
	metrics *metrics.Broker
}

func NewBroker(gateway Gateway, store SessionStore, orders order.Service, cfg PollConfig, m *metrics.Broker) *Broker {
	if m == nil {
		m = &metrics.Broker{}
	}
	return &Broker{
		gateway: gateway,
		store:   store,
		orders:  orders,
		cfg:     cfg,
		metrics: m,
	}
}

// sessionIndexTTL outlives the provider's own session expiry so late
// callbacks can still be matched to an order.
const sessionIndexTTL = 48 * time.Hour

// CreateSession opens a hosted checkout session for a card order with an
// unsettled payment. Provider failures propagate; the caller decides whether
// to retry.
func (b *Broker) CreateSession(ctx context.Context, orderID uint64, successURL, cancelURL string) (*Session, error) {
	o, err := b.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.PaymentMethod != order.MethodCardPayment {
		return nil, order.ErrInvalidPaymentMethod
	}
	if o.Payment.State() == order.PaymentStateCompleted {
		return nil, order.ErrAlreadySettled
	}
	if o.Status.Dead() {
		return nil, order.ErrInvalidStateTransition
	}

	if o.Payment.State() == order.PaymentStateFailed {
		// A failed attempt is terminal for that attempt only; the retry
		// re-enters pending before the new session opens.
		if err := b.orders.ReopenPayment(ctx, orderID); err != nil {
			return nil, err
		}
	}

	items := make([]LineItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, LineItem{
			Name:            it.Name,
			UnitAmountCents: it.UnitPriceCents,
			Quantity:        it.Quantity,
		})
	}

	sess, err := b.gateway.CreateCheckoutSession(ctx, items, successURL, cancelURL)
	if err != nil {
		return nil, err
	}

	if err := b.store.Put(ctx, sess.ID, orderID, sessionIndexTTL); err != nil {
		return nil, err
	}

	b.metrics.SessionsCreated.Inc()
	logger.FromCtx(ctx).Info("checkout session opened",
		zap.Uint64("order_id", orderID),
		zap.String("session_ref", sess.ID),
	)

	return &Session{Ref: sess.ID, RedirectURL: sess.RedirectURL, OrderID: orderID}, nil
}

// Resolve performs one poll step: fetch the provider state and, on a terminal
// observation, drive the payment state machine. Duplicate terminal
// observations are absorbed by the state machine's idempotence, not by any
// broker-side bookkeeping.
func (b *Broker) Resolve(ctx context.Context, sessionRef string) (*SessionStatus, error) {
	orderID, err := b.store.GetOrderID(ctx, sessionRef)
	if err != nil {
		return nil, err
	}

	b.metrics.Polls.Inc()

	status, err := b.gateway.GetSessionStatus(ctx, sessionRef)
	if err != nil {
		return nil, err
	}

	switch status.State {
	case SessionCompleted:
		if err := b.orders.MarkCompleted(ctx, orderID, sessionRef, status.AmountCents); err != nil {
			return nil, err
		}
		b.metrics.Settlements.Inc()
	case SessionFailed:
		if err := b.orders.MarkFailed(ctx, orderID, status.Reason); err != nil {
			return nil, err
		}
		b.metrics.Failures.Inc()
	}

	return status, nil
}

// PollUntilResolved polls on a fixed interval until the session resolves or
// the time budget runs out. Provider errors are inconclusive: the loop keeps
// polling on its schedule rather than failing the order. Abandoning the loop
// leaves the order in its last observed state.
func (b *Broker) PollUntilResolved(ctx context.Context, sessionRef string) (*SessionStatus, error) {
	log := logger.FromCtx(ctx).With(zap.String("session_ref", sessionRef))
	deadline := time.Now().Add(b.cfg.MaxDuration)

	timer := metrics.StartTimer()
	defer func() {
		b.metrics.PollDurationMillis.Add(uint64(timer.Duration().Milliseconds()))
	}()

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		status, err := b.Resolve(ctx, sessionRef)
		switch {
		case err == nil:
			if status.Terminal() {
				return status, nil
			}
		case errors.Is(err, ErrProvider):
			b.metrics.ProviderErrors.Inc()
			log.Warn("inconclusive poll, will retry", zap.Error(err))
		default:
			return nil, err
		}

		if time.Now().After(deadline) {
			log.Info("session poll abandoned")
			return nil, ErrPollAbandoned
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
