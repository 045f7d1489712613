package order

import (
	"context"
	"time"

	"grocerly-be/internal/auth"
	"grocerly-be/internal/customer"
	"grocerly-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	// PlaceOrder snapshots the caller's cart into a new pending order and
	// clears the cart atomically. Returns the new order id.
	PlaceOrder(ctx context.Context, params PlaceOrderParams) (*Order, error)
	GetOrder(ctx context.Context, orderID uint64) (*Order, error)
	ListOrdersForCustomer(ctx context.Context) ([]*Order, error)
	ListAllOrders(ctx context.Context) ([]*Order, error)
	GetTracking(ctx context.Context, orderID uint64) ([]TrackingEntry, error)

	// Payment state machine. MarkCompleted is idempotent per session ref;
	// settling the same session twice is a silent success, settling under a
	// different session fails loudly.
	MarkCompleted(ctx context.Context, orderID uint64, sessionRef string, amountCents int64) error
	MarkFailed(ctx context.Context, orderID uint64, reason string) error

	// ReopenPayment returns a failed payment to pending ahead of a new
	// checkout attempt on the same order.
	ReopenPayment(ctx context.Context, orderID uint64) error

	// Admin reconciliation.
	MarkCodSettled(ctx context.Context, orderID uint64) error
	ForceComplete(ctx context.Context, orderID uint64) error
	KitchenTicket(ctx context.Context, orderID uint64) (*KitchenTicket, error)
}

type PlaceOrderParams struct {
	PaymentMethod PaymentMethod
	PickupTime    *time.Time
}

type service struct {
	repo         Repository
	customerRepo customer.Repository
}

func NewService(repo Repository, customerRepo customer.Repository) Service {
	return &service{repo: repo, customerRepo: customerRepo}
}

func (s *service) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*Order, error) {
	principal, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if !params.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	o, err := s.repo.CreateOrderTx(ctx, principal, params.PaymentMethod, params.PickupTime)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order placed",
		zap.Uint64("order_id", o.ID),
		zap.String("payment_method", string(o.PaymentMethod)),
		zap.Int64("total_price_cents", o.TotalPriceCents),
		zap.Int("item_count", len(o.Items)),
	)
	return o, nil
}

// GetOrder returns the order if the caller owns it or is an admin.
func (s *service) GetOrder(ctx context.Context, orderID uint64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !auth.IsAdmin(ctx) {
		principal, ok := auth.PrincipalFrom(ctx)
		if !ok || principal != o.Principal {
			return nil, auth.ErrForbidden
		}
	}
	return o, nil
}

func (s *service) ListOrdersForCustomer(ctx context.Context) ([]*Order, error) {
	principal, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByPrincipal(ctx, principal)
}

func (s *service) ListAllOrders(ctx context.Context) ([]*Order, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx)
}

func (s *service) GetTracking(ctx context.Context, orderID uint64) ([]TrackingEntry, error) {
	// Ownership enforced by the order lookup.
	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.GetTracking(ctx, orderID)
}

func (s *service) MarkCompleted(ctx context.Context, orderID uint64, sessionRef string, amountCents int64) error {
	log := logger.FromCtx(ctx).With(
		zap.Uint64("order_id", orderID),
		zap.String("session_ref", sessionRef),
		zap.Int64("amount_cents", amountCents),
	)

	o, err := s.repo.SettleCompleted(ctx, orderID, sessionRef, amountCents)
	if err != nil {
		log.Warn("payment settlement rejected", zap.Error(err))
		return err
	}

	if o.TotalPriceCents != amountCents {
		// Provider amount is authoritative; the divergence is recorded for
		// reconciliation, not failed.
		log.Warn("settled amount differs from order total",
			zap.Int64("order_total_cents", o.TotalPriceCents),
		)
	}

	log.Info("payment settled", zap.String("status", string(o.Status)))
	return nil
}

func (s *service) MarkFailed(ctx context.Context, orderID uint64, reason string) error {
	_, err := s.repo.SettleFailed(ctx, orderID, reason)
	if err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("payment marked failed",
		zap.Uint64("order_id", orderID),
		zap.String("reason", reason),
	)
	return nil
}

func (s *service) ReopenPayment(ctx context.Context, orderID uint64) error {
	o, err := s.repo.ReopenPayment(ctx, orderID)
	if err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("payment reopened for retry",
		zap.Uint64("order_id", orderID),
		zap.String("payment_state", string(o.Payment.State())),
	)
	return nil
}

func (s *service) MarkCodSettled(ctx context.Context, orderID uint64) error {
	if err := auth.RequireAdmin(ctx); err != nil {
		return err
	}

	sessionRef := "cod-" + uuid.New().String()
	o, err := s.repo.SettleCod(ctx, orderID, sessionRef)
	if err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("cod order settled",
		zap.Uint64("order_id", orderID),
		zap.String("session_ref", sessionRef),
		zap.Int64("amount_cents", o.TotalPriceCents),
	)
	return nil
}

func (s *service) ForceComplete(ctx context.Context, orderID uint64) error {
	if err := auth.RequireAdmin(ctx); err != nil {
		return err
	}

	admin, _ := auth.PrincipalFrom(ctx)
	note := "Manual override: order force-completed by administrator"
	o, err := s.repo.ForceComplete(ctx, orderID, note)
	if err != nil {
		return err
	}

	// Distinct audit line so manual overrides are separable from automatic
	// transitions.
	logger.FromCtx(ctx).Warn("order force-completed",
		zap.Uint64("order_id", orderID),
		zap.String("admin_principal", admin),
		zap.String("payment_state", string(o.Payment.State())),
	)
	return nil
}

func (s *service) KitchenTicket(ctx context.Context, orderID uint64) (*KitchenTicket, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	ticket := &KitchenTicket{Order: o}

	// Contact details are best-effort; the ticket is still printable without.
	if c, err := s.customerRepo.GetByPrincipal(ctx, o.Principal); err == nil {
		ticket.Customer = c
	}
	return ticket, nil
}
