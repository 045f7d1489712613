package order

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Repository interface {
	// CreateOrderTx snapshots the customer's cart into a new order and clears
	// the cart in the same transaction. No observer ever sees the items in
	// both places, or in neither.
	CreateOrderTx(ctx context.Context, principal string, method PaymentMethod, pickupTime *time.Time) (*Order, error)

	GetByID(ctx context.Context, orderID uint64) (*Order, error)
	ListByPrincipal(ctx context.Context, principal string) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	GetTracking(ctx context.Context, orderID uint64) ([]TrackingEntry, error)

	// Settlement methods run the state-machine transition under a row lock so
	// concurrent attempts on the same order serialize.
	SettleCompleted(ctx context.Context, orderID uint64, sessionRef string, amountCents int64) (*Order, error)
	SettleFailed(ctx context.Context, orderID uint64, reason string) (*Order, error)
	SettleCod(ctx context.Context, orderID uint64, sessionRef string) (*Order, error)
	ForceComplete(ctx context.Context, orderID uint64, note string) (*Order, error)

	// ReopenPayment returns a failed payment to pending so a fresh checkout
	// attempt can run. Reopening an already-pending payment is a no-op.
	ReopenPayment(ctx context.Context, orderID uint64) (*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

const orderColumns = `
	id, customer_principal, status, payment_method,
	payment_state, payment_amount_cents, payment_session_ref,
	payment_failed_reason, payment_settled_at,
	total_price_cents, pickup_time, created_at
`

func scanOrder(row interface{ Scan(...interface{}) error }) (*Order, error) {
	var (
		o            Order
		state        string
		amountCents  sql.NullInt64
		sessionRef   sql.NullString
		failedReason sql.NullString
		settledAt    sql.NullTime
		pickupTime   sql.NullTime
	)

	err := row.Scan(
		&o.ID, &o.Principal, &o.Status, &o.PaymentMethod,
		&state, &amountCents, &sessionRef,
		&failedReason, &settledAt,
		&o.TotalPriceCents, &pickupTime, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if pickupTime.Valid {
		t := pickupTime.Time
		o.PickupTime = &t
	}

	switch PaymentState(state) {
	case PaymentStateCompleted:
		o.Payment = PaymentCompleted{
			AmountCents: amountCents.Int64,
			SessionRef:  sessionRef.String,
			SettledAt:   settledAt.Time,
		}
	case PaymentStateFailed:
		o.Payment = PaymentFailed{Reason: failedReason.String}
	default:
		o.Payment = PaymentPending{}
	}

	return &o, nil
}

func getOrder(ctx context.Context, q queryer, orderID uint64) (*Order, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, orderID)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := getItems(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func getItems(ctx context.Context, q queryer, orderID uint64) ([]Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT product_id, name, quantity, unit_price_cents, subtotal_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.UnitPriceCents, &it.SubtotalCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func appendTracking(ctx context.Context, tx *sql.Tx, orderID uint64, status Status, note string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_tracking (order_id, seq, status, note)
		SELECT $1, COALESCE(MAX(seq), 0) + 1, $2, $3
		FROM order_tracking
		WHERE order_id = $1
	`, orderID, status, note)
	return err
}

func (r *repository) CreateOrderTx(ctx context.Context, principal string, method PaymentMethod, pickupTime *time.Time) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT c.product_id, c.quantity, p.name, p.price_cents
		FROM carts c
		LEFT JOIN products p ON p.id = c.product_id
		WHERE c.customer_principal = $1
		ORDER BY c.created_at ASC
	`, principal)
	if err != nil {
		return nil, err
	}

	var (
		items []Item
		total int64
	)
	for rows.Next() {
		var (
			it    Item
			name  sql.NullString
			price sql.NullInt64
		)
		if err := rows.Scan(&it.ProductID, &it.Quantity, &name, &price); err != nil {
			rows.Close()
			return nil, err
		}
		if !name.Valid || !price.Valid {
			rows.Close()
			return nil, ErrPricing
		}
		it.Name = name.String
		it.UnitPriceCents = price.Int64
		it.SubtotalCents = it.UnitPriceCents * it.Quantity
		total += it.SubtotalCents
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	o := &Order{
		Principal:       principal,
		Status:          StatusPending,
		PaymentMethod:   method,
		Payment:         PaymentPending{},
		Items:           items,
		TotalPriceCents: total,
		PickupTime:      pickupTime,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			customer_principal, status, payment_method, payment_state,
			total_price_cents, pickup_time
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, principal, o.Status, method, PaymentStatePending, total, pickupTime).
		Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, name, quantity, unit_price_cents, subtotal_cents)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, o.ID, it.ProductID, it.Name, it.Quantity, it.UnitPriceCents, it.SubtotalCents)
		if err != nil {
			return nil, err
		}
	}

	if err := appendTracking(ctx, tx, o.ID, StatusPending, "Order created"); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE customer_principal = $1`, principal); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetByID(ctx context.Context, orderID uint64) (*Order, error) {
	return getOrder(ctx, r.db, orderID)
}

func (r *repository) listOrders(ctx context.Context, query string, args ...interface{}) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		items, err := getItems(ctx, r.db, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
	}
	return orders, nil
}

func (r *repository) ListByPrincipal(ctx context.Context, principal string) ([]*Order, error) {
	// Newest first, id breaks creation-time ties deterministically.
	return r.listOrders(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE customer_principal = $1
		ORDER BY created_at DESC, id DESC
	`, principal)
}

func (r *repository) ListAll(ctx context.Context) ([]*Order, error) {
	return r.listOrders(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC, id DESC
	`)
}

func (r *repository) GetTracking(ctx context.Context, orderID uint64) ([]TrackingEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, seq, status, note, created_at
		FROM order_tracking
		WHERE order_id = $1
		ORDER BY seq ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []TrackingEntry
	for rows.Next() {
		var e TrackingEntry
		if err := rows.Scan(&e.OrderID, &e.Seq, &e.Status, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// lockedOrder is the slice of an order the settlement transitions decide on.
type lockedOrder struct {
	status     Status
	method     PaymentMethod
	state      PaymentState
	sessionRef sql.NullString
	totalCents int64
}

func lockOrder(ctx context.Context, tx *sql.Tx, orderID uint64) (*lockedOrder, error) {
	var lo lockedOrder
	err := tx.QueryRowContext(ctx, `
		SELECT status, payment_method, payment_state, payment_session_ref, total_price_cents
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, orderID).Scan(&lo.status, &lo.method, &lo.state, &lo.sessionRef, &lo.totalCents)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lo, nil
}

func (r *repository) SettleCompleted(ctx context.Context, orderID uint64, sessionRef string, amountCents int64) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	lo, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if lo.state == PaymentStateCompleted {
		if lo.sessionRef.Valid && lo.sessionRef.String == sessionRef {
			// Same session settling again: idempotent no-op.
			o, err := getOrder(ctx, tx, orderID)
			if err != nil {
				return nil, err
			}
			return o, tx.Commit()
		}
		return nil, ErrAlreadySettled
	}

	if lo.status.Dead() {
		return nil, ErrInvalidStateTransition
	}

	newStatus := lo.status
	if newStatus == StatusPending {
		newStatus = StatusConfirmed
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET payment_state = $1, payment_amount_cents = $2, payment_session_ref = $3,
		    payment_settled_at = NOW(), payment_failed_reason = NULL, status = $4
		WHERE id = $5
	`, PaymentStateCompleted, amountCents, sessionRef, newStatus, orderID)
	if err != nil {
		return nil, err
	}

	note := fmt.Sprintf("Payment settled via checkout session %s", sessionRef)
	if err := appendTracking(ctx, tx, orderID, newStatus, note); err != nil {
		return nil, err
	}

	o, err := getOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	return o, tx.Commit()
}

func (r *repository) SettleFailed(ctx context.Context, orderID uint64, reason string) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	lo, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if lo.state == PaymentStateCompleted {
		// No transition out of completed.
		return nil, ErrAlreadySettled
	}
	if lo.status.Dead() {
		return nil, ErrInvalidStateTransition
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET payment_state = $1, payment_failed_reason = $2
		WHERE id = $3
	`, PaymentStateFailed, reason, orderID)
	if err != nil {
		return nil, err
	}

	// The order stays pending so the customer can retry checkout.
	note := fmt.Sprintf("Payment failed: %s", reason)
	if err := appendTracking(ctx, tx, orderID, lo.status, note); err != nil {
		return nil, err
	}

	o, err := getOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	return o, tx.Commit()
}

func (r *repository) ReopenPayment(ctx context.Context, orderID uint64) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	lo, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if lo.state == PaymentStateCompleted {
		return nil, ErrAlreadySettled
	}
	if lo.status.Dead() {
		return nil, ErrInvalidStateTransition
	}

	if lo.state == PaymentStatePending {
		o, err := getOrder(ctx, tx, orderID)
		if err != nil {
			return nil, err
		}
		return o, tx.Commit()
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET payment_state = $1, payment_failed_reason = NULL
		WHERE id = $2
	`, PaymentStatePending, orderID)
	if err != nil {
		return nil, err
	}

	if err := appendTracking(ctx, tx, orderID, lo.status, "Payment attempt reopened for retry"); err != nil {
		return nil, err
	}

	o, err := getOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	return o, tx.Commit()
}

func (r *repository) SettleCod(ctx context.Context, orderID uint64, sessionRef string) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	lo, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if lo.method != MethodCashOnDelivery {
		return nil, ErrInvalidPaymentMethod
	}
	if lo.state != PaymentStatePending {
		return nil, ErrAlreadySettled
	}
	if lo.status.Dead() {
		return nil, ErrInvalidStateTransition
	}

	// COD settlement implies fulfillment confirmation, so the order jumps
	// straight to completed.
	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET payment_state = $1, payment_amount_cents = $2, payment_session_ref = $3,
		    payment_settled_at = NOW(), status = $4
		WHERE id = $5
	`, PaymentStateCompleted, lo.totalCents, sessionRef, StatusCompleted, orderID)
	if err != nil {
		return nil, err
	}

	if err := appendTracking(ctx, tx, orderID, StatusCompleted, "Cash on delivery settled by admin"); err != nil {
		return nil, err
	}

	o, err := getOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	return o, tx.Commit()
}

func (r *repository) ForceComplete(ctx context.Context, orderID uint64, note string) (*Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	lo, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	if lo.status == StatusCompleted {
		o, err := getOrder(ctx, tx, orderID)
		if err != nil {
			return nil, err
		}
		return o, tx.Commit()
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET status = $1 WHERE id = $2
	`, StatusCompleted, orderID)
	if err != nil {
		return nil, err
	}

	if err := appendTracking(ctx, tx, orderID, StatusCompleted, note); err != nil {
		return nil, err
	}

	o, err := getOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	return o, tx.Commit()
}
