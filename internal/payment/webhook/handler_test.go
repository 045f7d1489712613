package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"grocerly-be/internal/order"
	"grocerly-be/internal/payment"

	"github.com/stretchr/testify/assert"
)

type fakeGateway struct {
	status *payment.SessionStatus
	err    error
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, items []payment.LineItem, successURL, cancelURL string) (*payment.ProviderSession, error) {
	return nil, payment.ErrProvider
}

func (g *fakeGateway) GetSessionStatus(ctx context.Context, sessionID string) (*payment.SessionStatus, error) {
	return g.status, g.err
}

type fakeStore struct {
	entries map[string]uint64
}

func (s *fakeStore) Put(ctx context.Context, sessionRef string, orderID uint64, ttl time.Duration) error {
	s.entries[sessionRef] = orderID
	return nil
}

func (s *fakeStore) GetOrderID(ctx context.Context, sessionRef string) (uint64, error) {
	id, ok := s.entries[sessionRef]
	if !ok {
		return 0, payment.ErrSessionUnknown
	}
	return id, nil
}

// fakeOrders records settlement calls; every other operation is unused here.
type fakeOrders struct {
	completed []uint64
	failed    []uint64
	err       error
}

func (f *fakeOrders) PlaceOrder(ctx context.Context, params order.PlaceOrderParams) (*order.Order, error) {
	return nil, nil
}
func (f *fakeOrders) GetOrder(ctx context.Context, orderID uint64) (*order.Order, error) {
	return nil, nil
}
func (f *fakeOrders) ListOrdersForCustomer(ctx context.Context) ([]*order.Order, error) {
	return nil, nil
}
func (f *fakeOrders) ListAllOrders(ctx context.Context) ([]*order.Order, error) { return nil, nil }
func (f *fakeOrders) GetTracking(ctx context.Context, orderID uint64) ([]order.TrackingEntry, error) {
	return nil, nil
}
func (f *fakeOrders) MarkCompleted(ctx context.Context, orderID uint64, sessionRef string, amountCents int64) error {
	f.completed = append(f.completed, orderID)
	return f.err
}
func (f *fakeOrders) MarkFailed(ctx context.Context, orderID uint64, reason string) error {
	f.failed = append(f.failed, orderID)
	return f.err
}
func (f *fakeOrders) ReopenPayment(ctx context.Context, orderID uint64) error { return nil }
func (f *fakeOrders) MarkCodSettled(ctx context.Context, orderID uint64) error { return nil }
func (f *fakeOrders) ForceComplete(ctx context.Context, orderID uint64) error  { return nil }
func (f *fakeOrders) KitchenTicket(ctx context.Context, orderID uint64) (*order.KitchenTicket, error) {
	return nil, nil
}

func newTestHandler(gw *fakeGateway, orders *fakeOrders, token string) *Handler {
	store := &fakeStore{entries: map[string]uint64{"sess_1": 1}}
	broker := payment.NewBroker(gw, store, orders, payment.DefaultPollConfig(), nil)
	return NewHandler(broker, token)
}

func TestHandler_ServeHTTP(t *testing.T) {
	t.Run("CompletedSession", func(t *testing.T) {
		gw := &fakeGateway{status: &payment.SessionStatus{State: payment.SessionCompleted, AmountCents: 10000}}
		orders := &fakeOrders{}
		h := newTestHandler(gw, orders, "")

		req := httptest.NewRequest("POST", "/webhooks/payment",
			strings.NewReader(`{"session_id": "sess_1", "status": "complete"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []uint64{1}, orders.completed)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		orders := &fakeOrders{}
		h := newTestHandler(&fakeGateway{}, orders, "expected-token")

		req := httptest.NewRequest("POST", "/webhooks/payment",
			strings.NewReader(`{"session_id": "sess_1"}`))
		req.Header.Set("X-Callback-Token", "wrong")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, orders.completed)
	})

	t.Run("ValidToken", func(t *testing.T) {
		gw := &fakeGateway{status: &payment.SessionStatus{State: payment.SessionPending}}
		h := newTestHandler(gw, &fakeOrders{}, "expected-token")

		req := httptest.NewRequest("POST", "/webhooks/payment",
			strings.NewReader(`{"session_id": "sess_1", "status": "open"}`))
		req.Header.Set("X-Callback-Token", "expected-token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		h := newTestHandler(&fakeGateway{}, &fakeOrders{}, "")

		req := httptest.NewRequest("POST", "/webhooks/payment", strings.NewReader(`{not-json`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("MissingSessionID", func(t *testing.T) {
		h := newTestHandler(&fakeGateway{}, &fakeOrders{}, "")

		req := httptest.NewRequest("POST", "/webhooks/payment", strings.NewReader(`{"status": "complete"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UnknownSession", func(t *testing.T) {
		h := newTestHandler(&fakeGateway{}, &fakeOrders{}, "")

		req := httptest.NewRequest("POST", "/webhooks/payment",
			strings.NewReader(`{"session_id": "sess_unknown"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("ProviderUnavailable", func(t *testing.T) {
		gw := &fakeGateway{err: payment.ErrProvider}
		h := newTestHandler(gw, &fakeOrders{}, "")

		req := httptest.NewRequest("POST", "/webhooks/payment",
			strings.NewReader(`{"session_id": "sess_1"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
