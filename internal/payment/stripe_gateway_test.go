package payment

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestStripeGateway_CreateCheckoutSession(t *testing.T) {
	secretKey := "sk_test_123"
	gw := NewStripeGateway(secretKey).(*stripeGateway)

	items := []LineItem{
		{Name: "Tomatoes", UnitAmountCents: 5000, Quantity: 2},
		{Name: "Basil", UnitAmountCents: 1500, Quantity: 1},
	}

	t.Run("Success", func(t *testing.T) {
		respBody := `{
			"id": "cs_test_1",
			"url": "https://checkout.stripe.com/c/pay/cs_test_1",
			"status": "open",
			"payment_status": "unpaid"
		}`

		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, "POST", req.Method)
			assert.Equal(t, "https://api.stripe.com/v1/checkout/sessions", req.URL.String())
			assert.Equal(t, "Bearer "+secretKey, req.Header.Get("Authorization"))
			assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))

			body, _ := io.ReadAll(req.Body)
			form := string(body)
			assert.Contains(t, form, "mode=payment")
			assert.Contains(t, form, "unit_amount%5D=5000")
			assert.Contains(t, form, "Tomatoes")

			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(respBody)),
				Header:     make(http.Header),
			}
		})

		sess, err := gw.CreateCheckoutSession(context.Background(), items, "https://shop.example/ok", "https://shop.example/no")
		require.NoError(t, err)
		assert.Equal(t, "cs_test_1", sess.ID)
		assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", sess.RedirectURL)
	})

	t.Run("APIError", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusBadRequest,
				Body:       io.NopCloser(bytes.NewBufferString(`{"error": {"message": "invalid request"}}`)),
				Header:     make(http.Header),
			}
		})

		_, err := gw.CreateCheckoutSession(context.Background(), items, "ok", "no")
		assert.ErrorIs(t, err, ErrProvider)
	})

	t.Run("NetworkError", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})

		_, err := gw.CreateCheckoutSession(context.Background(), items, "ok", "no")
		assert.ErrorIs(t, err, ErrProvider)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("InvalidJSONResponse", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(`{invalid-json`)),
				Header:     make(http.Header),
			}
		})

		_, err := gw.CreateCheckoutSession(context.Background(), items, "ok", "no")
		assert.ErrorIs(t, err, ErrProvider)
	})

	t.Run("MissingRedirectURL", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(`{"id": "cs_test_1", "status": "open"}`)),
				Header:     make(http.Header),
			}
		})

		_, err := gw.CreateCheckoutSession(context.Background(), items, "ok", "no")
		assert.ErrorIs(t, err, ErrProvider)
	})
}

func TestStripeGateway_GetSessionStatus(t *testing.T) {
	secretKey := "sk_test_123"
	gw := NewStripeGateway(secretKey).(*stripeGateway)

	t.Run("Open", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, "GET", req.Method)
			assert.Equal(t, "https://api.stripe.com/v1/checkout/sessions/cs_test_1", req.URL.String())
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(`{"id": "cs_test_1", "status": "open", "payment_status": "unpaid"}`)),
				Header:     make(http.Header),
			}
		})

		status, err := gw.GetSessionStatus(context.Background(), "cs_test_1")
		require.NoError(t, err)
		assert.Equal(t, SessionPending, status.State)
		assert.False(t, status.Terminal())
	})

	t.Run("CompleteAndPaid", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body: io.NopCloser(bytes.NewBufferString(
					`{"id": "cs_test_1", "status": "complete", "payment_status": "paid", "amount_total": 11500}`)),
				Header: make(http.Header),
			}
		})

		status, err := gw.GetSessionStatus(context.Background(), "cs_test_1")
		require.NoError(t, err)
		assert.Equal(t, SessionCompleted, status.State)
		assert.Equal(t, int64(11500), status.AmountCents)
		assert.True(t, status.Terminal())
	})

	t.Run("CompleteButUnpaid", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body: io.NopCloser(bytes.NewBufferString(
					`{"id": "cs_test_1", "status": "complete", "payment_status": "unpaid"}`)),
				Header: make(http.Header),
			}
		})

		status, err := gw.GetSessionStatus(context.Background(), "cs_test_1")
		require.NoError(t, err)
		assert.Equal(t, SessionPending, status.State)
	})

	t.Run("CompletedWithoutAmount", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body: io.NopCloser(bytes.NewBufferString(
					`{"id": "cs_test_1", "status": "complete", "payment_status": "paid"}`)),
				Header: make(http.Header),
			}
		})

		_, err := gw.GetSessionStatus(context.Background(), "cs_test_1")
		assert.ErrorIs(t, err, ErrProvider)
	})

	t.Run("Expired", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body: io.NopCloser(bytes.NewBufferString(
					`{"id": "cs_test_1", "status": "expired", "payment_status": "unpaid"}`)),
				Header: make(http.Header),
			}
		})

		status, err := gw.GetSessionStatus(context.Background(), "cs_test_1")
		require.NoError(t, err)
		assert.Equal(t, SessionFailed, status.State)
		assert.Equal(t, "checkout session expired", status.Reason)
		assert.True(t, status.Terminal())
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(`{"id": "cs_test_1", "status": "mystery"}`)),
				Header:     make(http.Header),
			}
		})

		_, err := gw.GetSessionStatus(context.Background(), "cs_test_1")
		assert.ErrorIs(t, err, ErrProvider)
	})

	t.Run("APIError", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       io.NopCloser(bytes.NewBufferString(`{"error": {"message": "no such session"}}`)),
				Header:     make(http.Header),
			}
		})

		_, err := gw.GetSessionStatus(context.Background(), "cs_test_1")
		assert.ErrorIs(t, err, ErrProvider)
	})

	t.Run("NetworkError", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("network error")
		})

		_, err := gw.GetSessionStatus(context.Background(), "cs_test_1")
		assert.ErrorIs(t, err, ErrProvider)
	})
}

func TestNewStripeGateway(t *testing.T) {
	t.Run("EmptyKey", func(t *testing.T) {
		gw := NewStripeGateway("")
		assert.NotNil(t, gw)
	})
}
