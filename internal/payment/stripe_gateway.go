package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"grocerly-be/internal/logger"

	"go.uber.org/zap"
)

const stripeBaseURL = "https://api.stripe.com"

type stripeGateway struct {
	secretKey  string
	httpClient *http.Client
}

func NewStripeGateway(secretKey string) Gateway {
	if secretKey == "" {
		logger.L().Warn("Stripe secret key is empty")
	}

	return &stripeGateway{
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// stripeSession is the subset of the checkout session payload we consume.
// Pointers keep absent fields distinguishable from zero values.
type stripeSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   *int64 `json:"amount_total"`
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, items []LineItem, successURL, cancelURL string) (*ProviderSession, error) {
	log := logger.FromCtx(ctx).With(zap.Int("item_count", len(items)))

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	for i, item := range items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", "usd")
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmountCents, 10))
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[quantity]", strconv.FormatInt(item.Quantity, 10))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", stripeBaseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	log.Info("creating checkout session with provider")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("provider request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("provider returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}

	var sess stripeSession
	if err := json.Unmarshal(bodyBytes, &sess); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrProvider, err)
	}
	if sess.ID == "" || sess.URL == "" {
		log.Error("provider session missing id or url", zap.ByteString("response", bodyBytes))
		return nil, fmt.Errorf("%w: session missing id or url", ErrProvider)
	}

	log.Info("checkout session created", zap.String("session_id", sess.ID))

	return &ProviderSession{ID: sess.ID, RedirectURL: sess.URL}, nil
}

func (g *stripeGateway) GetSessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	log := logger.FromCtx(ctx).With(zap.String("session_id", sessionID))

	req, err := http.NewRequestWithContext(ctx, "GET", stripeBaseURL+"/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("provider status request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("provider returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}

	var sess stripeSession
	if err := json.Unmarshal(bodyBytes, &sess); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrProvider, err)
	}

	return translateSession(&sess, bodyBytes)
}

// translateSession maps the provider lifecycle onto the broker's session
// states. amount_total is the authoritative settled amount and must be
// present on a completed session.
func translateSession(sess *stripeSession, raw []byte) (*SessionStatus, error) {
	status := &SessionStatus{Raw: json.RawMessage(raw)}

	switch sess.Status {
	case "complete":
		if sess.PaymentStatus != "paid" {
			// Complete but unpaid happens for zero-amount or delayed methods;
			// neither applies here, so treat it as still pending.
			status.State = SessionPending
			return status, nil
		}
		if sess.AmountTotal == nil {
			return nil, fmt.Errorf("%w: completed session missing amount_total", ErrProvider)
		}
		status.State = SessionCompleted
		status.AmountCents = *sess.AmountTotal
		return status, nil
	case "expired":
		status.State = SessionFailed
		status.Reason = "checkout session expired"
		return status, nil
	case "open":
		status.State = SessionPending
		return status, nil
	default:
		return nil, fmt.Errorf("%w: unknown session status %q", ErrProvider, sess.Status)
	}
}
