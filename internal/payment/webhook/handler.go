package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"grocerly-be/internal/logger"
	"grocerly-be/internal/payment"

	"go.uber.org/zap"
)

// Payload is what the provider posts on session state changes. Only the
// session id matters: the handler re-resolves the authoritative state through
// the broker instead of trusting the pushed fields.
type Payload struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

type Handler struct {
	broker *payment.Broker
	token  string
}

func NewHandler(broker *payment.Broker, token string) *Handler {
	return &Handler{broker: broker, token: token}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Shared-token check only; cryptographic signature verification is the
	// provider integration's responsibility.
	if h.token != "" && r.Header.Get("X-Callback-Token") != h.token {
		http.Error(w, "invalid callback token", http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil || payload.SessionID == "" {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	log := logger.FromCtx(r.Context()).With(
		zap.String("session_ref", payload.SessionID),
		zap.String("pushed_status", payload.Status),
	)
	log.Info("payment webhook received")

	// A webhook racing a browser poll is safe: settlement is idempotent.
	_, err = h.broker.Resolve(r.Context(), payload.SessionID)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, payment.ErrSessionUnknown):
		http.Error(w, "unknown session", http.StatusNotFound)
	case errors.Is(err, payment.ErrProvider):
		// Inconclusive; the provider will redeliver.
		http.Error(w, "provider unavailable", http.StatusBadGateway)
	default:
		log.Error("failed to resolve session from webhook", zap.Error(err))
		http.Error(w, "failed to update order", http.StatusInternalServerError)
	}
}
