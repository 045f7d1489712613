package server

import (
	"errors"
	"net/http"

	"grocerly-be/internal/auth"
	"grocerly-be/internal/cart"
	"grocerly-be/internal/catalog"
	"grocerly-be/internal/customer"
	"grocerly-be/internal/logger"
	"grocerly-be/internal/order"
	"grocerly-be/internal/payment"

	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type errResponse struct {
	Error string `json:"error"`
}

// writeError maps domain sentinel errors onto HTTP statuses uniformly.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, payment.ErrSessionUnknown):
		status = http.StatusNotFound

	case errors.Is(err, auth.ErrForbidden):
		status = http.StatusForbidden

	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized

	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrPricing),
		errors.Is(err, order.ErrInvalidPaymentMethod),
		errors.Is(err, order.ErrInvalidStateTransition),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, catalog.ErrInvalidPrice),
		errors.Is(err, customer.ErrInvalidProfile):
		status = http.StatusUnprocessableEntity

	case errors.Is(err, order.ErrAlreadySettled),
		errors.Is(err, customer.ErrAlreadyRegistered),
		errors.Is(err, auth.ErrAlreadyBootstrapped):
		status = http.StatusConflict

	case errors.Is(err, payment.ErrProvider):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed", zap.Error(err))
	}

	render.Status(r, status)
	render.JSON(w, r, errResponse{Error: err.Error()})
}
