package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"grocerly-be/internal/order"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type placeOrderRequest struct {
	PaymentMethod string `json:"paymentMethod"`
	PickupTime    string `json:"pickupTime,omitempty"`
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	params := order.PlaceOrderParams{
		PaymentMethod: order.PaymentMethod(strings.ToUpper(req.PaymentMethod)),
	}
	if req.PickupTime != "" {
		t, err := time.Parse(time.RFC3339, req.PickupTime)
		if err != nil {
			http.Error(w, "pickupTime must be RFC3339", http.StatusBadRequest)
			return
		}
		params.PickupTime = &t
	}

	o, err := s.Orders.PlaceOrder(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toOrderDTO(o))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.Orders.ListOrdersForCustomer(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, toOrderListDTO(orders))
}

func (s *Server) handleListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.Orders.ListAllOrders(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, toOrderListDTO(orders))
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	o, err := s.Orders.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, toOrderDTO(o))
}

func (s *Server) handleGetTracking(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	entries, err := s.Orders.GetTracking(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, toTrackingDTO(entries))
}

type kitchenTicketDTO struct {
	Order    orderDTO           `json:"order"`
	Customer *kitchenContactDTO `json:"customer,omitempty"`
}

type kitchenContactDTO struct {
	Name          string `json:"name"`
	PhoneNumber   string `json:"phoneNumber"`
	PickupAddress string `json:"pickupAddress"`
}

func (s *Server) handleKitchenTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	ticket, err := s.Orders.KitchenTicket(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	dto := kitchenTicketDTO{Order: toOrderDTO(ticket.Order)}
	if ticket.Customer != nil {
		dto.Customer = &kitchenContactDTO{
			Name:          ticket.Customer.Name,
			PhoneNumber:   ticket.Customer.PhoneNumber,
			PickupAddress: ticket.Customer.PickupAddress,
		}
	}
	render.JSON(w, r, dto)
}

func (s *Server) handleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	successURL := fmt.Sprintf("%s?orderId=%d", s.SuccessURL, id)
	cancelURL := fmt.Sprintf("%s?orderId=%d", s.FailureURL, id)

	sess, err := s.Broker.CreateSession(r.Context(), id, successURL, cancelURL)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{
		"sessionRef":  sess.Ref,
		"redirectUrl": sess.RedirectURL,
	})
}

// handlePollCheckoutSession is one poll step; clients repeat it on their own
// schedule until they observe a terminal state.
func (s *Server) handlePollCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if ref == "" {
		http.Error(w, "missing session ref", http.StatusBadRequest)
		return
	}

	status, err := s.Broker.Resolve(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, toSessionStatusDTO(status))
}

func (s *Server) handleCodSettlement(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	if err := s.Orders.MarkCodSettled(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleForceComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	if err := s.Orders.ForceComplete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "ok"})
}
