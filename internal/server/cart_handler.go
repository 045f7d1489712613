package server

import (
	"net/http"

	"grocerly-be/internal/auth"
	"grocerly-be/internal/cart"

	"github.com/go-chi/render"
)

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := s.Carts.GetCart(r.Context(), principal)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, items)
}

type addCartItemRequest struct {
	ProductID uint64 `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req addCartItemRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	err = s.Carts.AddItem(r.Context(), cart.AddItemParams{
		Principal: principal,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"status": "ok"})
}

type updateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	productID, ok := parseID(r, "productID")
	if !ok {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	var req updateCartItemRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	err = s.Carts.UpdateItem(r.Context(), cart.UpdateItemParams{
		Principal: principal,
		ProductID: productID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	productID, ok := parseID(r, "productID")
	if !ok {
		http.Error(w, "invalid product id", http.StatusBadRequest)
		return
	}

	if err := s.Carts.RemoveItem(r.Context(), principal, productID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.Carts.Clear(r.Context(), principal); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
