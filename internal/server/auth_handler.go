package server

import (
	"net/http"

	"grocerly-be/internal/auth"

	"github.com/go-chi/render"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleAdminSetup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil || req.Username == "" || req.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	if err := s.Credentials.Bootstrap(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := s.Credentials.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"token": token})
}

type rotateRequest struct {
	Username    string `json:"username"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) handleAdminRotate(w http.ResponseWriter, r *http.Request) {
	var req rotateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil || req.Username == "" || req.NewPassword == "" {
		http.Error(w, "username and newPassword are required", http.StatusBadRequest)
		return
	}

	if err := s.Credentials.Rotate(r.Context(), req.Username, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"status": "ok"})
}

type registerCustomerRequest struct {
	Name          string `json:"name"`
	PhoneNumber   string `json:"phoneNumber"`
	PickupAddress string `json:"pickupAddress"`
}

func (s *Server) handleRegisterCustomer(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req registerCustomerRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	c, err := s.Customers.Register(r.Context(), principal, req.Name, req.PhoneNumber, req.PickupAddress)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, c)
}

func (s *Server) handleGetOwnProfile(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := s.Customers.GetByPrincipal(r.Context(), principal)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, c)
}
