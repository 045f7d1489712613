package server

import (
	"net/http"

	"grocerly-be/internal/auth"
	"grocerly-be/internal/cart"
	"grocerly-be/internal/catalog"
	"grocerly-be/internal/customer"
	"grocerly-be/internal/logger"
	appmiddleware "grocerly-be/internal/middleware"
	"grocerly-be/internal/order"
	"grocerly-be/internal/payment"
	"grocerly-be/internal/payment/webhook"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	Credentials auth.CredentialService
	Customers   customer.Service
	Catalog     catalog.Service
	Carts       cart.Service
	Orders      order.Service
	Broker      *payment.Broker

	SuccessURL   string
	FailureURL   string
	WebhookToken string
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(auth.Middleware)
	r.Use(appmiddleware.RateLimitMiddleware)
	r.Use(logger.LoggingMiddleware)

	r.Route("/auth/admin", func(r chi.Router) {
		r.Post("/setup", s.handleAdminSetup)
		r.Post("/login", s.handleAdminLogin)
		r.Post("/rotate", s.handleAdminRotate)
	})

	r.Post("/customers", s.handleRegisterCustomer)
	r.Get("/customers/me", s.handleGetOwnProfile)

	r.Get("/products", s.handleListProducts)
	r.Get("/products/{id}", s.handleGetProduct)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", s.handleGetCart)
		r.Delete("/", s.handleClearCart)
		r.Post("/items", s.handleAddCartItem)
		r.Put("/items/{productID}", s.handleUpdateCartItem)
		r.Delete("/items/{productID}", s.handleRemoveCartItem)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", s.handlePlaceOrder)
		r.Get("/", s.handleListOrders)
		r.Get("/{id}", s.handleGetOrder)
		r.Get("/{id}/tracking", s.handleGetTracking)
		r.Get("/{id}/kot", s.handleKitchenTicket)
		r.Post("/{id}/checkout", s.handleCreateCheckoutSession)
	})

	r.Get("/checkout/{ref}", s.handlePollCheckoutSession)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/orders", s.handleListAllOrders)
		r.Post("/orders/{id}/cod-settlement", s.handleCodSettlement)
		r.Post("/orders/{id}/force-complete", s.handleForceComplete)
		r.Post("/products", s.handleCreateProduct)
		r.Put("/products/{id}", s.handleUpdateProduct)
		r.Delete("/products/{id}", s.handleDeleteProduct)
	})

	r.Method(http.MethodPost, "/webhooks/payment", webhook.NewHandler(s.Broker, s.WebhookToken))

	return r
}
