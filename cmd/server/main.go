package main

import (
	"log"
	"net/http"
	"time"

	"grocerly-be/internal/auth"
	"grocerly-be/internal/cart"
	"grocerly-be/internal/catalog"
	"grocerly-be/internal/config"
	"grocerly-be/internal/customer"
	"grocerly-be/internal/db"
	"grocerly-be/internal/logger"
	"grocerly-be/internal/metrics"
	"grocerly-be/internal/order"
	"grocerly-be/internal/payment"
	"grocerly-be/internal/server"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	credentialRepo := auth.NewCredentialRepository(database)
	credentialSvc := auth.NewCredentialService(credentialRepo)

	customerRepo := customer.NewRepository(database)
	customerSvc := customer.NewService(customerRepo)

	catalogRepo := catalog.NewRepository(database)
	catalogSvc := catalog.NewService(catalogRepo)

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, catalogRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, customerRepo)

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey)
	sessionStore := payment.NewRedisSessionStore(redisClient)
	broker := payment.NewBroker(gateway, sessionStore, orderSvc, payment.DefaultPollConfig(), &metrics.Broker{})

	srv := &server.Server{
		Credentials:  credentialSvc,
		Customers:    customerSvc,
		Catalog:      catalogSvc,
		Carts:        cartSvc,
		Orders:       orderSvc,
		Broker:       broker,
		SuccessURL:   cfg.SuccessURL,
		FailureURL:   cfg.FailureURL,
		WebhookToken: cfg.WebhookToken,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("server running at http://localhost:%s/", cfg.AppPort)
	log.Fatal(httpServer.ListenAndServe())
}
