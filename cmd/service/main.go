package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cncraft/config"
	"cncraft/internal/cart"
	"cncraft/internal/cartstore"
	"cncraft/internal/database"
	"cncraft/internal/logger"
	"cncraft/internal/payment"
	"cncraft/internal/producer"
	"cncraft/internal/repository"
	"cncraft/internal/service"
	transport "cncraft/internal/transport/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	sessions, err := cartstore.NewRedisSessions(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer sessions.Close()

	repos := repository.New(db)
	store := cartstore.New(sessions, log)
	catalog := service.NewCatalogResolver(repos.Products)
	delivery := cart.DeliveryConfig{
		FreeDeliveryThreshold:      cfg.Delivery.FreeDeliveryThreshold,
		StandardDeliveryPercentage: cfg.Delivery.StandardDeliveryPercentage,
		Currency:                   cfg.Delivery.Currency,
	}

	provider := payment.NewStripeProvider(payment.StripeConfig{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Timeout:       cfg.Stripe.Timeout,
	}, log)

	// Event bus is optional: no brokers disables publishing
	var events service.EventBus
	if len(cfg.Kafka.Brokers) > 0 {
		emailProducer := producer.NewEmailProducer(cfg.Kafka.Brokers, cfg.Kafka.EmailTopic)
		defer emailProducer.Close()
		events = emailProducer
	}

	carts := service.NewCartService(store, catalog, delivery, log)
	checkout := service.NewCheckoutService(repos, store, catalog, provider, events, delivery, log)
	profiles := service.NewProfileService(repos, log)

	router := transport.Router(
		transport.NewCartHandler(carts, log),
		transport.NewCheckoutHandler(checkout, carts, profiles, provider, cfg.Stripe.PublicKey, log),
		transport.NewProfileHandler(profiles, log),
		log,
	)

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting storefront HTTP server", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down storefront HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("Storefront HTTP server stopped gracefully")
}
