package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/example/catalog-aggregator/internal/api"
	"github.com/example/catalog-aggregator/internal/auth"
	"github.com/example/catalog-aggregator/internal/config"
	"github.com/example/catalog-aggregator/internal/infrastructure/kafka"
	"github.com/example/catalog-aggregator/internal/infrastructure/store"
	"github.com/example/catalog-aggregator/internal/inventory"
	"github.com/example/catalog-aggregator/internal/projection"
	"github.com/example/catalog-aggregator/internal/query"
)

func main() {
	if err := run(); err != nil {
		slog.Error("catalog-aggregator stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if len(cfg.Auth.JWTSecret) < auth.MinSecretLength {
		return &config.FieldError{Field: "auth.jwt_secret", Message: "must be at least 32 characters long"}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.ConnectPostgres(cfg.Postgres)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	log.Info("connected to postgres")

	products := store.NewGormProductStore(db)

	caches, err := query.NewCaches(cfg.Cache)
	if err != nil {
		return err
	}

	inventoryClient, err := inventory.NewClient(cfg.Inventory.Target, cfg.Inventory.Timeout, cfg.Inventory.BatchTimeout, log)
	if err != nil {
		return err
	}
	defer inventoryClient.Close()

	queries := query.NewHandler(query.Deps{
		Products:  products,
		Reviews:   store.NewGormReviewStore(db),
		Catalog:   store.NewGormCatalogStore(db),
		Relations: store.NewGormRelationSource(db),
		Caches:    caches,
		Enricher:  inventory.NewEnricher(inventoryClient, log),
		Log:       log,
	})

	// Event consumers, one reader per topic
	invalidator := projection.NewInvalidator(products, caches, log)
	subscriptions := map[string]kafka.MessageHandler{
		cfg.Kafka.Topics.SalesUpdated:           invalidator.HandleSalesUpdated,
		cfg.Kafka.Topics.RatingUpdated:          invalidator.HandleRatingUpdated,
		cfg.Kafka.Topics.InventoryStatusUpdated: invalidator.HandleInventoryStatusUpdated,
	}

	var wg sync.WaitGroup
	for topic, handler := range subscriptions {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, topic, cfg.Kafka.GroupID, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer consumer.Close()
			log.Info("consumer started", "topic", topic)
			if err := consumer.Consume(ctx, handler); err != nil && ctx.Err() == nil {
				log.Error("consumer stopped", "topic", topic, "err", err)
			}
		}()
	}

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	router := api.NewRouter(api.NewHandlers(queries), api.NewAdminHandlers(caches.Registry, log), jwtService, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server started", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-serverErr:
		log.Error("server error", "err", err)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("server shutdown failed", "err", shutdownErr)
	}

	wg.Wait()
	return err
}
