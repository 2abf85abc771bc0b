package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/swiftbuyz/internal/addressbook"
	c "github.com/fjod/go_cart/swiftbuyz/internal/cache"
	"github.com/fjod/go_cart/swiftbuyz/internal/cart"
	"github.com/fjod/go_cart/swiftbuyz/internal/checkout"
	"github.com/fjod/go_cart/swiftbuyz/internal/config"
	h "github.com/fjod/go_cart/swiftbuyz/internal/http"
	"github.com/fjod/go_cart/swiftbuyz/internal/orders"
	"github.com/fjod/go_cart/swiftbuyz/internal/publisher"
	"github.com/fjod/go_cart/swiftbuyz/internal/repository"
	"github.com/fjod/go_cart/swiftbuyz/internal/session"
	"github.com/fjod/go_cart/swiftbuyz/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx := context.Background()

	// Set up MongoDB connection
	mongoDB, err := repository.ConnectMongoDB(ctx, repository.MongoSettings{
		URI:                    cfg.MongoURI,
		Database:               cfg.MongoDBName,
		ConnectTimeout:         cfg.MongoConnectTimeout,
		ServerSelectionTimeout: cfg.MongoServerSelectionTimeout,
		MaxPoolSize:            cfg.MongoMaxPoolSize,
		MinPoolSize:            cfg.MongoMinPoolSize,
	})
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	repo := repository.NewMongoRepository(mongoDB)
	if indexer, ok := repo.(repository.Indexer); ok {
		if err := indexer.CreateIndexes(ctx); err != nil {
			log.Warn("failed to create cart indexes", zap.Error(err))
		}
	}
	log.Info("connected to MongoDB", zap.String("db", cfg.MongoDBName))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))

	redisCache := c.NewRedisCache(redisClient).WithConfirmationTTL(cfg.ConfirmationTTL)

	addresses, err := addressbook.NewRepository(cfg.AddressDBPath)
	if err != nil {
		log.Fatal("failed to open address book", zap.Error(err))
	}
	defer addresses.Close()
	if err := addresses.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal("failed to migrate address book", zap.Error(err))
	}

	var events publisher.Publisher = publisher.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := publisher.NewKafkaPublisher(cfg.KafkaBrokers...)
		defer kafkaPublisher.Close()
		events = kafkaPublisher
		log.Info("publishing checkout events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", publisher.Topic))
	}

	persister := cart.NewCachedPersister(repo, redisCache, log)
	sessions := session.NewRegistry(persister, cfg.CartNamespace, log)
	defer sessions.Close()

	router := h.NewRouter(h.RouterConfig{
		Cart: h.NewCartHandler(sessions, cfg.RequestTimeout),
		Checkout: h.NewCheckoutHandler(h.CheckoutDeps{
			Sessions:            sessions,
			Addresses:           addresses,
			Orders:              orders.NewBreakingCreator(orders.NewClient(cfg.OrdersAPIURL, cfg.RequestTimeout), orders.DefaultBreakerSettings, log),
			Confirmations:       redisCache,
			Events:              events,
			NewAnimator:         func() checkout.Animator { return checkout.NewTimedAnimator() },
			ConfirmationTimeout: cfg.ConfirmationTimeout,
			Timeout:             cfg.RequestTimeout,
			Logger:              log,
		}),
		Orders:         h.NewOrdersHandler(sessions, redisCache, cfg.RequestTimeout, log),
		JWTSecret:      cfg.JWTSecret,
		RequestTimeout: cfg.RequestTimeout,
		MaxBodySize:    cfg.MaxRequestBodySize,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront-bff"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront BFF starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if err := mongoDB.Client().Disconnect(shutdownCtx); err != nil {
		log.Warn("mongo disconnect failed", zap.Error(err))
	}

	log.Info("server exited")
}
