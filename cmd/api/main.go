package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"order-service/internal/cache"
	"order-service/internal/config"
	"order-service/internal/database"
	"order-service/internal/events"
	"order-service/internal/fieldcrypt"
	"order-service/internal/handler"
	"order-service/internal/metrics"
	"order-service/internal/repository"
	"order-service/internal/router"
	"order-service/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting order-service API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := metrics.New()

	// Resolve the PII key: inline secret, then S3, then the local key file
	secret, err := fieldcrypt.ResolveSecret(ctx, fieldcrypt.Source{
		Key:       cfg.Crypto.Key,
		KeyFile:   cfg.Crypto.KeyFile,
		S3Enabled: cfg.Crypto.S3Enabled,
		S3Bucket:  cfg.Crypto.S3Bucket,
		S3Region:  cfg.Crypto.S3Region,
		S3Key:     cfg.Crypto.S3Key,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to load encryption key: %w", err)
	}

	cipher, err := fieldcrypt.NewCipher(secret, fieldcrypt.WithFailureHook(registry.DecryptionFailure))
	if err != nil {
		return fmt.Errorf("failed to initialize field cipher: %w", err)
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(pool, cipher, logger,
		repository.WithNumberAttempts(cfg.Orders.NumberAttempts))
	analyticsRepo := repository.NewAnalyticsRepository(pool, logger)

	analyticsCache, closeCache := newAnalyticsCache(ctx, cfg.Redis, logger)
	defer closeCache()

	publisher := newPublisher(cfg.Kafka, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	// Initialize services
	orderService := service.NewOrderService(orderRepo, publisher, registry, logger)
	analyticsService := service.NewAnalyticsService(analyticsRepo, analyticsCache,
		cfg.Analytics.DefaultWindow, cfg.Analytics.MaxLimit, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Orders:    handler.NewOrderHandler(orderService, logger),
		Analytics: handler.NewAnalyticsHandler(analyticsService, logger),
		Health:    handler.NewHealthHandler(pool, logger),
		Metrics:   registry.Handler(),
	}, registry, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newAnalyticsCache connects to Redis when enabled. An unreachable Redis at
// startup degrades to no caching rather than refusing to serve orders.
func newAnalyticsCache(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (cache.Cache, func()) {
	noop := func() {}
	if !cfg.Enabled {
		logger.Info().Msg("analytics cache disabled")
		return cache.NewNoop(), noop
	}

	client, err := cache.NewRedisClient(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("addr", cfg.Addr).
			Msg("failed to connect to redis, analytics results will not be cached")
		return cache.NewNoop(), noop
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
	return cache.NewRedisCache(client, "order-service", cfg.TTL, logger), closeFn
}

func newPublisher(cfg config.KafkaConfig, logger zerolog.Logger) events.Publisher {
	if !cfg.Enabled {
		logger.Info().Msg("kafka disabled, order events will be logged only")
		return events.NewLoggingPublisher(logger)
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Dur("publish_timeout", cfg.PublishTimeout).
		Msg("publishing order events to kafka")
	return events.NewKafkaPublisher(cfg.Brokers, cfg.Topic, cfg.PublishTimeout, logger)
}
