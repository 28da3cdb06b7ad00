package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/iablee/iablee/internal"
	"github.com/iablee/iablee/internal/billing"
	"github.com/iablee/iablee/internal/domain"
	"github.com/iablee/iablee/internal/handler/api"
	"github.com/iablee/iablee/internal/handler/webhook"
	"github.com/iablee/iablee/internal/middleware"
	"github.com/iablee/iablee/internal/repository"
	"github.com/iablee/iablee/internal/router"
	"github.com/iablee/iablee/internal/routes"
	"github.com/iablee/iablee/internal/service"
	"github.com/iablee/iablee/internal/telemetry"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	repo := repository.New(pool)

	// Business metrics
	telemetry.Init("iablee")

	// Initialize payment gateways
	registry, err := buildBillingRegistry(cfg, logger)
	if err != nil {
		return err
	}

	// Initialize services
	userService := service.NewUserService(repo, logger)
	billingService := service.NewBillingService(repo, registry, logger)
	limitService := service.NewLimitService(repo, billingService, logger)
	vaultService := service.NewVaultService(repo, limitService, logger)

	// Session janitor
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := userService.PurgeExpiredSessions(ctx); err != nil {
				logger.Warn("session purge failed", "error", err)
			}
		}
	}()

	// Webhook routes are mounted only for providers the registry carries.
	var webhookDeps routes.WebhookDeps
	if normalizer, err := registry.Normalizer(domain.ProviderStripe); err == nil {
		webhookDeps.Stripe = webhook.NewHandler(normalizer, billingService, logger)
	}
	if normalizer, err := registry.Normalizer(domain.ProviderPayU); err == nil {
		webhookDeps.PayU = webhook.NewHandler(normalizer, billingService, logger)
	}

	// Initialize handlers
	secureCookies := cfg.Env == "prod"
	apiDeps := routes.APIDeps{
		Auth:    api.NewAuthHandler(userService, logger, secureCookies),
		Billing: api.NewBillingHandler(billingService, limitService, logger),
		Vault:   api.NewVaultHandler(vaultService, logger),
		Users:   userService,
	}

	// Initialize Prometheus metrics
	metrics := middleware.NewMetrics("iablee")

	r := router.New()
	r.Use(
		middleware.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		middleware.Logger(logger),
	)

	// Metrics endpoint (no auth required, protect via firewall in production)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := pool.Ping(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.RegisterAPIRoutes(r, apiDeps)
	routes.RegisterWebhookRoutes(r, webhookDeps)

	// Start server with graceful shutdown
	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", addr, "env", cfg.Env, "provider", cfg.Billing.Provider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-shutdownCtx.Done():
	}

	logger.Info("Shutting down...")
	drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// buildBillingRegistry registers every gateway the configuration carries
// credentials for and marks cfg.Billing.Provider as primary.
func buildBillingRegistry(cfg *internal.Config, logger *slog.Logger) (*billing.Registry, error) {
	primary := domain.ProviderStripe
	if cfg.Billing.Provider == "payu" {
		primary = domain.ProviderPayU
	}
	registry := billing.NewRegistry(primary)

	if cfg.Billing.Stripe.SecretKey != "" {
		gateway, err := billing.NewStripeGateway(cfg.Billing.Stripe)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize stripe gateway: %w", err)
		}
		normalizer, err := billing.NewStripeNormalizer(cfg.Billing.Stripe.WebhookSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize stripe webhook verifier: %w", err)
		}
		registry.RegisterGateway(billing.InstrumentGateway(gateway))
		registry.RegisterNormalizer(normalizer)
		logger.Info("Stripe gateway initialized", "test_mode", cfg.Billing.Stripe.IsTestMode())
	}

	if cfg.Billing.PayU.APIKey != "" {
		gateway, err := billing.NewPayUGateway(cfg.Billing.PayU)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize payu gateway: %w", err)
		}
		normalizer, err := billing.NewPayUNormalizer(cfg.Billing.PayU)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize payu webhook verifier: %w", err)
		}
		registry.RegisterGateway(billing.InstrumentGateway(gateway))
		registry.RegisterNormalizer(normalizer)
		logger.Info("PayU gateway initialized", "test_mode", cfg.Billing.PayU.Test)
	}

	if _, err := registry.Primary(); err != nil {
		return nil, fmt.Errorf("primary billing provider %q is not configured: %w", cfg.Billing.Provider, err)
	}

	return registry, nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
