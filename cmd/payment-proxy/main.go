package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farroshouse/ordering/internal/config"
	"github.com/farroshouse/ordering/internal/coordinator/checkoutlog"
	"github.com/farroshouse/ordering/internal/coordinator/checkoutlog/sqlite"
	"github.com/farroshouse/ordering/internal/payment-proxy/core/ports"
	"github.com/farroshouse/ordering/internal/payment-proxy/core/services"
	"github.com/farroshouse/ordering/internal/payment-proxy/infra/adapters/mock"
	"github.com/farroshouse/ordering/internal/payment-proxy/infra/adapters/stripe"
	"github.com/farroshouse/ordering/internal/payment-proxy/infra/httpx"
	"github.com/farroshouse/ordering/internal/pkg/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry.InitLogger("payment-proxy")

	cfg, err := config.LoadProxy()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "payment-proxy"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	var log checkoutlog.Repository = checkoutlog.NewMemoryRepository()
	if cfg.CheckoutLogPath != "" {
		repo, err := sqlite.Open(cfg.CheckoutLogPath)
		if err != nil {
			slog.Error("failed to open checkout log", "path", cfg.CheckoutLogPath, "error", err)
			os.Exit(1)
		}
		defer repo.Close()
		log = repo
	}

	sessions := services.NewSessionService(newProvider(cfg), services.Config{
		Currency:         cfg.Currency,
		Policy:           cfg.Pricing.Policy(),
		FrontendURL:      cfg.FrontendURL,
		AllowedCountries: cfg.ShippingCountries,
	}, log)

	if cfg.StripeWebhookSecret == "" {
		slog.Warn("STRIPE_WEBHOOK_SECRET not set, webhooks will be rejected")
	}
	handler := httpx.NewHandler(sessions, stripe.NewWebhookVerifier(cfg.StripeWebhookSecret))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpx.NewRouter(handler, cfg.FrontendURL),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown error", "error", err)
		}
	}()

	slog.Info("payment proxy running", "addr", srv.Addr, "frontend_url", cfg.FrontendURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

// newProvider selects Stripe when a secret key is configured and the in-memory
// mock otherwise.
func newProvider(cfg *config.Proxy) ports.PaymentProvider {
	switch {
	case cfg.StripeSecretKey == "":
		slog.Warn("STRIPE_SECRET_KEY not set, using the mock payment provider",
			"decline_above_pence", cfg.MockDeclineAbovePence)
		return mock.NewProvider(cfg.MockDeclineAbovePence)
	case cfg.StripeAPIURL != "":
		return stripe.NewProviderWithURL(cfg.StripeSecretKey, cfg.StripeAPIURL)
	default:
		return stripe.NewProvider(cfg.StripeSecretKey)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
