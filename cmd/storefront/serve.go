package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/farroshouse/ordering/internal/cart"
	"github.com/farroshouse/ordering/internal/checkout"
	"github.com/farroshouse/ordering/internal/coordinator/checkoutlog"
	"github.com/farroshouse/ordering/internal/coordinator/checkoutlog/sqlite"
	"github.com/farroshouse/ordering/internal/menu"
	"github.com/farroshouse/ordering/internal/payment/proxyclient"
	"github.com/farroshouse/ordering/internal/pkg/cache"
	"github.com/farroshouse/ordering/internal/pkg/telemetry"
	"github.com/farroshouse/ordering/internal/storefront/core/services"
	"github.com/farroshouse/ordering/internal/storefront/infra/httpx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the storefront HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, serviceNameFromEnv())
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	catalog, err := menu.LoadFile(cfg.MenuPath)
	if err != nil {
		return err
	}

	store, closeStore := cartStore(ctx)
	defer closeStore()

	checkoutLog, closeLog, err := openCheckoutLog(cfg.CheckoutLogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	proxy := proxyclient.New(cfg.PaymentProxyURL)
	healthCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	if err := proxy.Health(healthCtx); err != nil {
		slog.Warn("payment proxy not reachable, checkouts will fail until it is", "url", cfg.PaymentProxyURL, "error", err)
	}
	cancel()

	carts := cart.NewRegistry(catalog, cfg.Pricing.Policy(), store)
	sessions := services.NewSessionService(carts, proxy, checkout.Options{
		Timeout: cfg.GatewayTimeout,
		Log:     checkoutLog,
	})

	go sessions.RunEvictor(ctx, cfg.SessionIdle, evictInterval(cfg.SessionIdle))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpx.NewRouter(httpx.NewHandler(catalog, sessions, proxy), cfg.FrontendURL),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("storefront running",
			"addr", srv.Addr,
			"menu_items", len(catalog.Items()),
			"payment_proxy", cfg.PaymentProxyURL,
			"gateway_timeout", cfg.GatewayTimeout,
			"session_idle", cfg.SessionIdle,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down storefront", "sessions", carts.Len())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// evictInterval sweeps a few times per idle window, at most once a second.
func evictInterval(idle time.Duration) time.Duration {
	return max(idle/4, time.Second)
}

// cartStore uses Redis when REDIS_ADDR is set. An unreachable Redis is
// logged and tolerated: carts keep working in memory for the session.
func cartStore(ctx context.Context) (cart.Store, func()) {
	if cfg.RedisAddr == "" {
		slog.Info("REDIS_ADDR not set, carts are kept in memory")
		return cart.NewMemoryStore(), func() {}
	}

	c := cache.NewRedisCache(cfg.RedisAddr, "")
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		slog.Warn("redis unreachable, cart writes will fail until it recovers", "addr", cfg.RedisAddr, "error", err)
	}
	return cart.NewCacheStore(c, cfg.CartTTL), func() {
		if err := c.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
}

func openCheckoutLog(path string) (checkoutlog.Repository, func(), error) {
	if path == "" {
		return checkoutlog.NewMemoryRepository(), func() {}, nil
	}
	repo, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() {
		if err := repo.Close(); err != nil {
			slog.Error("checkout log close error", "error", err)
		}
	}, nil
}

func serviceNameFromEnv() string {
	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		return v
	}
	return serviceName
}
