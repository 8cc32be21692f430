package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/farroshouse/ordering/internal/pkg/interceptors"
)

// NewRouter wires the proxy routes. Only frontendURL may call it from a
// browser.
func NewRouter(handler *Handler, frontendURL string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(interceptors.AttachRequestID)
	r.Use(middleware.Logger)
	r.Use(interceptors.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.NotFound)

	r.Get("/health", handler.Health)
	r.Post("/api/create-checkout-session", handler.CreateCheckoutSession)
	r.Get("/api/checkout-session/{sessionId}", handler.GetCheckoutSession)
	r.Post("/api/webhook", handler.Webhook)

	return otelhttp.NewHandler(r, "payment-proxy")
}
