package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/farroshouse/ordering/internal/pkg/interceptors"
	"github.com/farroshouse/ordering/internal/pkg/reqctx"
	"github.com/farroshouse/ordering/internal/storefront/infra/httpx/middlewares"
)

func NewRouter(handler *Handler, frontendURL string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(interceptors.AttachRequestID)
	r.Use(middleware.Logger)
	r.Use(interceptors.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", reqctx.HeaderXRequestID, reqctx.HeaderXSessionID},
		ExposedHeaders:   []string{reqctx.HeaderXRequestID, reqctx.HeaderXSessionID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.NotFound)

	r.Get("/health", handler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/menu", handler.ListMenu)
		r.Get("/menu/categories", handler.ListCategories)
		r.Get("/menu/{itemId}", handler.GetMenuItem)
		r.Get("/payments/{sessionId}", handler.GetPaymentSession)

		r.Group(func(r chi.Router) {
			r.Use(middlewares.Session)

			r.Get("/cart", handler.GetCart)
			r.Delete("/cart", handler.ClearCart)
			r.Post("/cart/items", handler.AddCartItem)
			r.Put("/cart/items/{itemId}", handler.SetCartItemQuantity)
			r.Delete("/cart/items/{itemId}", handler.RemoveCartItem)
			r.Put("/cart/order-type", handler.SetOrderType)

			r.Get("/checkout", handler.GetCheckout)
			r.Delete("/checkout", handler.CancelCheckout)
			r.Post("/checkout/details", handler.SubmitDetails)
			r.Post("/checkout/back", handler.Back)
			r.Post("/checkout/pay", handler.Pay)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
