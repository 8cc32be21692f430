// Package interceptors holds the HTTP middleware shared by the storefront and
// the payment proxy.
package interceptors

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/farroshouse/ordering/internal/pkg/reqctx"
)

// AttachRequestID copies the id assigned by chi's RequestID middleware into
// reqctx, so outgoing calls can forward it, and echoes it to the client.
// Must run after middleware.RequestID.
func AttachRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := middleware.GetReqID(r.Context())
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set(reqctx.HeaderXRequestID, id)
		next.ServeHTTP(w, r.WithContext(reqctx.WithRequestID(r.Context(), id)))
	})
}
