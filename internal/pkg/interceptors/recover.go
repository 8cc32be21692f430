package interceptors

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
)

type internalError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Recoverer turns a panic into a logged 500 with a JSON body. Unlike chi's
// middleware.Recoverer it never writes a plain-text stack to the client.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.ErrorContext(r.Context(), "panic serving request",
				"method", r.Method,
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(internalError{Success: false, Error: "Internal server error"})
		}()
		next.ServeHTTP(w, r)
	})
}
