package middlewares

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/farroshouse/ordering/internal/pkg/reqctx"
)

// SessionCookie names the cookie that remembers a browser's cart.
const SessionCookie = "farros_session"

const sessionMaxAge = 30 * 24 * time.Hour

// Session resolves the shopping session from the X-Session-ID header, then the
// session cookie, minting a new id when neither holds a valid one. The id is
// stored in the request context, echoed in the response header and refreshed
// in the cookie.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(r)

		w.Header().Set(reqctx.HeaderXSessionID, id)
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(sessionMaxAge / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		next.ServeHTTP(w, r.WithContext(reqctx.WithSessionID(r.Context(), id)))
	})
}

func sessionID(r *http.Request) string {
	if id, ok := valid(r.Header.Get(reqctx.HeaderXSessionID)); ok {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		if id, ok := valid(c.Value); ok {
			return id
		}
	}
	return uuid.NewString()
}

// valid accepts only uuids so client input never shapes store keys.
func valid(s string) (string, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
