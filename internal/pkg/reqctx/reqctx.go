// Package reqctx carries per-request identifiers through a context.Context
// and across the storefront to payment-proxy hop.
package reqctx

import "context"

// contextKey is unexported so keys cannot collide with other packages.
type contextKey string

const (
	HeaderXRequestID = "X-Request-ID"
	HeaderXSessionID = "X-Session-ID"

	contextKeyRequestID contextKey = "request-id"
	contextKeySessionID contextKey = "session-id"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeySessionID, id)
}

// SessionID returns the shopping session id stored in ctx, or "".
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeySessionID).(string)
	return id
}
