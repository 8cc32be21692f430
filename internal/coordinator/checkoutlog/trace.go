package checkoutlog

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	TraceID string // 32 lowercase hex chars, empty without an active span
	SpanID  string // 16 lowercase hex chars
}

// ExtractTraceInfo reads the active span from ctx. Both fields are empty when
// ctx carries no valid span, as in unit tests.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an entry stamped with the trace info found in ctx.
//
//	entry := checkoutlog.NewEntry(ctx, orderID, checkoutlog.StatusStepDone, "submit_payment", "", nil)
//	_ = repo.Save(ctx, entry)
func NewEntry(ctx context.Context, checkoutID string, status Status, step, payload string, errs []string) *Entry {
	ti := ExtractTraceInfo(ctx)

	errJSON := "[]"
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			errJSON = string(b)
		}
	}

	return &Entry{
		CheckoutID: checkoutID,
		Status:     status,
		Step:       step,
		Payload:    payload,
		Errors:     errJSON,
		TraceID:    ti.TraceID,
		SpanID:     ti.SpanID,
		UpdatedAt:  time.Now().UTC(),
	}
}
