package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/farroshouse/ordering/internal/payment"
	"github.com/farroshouse/ordering/internal/payment-proxy/core/ports"
	"github.com/farroshouse/ordering/internal/payment-proxy/core/services"
)

// maxWebhookBody bounds webhook payloads read into memory.
const maxWebhookBody = 64 << 10

// Handler serves the payment proxy API.
type Handler struct {
	sessions *services.SessionService
	verifier ports.WebhookVerifier
}

func NewHandler(sessions *services.SessionService, verifier ports.WebhookVerifier) *Handler {
	return &Handler{sessions: sessions, verifier: verifier}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, payment.HealthResponse{
		Status:  "OK",
		Message: "Farros House payment proxy is running",
	})
}

// CreateCheckoutSession opens a hosted checkout for the posted cart.
func (h *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req payment.CreateCheckoutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && strings.HasPrefix(typeErr.Field, "items") {
			writeError(w, http.StatusBadRequest, payment.MsgItemsRequired, "")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}

	session, err := h.sessions.Create(r.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrItemsRequired),
		errors.Is(err, services.ErrCustomerRequired),
		errors.Is(err, services.ErrInvalidItem),
		errors.Is(err, services.ErrInvalidOrderType):
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	default:
		slog.ErrorContext(r.Context(), "error creating checkout session", "error", err)
		writeError(w, http.StatusInternalServerError, payment.MsgCreateFailed, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, payment.CreateCheckoutSessionResponse{
		Success:   true,
		SessionID: session.ID,
		URL:       session.URL,
	})
}

// GetCheckoutSession returns the provider's view of a session.
func (h *Handler) GetCheckoutSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")

	session, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		slog.ErrorContext(r.Context(), "error retrieving checkout session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, payment.MsgRetrieveFailed, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, payment.CheckoutSessionResponse{
		Success: true,
		Session: &payment.SessionView{
			ID:            session.ID,
			PaymentStatus: session.PaymentStatus,
			CustomerEmail: session.CustomerEmail,
			AmountTotal:   session.AmountTotal,
			Metadata:      session.Metadata,
		},
	})
}

// Webhook verifies and records a provider event. The raw body is needed for
// signature verification, so it is read before any decoding.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Webhook Error", err.Error())
		return
	}

	ev, err := h.verifier.Verify(payload, r.Header.Get("Stripe-Signature"))
	if errors.Is(err, ports.ErrWebhookNotConfigured) {
		slog.WarnContext(r.Context(), "webhook received but no secret is configured")
		writeError(w, http.StatusBadRequest, "Webhook secret not configured", "")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "webhook signature verification failed", "error", err)
		writeError(w, http.StatusBadRequest, "Webhook Error", err.Error())
		return
	}

	h.sessions.HandleEvent(r.Context(), ev)
	writeJSON(w, http.StatusOK, payment.WebhookAck{Received: true})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, payment.MsgNotFound, "")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, payment.ErrorResponse{
		Success: false,
		Error:   msg,
		Details: details,
	})
}
