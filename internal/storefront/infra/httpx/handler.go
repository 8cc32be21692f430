package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/farroshouse/ordering/internal/cart"
	"github.com/farroshouse/ordering/internal/checkout"
	"github.com/farroshouse/ordering/internal/menu"
	"github.com/farroshouse/ordering/internal/pkg/reqctx"
	"github.com/farroshouse/ordering/internal/pricing"
	"github.com/farroshouse/ordering/internal/storefront/core/ports"
)

const (
	msgNotFound        = "Endpoint not found"
	msgInvalidJSON     = "Invalid JSON body"
	msgItemNotFound    = "Item not found"
	msgInvalidQuantity = "Quantity must be a positive whole number"
	msgInvalidType     = "Order type must be delivery or pickup"
	msgInProgress      = "Checkout in progress, the cart cannot be changed"
	msgEmptyCart       = "Your cart is empty"
	msgWrongStep       = "That action is not available at this checkout step"
	msgInvalidDetails  = "Please correct the highlighted fields"
	msgPaymentRetry    = "Payment could not be processed, please try again"
	msgPaymentDeclined = "Payment was declined"
	msgInternal        = "Internal server error"
)

// Handler serves the menu, cart and checkout API.
type Handler struct {
	catalog  ports.Catalog
	sessions ports.Sessions
	payments ports.PaymentSessions
}

func NewHandler(catalog ports.Catalog, sessions ports.Sessions, payments ports.PaymentSessions) *Handler {
	return &Handler{catalog: catalog, sessions: sessions, payments: payments}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "OK",
		Message: "Farros House storefront is running",
	})
}

// ListMenu filters by ?category= and ?q= and orders by ?sort=.
func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items := menu.Sort(h.catalog.Filter(q.Get("category"), q.Get("q")), menu.SortOrder(q.Get("sort")))

	out := make([]MenuItemResponse, len(items))
	for i, it := range items {
		out[i] = mapMenuItem(it)
	}
	writeJSON(w, http.StatusOK, MenuResponse{Success: true, Items: out, Count: len(out)})
}

func (h *Handler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	it, ok := h.catalog.Lookup(chi.URLParam(r, "itemId"))
	if !ok {
		writeError(w, http.StatusNotFound, msgItemNotFound, "")
		return
	}
	writeJSON(w, http.StatusOK, mapMenuItem(it))
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CategoriesResponse{Success: true, Categories: h.catalog.Categories()})
}

// GetCart reads the cart without holding an unknown session in memory.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	snapshot, locked := h.sessions.View(r.Context(), sessionID(r))
	writeJSON(w, http.StatusOK, mapCart(snapshot, locked))
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON, err.Error())
		return
	}
	if req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "itemId is required", "")
		return
	}

	n := 1
	if req.Quantity != nil {
		var err error
		if n, err = quantity(*req.Quantity); err != nil {
			h.fail(w, r, err)
			return
		}
	}

	engine := h.sessions.Cart(r.Context(), sessionID(r))
	if err := engine.AddItem(r.Context(), req.ItemID, n, req.SpecialInstructions); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r)
}

// SetCartItemQuantity replaces a line's quantity; zero or less removes it.
func (h *Handler) SetCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON, err.Error())
		return
	}
	if req.Quantity == nil {
		h.fail(w, r, cart.ErrInvalidQuantity)
		return
	}
	n, err := quantity(*req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	engine := h.sessions.Cart(r.Context(), sessionID(r))
	if err := engine.SetQuantity(r.Context(), chi.URLParam(r, "itemId"), n); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	engine := h.sessions.Cart(r.Context(), sessionID(r))
	if err := engine.RemoveItem(r.Context(), chi.URLParam(r, "itemId")); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r)
}

func (h *Handler) SetOrderType(w http.ResponseWriter, r *http.Request) {
	var req OrderTypeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON, err.Error())
		return
	}

	engine := h.sessions.Cart(r.Context(), sessionID(r))
	if err := engine.SetOrderType(r.Context(), pricing.OrderType(req.OrderType)); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	engine := h.sessions.Cart(r.Context(), sessionID(r))
	if err := engine.Clear(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCart(w, r)
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapState(h.sessions.CheckoutState(r.Context(), sessionID(r))))
}

func (h *Handler) SubmitDetails(w http.ResponseWriter, r *http.Request) {
	var req DetailsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON, err.Error())
		return
	}

	flow := h.sessions.Checkout(r.Context(), sessionID(r))
	if err := flow.SubmitDetails(r.Context(), req.toDetails()); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCheckout(w, r)
}

func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	flow := h.sessions.Checkout(r.Context(), sessionID(r))
	if err := flow.Back(); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCheckout(w, r)
}

// Pay places the order. On any failure the cart is left as it was and the
// checkout stays on the payment step so the shopper can retry.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	var req PayRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON, err.Error())
		return
	}

	flow := h.sessions.Checkout(r.Context(), sessionID(r))
	if _, err := flow.Pay(r.Context(), req.PaymentMethod); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeCheckout(w, r)
}

func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Checkout(r.Context(), sessionID(r)).Cancel()
	h.writeCheckout(w, r)
}

// GetPaymentSession returns the provider's view of a checkout session, for the
// page the provider redirects to after payment.
func (h *Handler) GetPaymentSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.payments.Session(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PaymentSessionResponse{
		Success:       true,
		ID:            view.ID,
		PaymentStatus: view.PaymentStatus,
		CustomerEmail: view.CustomerEmail,
		AmountTotal:   pricing.FromMinor(view.AmountTotal).InexactFloat64(),
		OrderID:       view.Metadata["orderId"],
		OrderType:     view.Metadata["orderType"],
	})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, msgNotFound, "")
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request) {
	engine := h.sessions.Cart(r.Context(), sessionID(r))
	writeJSON(w, http.StatusOK, mapCart(engine.Snapshot(), engine.Locked()))
}

func (h *Handler) writeCheckout(w http.ResponseWriter, r *http.Request) {
	flow := h.sessions.Checkout(r.Context(), sessionID(r))
	writeJSON(w, http.StatusOK, mapState(flow.State()))
}

// fail maps a domain error onto a status code. Gateway internals are logged,
// never returned.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *checkout.ValidationError
		gateway    *checkout.GatewayError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  msgInvalidDetails,
			Fields: validation.Fields,
		})
	case errors.As(err, &gateway):
		slog.ErrorContext(r.Context(), "payment gateway failed", "error", err, "retryable", gateway.Retryable)
		msg := msgPaymentDeclined
		if gateway.Retryable {
			msg = msgPaymentRetry
		}
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: msg, Retryable: gateway.Retryable})
	case errors.Is(err, cart.ErrItemNotFound):
		writeError(w, http.StatusNotFound, msgItemNotFound, err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, msgInvalidQuantity, "")
	case errors.Is(err, cart.ErrInvalidOrderType):
		writeError(w, http.StatusBadRequest, msgInvalidType, "")
	case errors.Is(err, cart.ErrCheckoutInProgress):
		writeError(w, http.StatusConflict, msgInProgress, "")
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, msgEmptyCart, "")
	case errors.Is(err, checkout.ErrWrongStep):
		writeError(w, http.StatusConflict, msgWrongStep, "")
	default:
		slog.ErrorContext(r.Context(), "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal, "")
	}
}

func sessionID(r *http.Request) string {
	return reqctx.SessionID(r.Context())
}

// decode reads a JSON body. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, ErrorResponse{
		Success: false,
		Error:   msg,
		Details: details,
	})
}
