// Package proxyclient is the storefront's HTTP client for the payment proxy.
// It implements checkout.Gateway.
package proxyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/farroshouse/ordering/internal/checkout"
	"github.com/farroshouse/ordering/internal/payment"
	"github.com/farroshouse/ordering/internal/pkg/reqctx"
)

var _ checkout.Gateway = (*Client)(nil)

// Client talks to one payment proxy.
type Client struct {
	baseURL string
	client  *http.Client
}

// New returns a client for the proxy at baseURL. The transport is traced so
// the W3C trace context reaches the proxy.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
}

// Submit creates a provider checkout session for sub. Connection failures and
// 5xx replies are retryable; 4xx replies are not.
func (c *Client) Submit(ctx context.Context, sub checkout.Submission) (*checkout.Receipt, error) {
	req := payment.CreateCheckoutSessionRequest{
		Items:        make([]payment.CheckoutItem, 0, len(sub.Lines)),
		OrderType:    string(sub.OrderType),
		OrderID:      sub.OrderID,
		CustomerInfo: &payment.CustomerInfo{Name: sub.Customer.Name, Email: sub.Customer.Email, Phone: sub.Customer.Phone},
	}
	notes := []string{}
	if sub.SpecialInstructions != "" {
		notes = append(notes, sub.SpecialInstructions)
	}
	for _, l := range sub.Lines {
		req.Items = append(req.Items, payment.CheckoutItem{
			Name:        l.Name,
			Description: l.Description,
			Image:       l.Image,
			Price:       l.UnitPrice.InexactFloat64(),
			Quantity:    l.Quantity,
		})
		if l.SpecialInstructions != "" {
			notes = append(notes, l.Name+": "+l.SpecialInstructions)
		}
	}
	req.SpecialInstructions = strings.Join(notes, "; ")

	var res payment.CreateCheckoutSessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/create-checkout-session", req, &res); err != nil {
		return nil, err
	}
	if !res.Success || res.SessionID == "" {
		return nil, &checkout.GatewayError{Op: "create session", Err: errors.New("proxy returned no session"), Retryable: true}
	}
	return &checkout.Receipt{SessionID: res.SessionID, CheckoutURL: res.URL}, nil
}

// Session fetches the provider's view of a checkout session.
func (c *Client) Session(ctx context.Context, sessionID string) (*payment.SessionView, error) {
	var res payment.CheckoutSessionResponse
	if err := c.do(ctx, http.MethodGet, "/api/checkout-session/"+url.PathEscape(sessionID), nil, &res); err != nil {
		return nil, err
	}
	if res.Session == nil {
		return nil, &checkout.GatewayError{Op: "get session", Err: errors.New("proxy returned no session"), Retryable: true}
	}
	return res.Session, nil
}

// Health reports whether the proxy answers its health check.
func (c *Client) Health(ctx context.Context) error {
	var res payment.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &res); err != nil {
		return err
	}
	if res.Status != "OK" {
		return fmt.Errorf("payment proxy unhealthy: %q", res.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if id := reqctx.RequestID(ctx); id != "" {
		httpReq.Header.Set(reqctx.HeaderXRequestID, id)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return &checkout.GatewayError{Op: op, Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e payment.ErrorResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
			if e.Details != "" {
				msg += ": " + e.Details
			}
		}
		return &checkout.GatewayError{
			Op:        op,
			Err:       fmt.Errorf("proxy returned status %d: %s", resp.StatusCode, msg),
			Retryable: resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &checkout.GatewayError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err), Retryable: true}
	}
	return nil
}
