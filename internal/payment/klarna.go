package payment

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

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-kco/internal/kco"
)

// Klarna implements the Provider interface against the Klarna checkout
// API. Credentials go into HTTP basic auth; the playground host is
// used when Sandbox is set and no explicit base URL overrides it.
type Klarna struct {
	MerchantID   string
	SharedSecret string
	BaseURL      string
	Sandbox      bool
	HTTP         *http.Client
}

const ordersPath = "/checkout/v3/orders"

// CreateOrder opens a new checkout session at Klarna.
func (k Klarna) CreateOrder(ctx context.Context, order kco.Order) (CreatedOrder, error) {
	return k.send(ctx, http.MethodPost, ordersPath, &order)
}

// UpdateOrder replaces the payload of an existing checkout session.
// Klarna re-renders the widget from the updated order.
func (k Klarna) UpdateOrder(ctx context.Context, orderID string, order kco.Order) (CreatedOrder, error) {
	if strings.TrimSpace(orderID) == "" {
		return CreatedOrder{}, errors.New("payment: order id is required")
	}
	return k.send(ctx, http.MethodPost, ordersPath+"/"+url.PathEscape(orderID), &order)
}

// FetchOrder reads the current state of a checkout session, typically
// to confirm a completed purchase.
func (k Klarna) FetchOrder(ctx context.Context, orderID string) (CreatedOrder, error) {
	if strings.TrimSpace(orderID) == "" {
		return CreatedOrder{}, errors.New("payment: order id is required")
	}
	return k.send(ctx, http.MethodGet, ordersPath+"/"+url.PathEscape(orderID), nil)
}

func (k Klarna) send(ctx context.Context, method, path string, order *kco.Order) (CreatedOrder, error) {
	var body io.Reader
	if order != nil {
		encoded, err := json.Marshal(order)
		if err != nil {
			return CreatedOrder{}, fmt.Errorf("payment: encode order: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, k.host()+path, body)
	if err != nil {
		return CreatedOrder{}, err
	}
	req.SetBasicAuth(k.MerchantID, k.SharedSecret)
	if order != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Klarna-Idempotency-Key", uuid.NewString())
	}
	req.Header.Set("Accept", "application/json")

	resp, err := k.client().Do(req)
	if err != nil {
		return CreatedOrder{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return CreatedOrder{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return CreatedOrder{}, fmt.Errorf("payment: provider returned %d: %s", resp.StatusCode, truncate(payload, 256))
	}
	return decodeOrder(payload)
}

func decodeOrder(payload []byte) (CreatedOrder, error) {
	var meta struct {
		OrderID     string `json:"order_id"`
		HTMLSnippet string `json:"html_snippet"`
		Status      string `json:"status"`
	}
	if err := json.Unmarshal(payload, &meta); err != nil {
		return CreatedOrder{}, fmt.Errorf("payment: decode response: %w", err)
	}
	created := CreatedOrder{
		OrderID:     meta.OrderID,
		HTMLSnippet: meta.HTMLSnippet,
		Status:      meta.Status,
	}
	if err := json.Unmarshal(payload, &created.Order); err != nil {
		return CreatedOrder{}, fmt.Errorf("payment: decode order: %w", err)
	}
	return created, nil
}

func (k Klarna) host() string {
	host := strings.TrimSpace(k.BaseURL)
	if host != "" {
		return strings.TrimRight(host, "/")
	}
	if k.Sandbox {
		return "https://api.playground.klarna.com"
	}
	return "https://api.klarna.com"
}

func (k Klarna) client() *http.Client {
	if k.HTTP != nil {
		return k.HTTP
	}
	return &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(nil),
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
