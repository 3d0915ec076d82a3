// Package webpay is the REST adapter for the payment gateway service.
//
// The upstream service has renamed its routes more than once, so every
// logical operation is backed by an ordered list of route templates tried
// in sequence until one answers. This is resilience against route
// instability, not a retry policy: each variant is a structurally different
// request, tried exactly once per call.
package webpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ferremas-cl/storefront/internal/storefront/core/domain/entity"
	"github.com/ferremas-cl/storefront/internal/storefront/core/ports"
)

// Config carries the gateway base URL and the ordered route-template lists.
// Templates for token-scoped operations contain a {token} placeholder.
type Config struct {
	BaseURL       string
	CreateRoutes  []string
	ConfirmRoutes []string
	StatusRoutes  []string
	Timeout       time.Duration
}

// DefaultConfig returns the known historical route variants, newest first.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: strings.TrimRight(baseURL, "/"),
		CreateRoutes: []string{
			"/transbank",
			"/webpay",
			"/",
			"/create",
		},
		ConfirmRoutes: []string{
			"/webpay/{token}",
			"/transbank/{token}",
			"/webpay/transactions/{token}",
		},
		StatusRoutes: []string{
			"/webpay/{token}/status",
			"/transbank/{token}/status",
			"/webpay/transactions/{token}/status",
		},
		Timeout: 15 * time.Second,
	}
}

// Client implements ports.PaymentGateway over HTTP.
type Client struct {
	cfg  Config
	http *http.Client
}

var _ ports.PaymentGateway = (*Client)(nil)

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// CreateTransaction validates locally, then walks the create route variants.
func (c *Client) CreateTransaction(ctx context.Context, req entity.TransactionRequest) (*entity.TransactionHandle, error) {
	if req.Amount <= 0 {
		return nil, &ports.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if req.BuyOrder == "" {
		return nil, &ports.ValidationError{Field: "buyOrder", Reason: "is required"}
	}
	if req.SessionID == "" {
		return nil, &ports.ValidationError{Field: "sessionId", Reason: "is required"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction request: %w", err)
	}

	payload, err := c.tryRoutes(ctx, "create", http.MethodPost, c.cfg.CreateRoutes, "", body)
	if err != nil {
		return nil, err
	}

	handle := &entity.TransactionHandle{
		URL:      firstString(payload, "url", "webpayUrl", "redirectUrl"),
		Token:    firstString(payload, "token", "webpayToken", "transactionToken"),
		BuyOrder: firstString(payload, "buyOrder", "buy_order"),
		Amount:   intField(payload, "amount"),
	}
	if handle.URL == "" || handle.Token == "" {
		return nil, &ports.GatewayError{
			Op:      "create",
			Message: "response missing hosted-page url or token",
		}
	}
	return handle, nil
}

// ConfirmTransaction finalizes the transaction for a recovered token.
func (c *Client) ConfirmTransaction(ctx context.Context, token string) (*entity.ConfirmationResult, error) {
	if token == "" {
		return nil, &ports.ValidationError{Field: "token", Reason: "is required"}
	}

	payload, err := c.tryRoutes(ctx, "confirm", http.MethodPut, c.cfg.ConfirmRoutes, token, nil)
	if err != nil {
		return nil, err
	}
	return confirmationFromPayload(payload), nil
}

// TransactionStatus is the read-only probe.
func (c *Client) TransactionStatus(ctx context.Context, token string) (*entity.ConfirmationResult, error) {
	if token == "" {
		return nil, &ports.ValidationError{Field: "token", Reason: "is required"}
	}

	payload, err := c.tryRoutes(ctx, "status", http.MethodGet, c.cfg.StatusRoutes, token, nil)
	if err != nil {
		return nil, err
	}
	return confirmationFromPayload(payload), nil
}

// tryRoutes walks the route variants in order and returns the decoded
// payload of the first that answers. Each variant is attempted exactly
// once; if every variant fails, the first error encountered is surfaced.
func (c *Client) tryRoutes(ctx context.Context, op, method string, routes []string, token string, body []byte) (map[string]any, error) {
	var firstErr error

	for _, route := range routes {
		path := strings.ReplaceAll(route, "{token}", url.PathEscape(token))
		payload, err := c.do(ctx, op, method, path, body)
		if err == nil {
			slog.InfoContext(ctx, "webpay endpoint variant succeeded", "op", op, "route", route)
			return payload, nil
		}

		slog.WarnContext(ctx, "webpay endpoint variant failed", "op", op, "route", route, "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr == nil {
		firstErr = &ports.GatewayError{Op: op, Message: "no endpoint variants configured"}
	}
	return nil, firstErr
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, &ports.GatewayError{Op: op, Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	slog.DebugContext(ctx, "webpay request", "op", op, "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ports.GatewayError{
			Op:        op,
			Message:   "request failed",
			Retryable: isTimeout(err),
			Err:       err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &ports.GatewayError{Op: op, Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ports.GatewayError{
			Op:      op,
			Message: upstreamMessage(raw, resp.StatusCode),
		}
	}

	return decodePayload(raw)
}

// decodePayload parses a response body and unwraps the optional {"data": ...}
// envelope some upstream versions use.
func decodePayload(raw []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &ports.GatewayError{Op: "decode", Message: "invalid response body", Err: err}
	}
	if data, ok := m["data"].(map[string]any); ok {
		return data, nil
	}
	return m, nil
}

func confirmationFromPayload(payload map[string]any) *entity.ConfirmationResult {
	result := &entity.ConfirmationResult{
		Amount:            intField(payload, "amount"),
		AuthorizationCode: firstString(payload, "authorization_code", "authorizationCode"),
		BuyOrder:          firstString(payload, "buy_order", "buyOrder"),
	}

	status := firstString(payload, "status")
	switch {
	case strings.EqualFold(status, "AUTHORIZED"):
		result.Status = entity.StatusAuthorized
	case status == "" && result.AuthorizationCode != "":
		// Older upstream versions reply without a status field; an
		// authorization code only exists on authorized transactions.
		result.Status = entity.StatusAuthorized
	default:
		result.Status = entity.StatusRejected
	}
	return result
}

// upstreamMessage digs a human-readable message out of an error body.
func upstreamMessage(raw []byte, statusCode int) string {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err == nil {
		if msg := firstString(m, "message", "error"); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("upstream returned status %d", statusCode)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case string:
		var n int
		fmt.Sscanf(v, "%d", &n)
		return n
	default:
		return 0
	}
}
