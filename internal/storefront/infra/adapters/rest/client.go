// Package rest holds the HTTP adapters for the inventory, sales and
// exchange-rate backends. Every client degrades to bundled demo data when
// its backend is unreachable, so the storefront stays browsable during
// backend outages.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 10 * time.Second

type httpClient struct {
	base   string
	token  string
	client *http.Client
}

func newHTTPClient(base string, timeout time.Duration) *httpClient {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &httpClient{
		base: base,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// SetToken sets the bearer token attached to subsequent requests.
func (c *httpClient) SetToken(token string) { c.token = token }

// doJSON issues a request with an optional JSON body and decodes the JSON
// response into out. A nil out discards the body.
func (c *httpClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: upstream returned status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
