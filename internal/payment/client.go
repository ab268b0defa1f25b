// Package payment is the boundary to the payment collaborator. All
// calls are idempotent under retry with the same reference.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mintmart/internal/domain"
)

type Client interface {
	// Authorize places a hold for amountMinor. The orderID doubles as
	// the idempotent request reference on the collaborator side.
	Authorize(ctx context.Context, amountMinor int64, orderID string) (ref string, err error)
	Capture(ctx context.Context, ref string) error
	Void(ctx context.Context, ref string) error
}

// HTTPClient posts JSON to a payments API:
// POST {base}/v1/authorize {amount_minor, order_id} -> {ref}
// POST {base}/v1/capture   {ref}
// POST {base}/v1/void      {ref}
type HTTPClient struct {
	base    string
	timeout time.Duration
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		base:    baseURL,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Authorize(ctx context.Context, amountMinor int64, orderID string) (string, error) {
	var out struct {
		Ref string `json:"ref"`
	}
	err := c.post(ctx, "/v1/authorize", map[string]any{
		"amount_minor": amountMinor,
		"order_id":     orderID,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Ref, nil
}

func (c *HTTPClient) Capture(ctx context.Context, ref string) error {
	return c.post(ctx, "/v1/capture", map[string]any{"ref": ref}, nil)
}

func (c *HTTPClient) Void(ctx context.Context, ref string) error {
	return c.post(ctx, "/v1/void", map[string]any{"ref": ref}, nil)
}

func (c *HTTPClient) post(ctx context.Context, path string, in map[string]any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport errors and timeouts are retryable; the collaborator
		// dedupes on the reference so a replay cannot double-charge.
		return fmt.Errorf("payment %s: %v: %w", path, err, domain.ErrPaymentTimeout)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if out != nil {
			return json.NewDecoder(resp.Body).Decode(out)
		}
		return nil
	case resp.StatusCode >= 500:
		return fmt.Errorf("payment %s status %d: %w", path, resp.StatusCode, domain.ErrPaymentTimeout)
	default:
		return fmt.Errorf("payment %s status %d: %w", path, resp.StatusCode, domain.ErrPaymentRejected)
	}
}
