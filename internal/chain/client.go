// Package chain is the boundary to the wallet/chain ownership collaborator.
// Ownership is authoritative on-chain; everything here is a bounded-time
// read and must stay safe to call repeatedly.
package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"mintmart/internal/domain"
)

// Client answers how many tokens of a collection a wallet currently holds.
type Client interface {
	OwnedCount(ctx context.Context, wallet, collection string) (int, error)
}

// HTTPClient talks to an indexer endpoint:
// GET {base}/v1/ownership?wallet=...&collection=... -> {"count": N}
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

func (c *HTTPClient) OwnedCount(ctx context.Context, wallet, collection string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/v1/ownership?wallet=%s&collection=%s",
		c.base, url.QueryEscape(wallet), url.QueryEscape(collection))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ownership query: %v: %w", err, domain.ErrOracleUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ownership query status %d: %w", resp.StatusCode, domain.ErrOracleUnavailable)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("ownership decode: %v: %w", err, domain.ErrOracleUnavailable)
	}
	if body.Count < 0 {
		return 0, errors.New("ownership count negative")
	}
	return body.Count, nil
}
