// Package pricefeed fetches USD spot prices from a CoinGecko-compatible API.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
)

// ErrRateLimited is returned when the upstream answers 429.
var ErrRateLimited = domainerrors.ErrUpstreamRateLimited

// coin ids queried upstream, keyed by asset.
var coinIDs = map[entities.Asset]string{
	entities.AssetBTC:  "bitcoin",
	entities.AssetETH:  "ethereum",
	entities.AssetUSDT: "tether",
	entities.AssetUSDC: "usd-coin",
}

// Client is an HTTP price source.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a price API client.
func NewClient(baseURL, apiKey, userAgent string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchPrices returns a snapshot stamped with the current time.
// Missing stablecoin quotes are left at zero for the caller to default.
func (c *Client) FetchPrices(ctx context.Context) (entities.PriceSnapshot, error) {
	ids := []string{coinIDs[entities.AssetBTC], coinIDs[entities.AssetETH], coinIDs[entities.AssetUSDT], coinIDs[entities.AssetUSDC]}
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, strings.Join(ids, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return entities.PriceSnapshot{}, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entities.PriceSnapshot{}, fmt.Errorf("price api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return entities.PriceSnapshot{}, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return entities.PriceSnapshot{}, fmt.Errorf("price api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return entities.PriceSnapshot{}, fmt.Errorf("failed to decode price api response: %w", err)
	}

	return entities.PriceSnapshot{
		BTC:         payload[coinIDs[entities.AssetBTC]]["usd"],
		ETH:         payload[coinIDs[entities.AssetETH]]["usd"],
		USDT:        payload[coinIDs[entities.AssetUSDT]]["usd"],
		USDC:        payload[coinIDs[entities.AssetUSDC]]["usd"],
		LastUpdated: time.Now(),
		Source:      entities.PriceSourceUpstream,
	}, nil
}
