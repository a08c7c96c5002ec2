package entities

import (
	"strings"
	"time"

	domainerrors "propdesk.backend/internal/domain/errors"
)

// Asset is a supported payment currency
type Asset string

const (
	AssetBTC  Asset = "BTC"
	AssetETH  Asset = "ETH"
	AssetUSDT Asset = "USDT"
	AssetUSDC Asset = "USDC"
)

// ParseAsset normalizes a ticker symbol.
func ParseAsset(raw string) (Asset, error) {
	switch a := Asset(strings.ToUpper(strings.TrimSpace(raw))); a {
	case AssetBTC, AssetETH, AssetUSDT, AssetUSDC:
		return a, nil
	}
	return "", domainerrors.ErrUnsupportedAsset
}

// IsStable reports whether the asset is pegged to USD.
func (a Asset) IsStable() bool {
	return a == AssetUSDT || a == AssetUSDC
}

const (
	PriceSourceUpstream = "coingecko"
	PriceSourceFallback = "fallback"
)

// PriceSnapshot is a set of USD spot prices taken at one instant.
type PriceSnapshot struct {
	BTC         float64   `json:"BTC"`
	ETH         float64   `json:"ETH"`
	USDT        float64   `json:"USDT"`
	USDC        float64   `json:"USDC"`
	LastUpdated time.Time `json:"lastUpdated"`
	Source      string    `json:"source"`
}

// IsFresh reports whether the snapshot is younger than ttl at now.
func (s PriceSnapshot) IsFresh(now time.Time, ttl time.Duration) bool {
	return !s.LastUpdated.IsZero() && now.Sub(s.LastUpdated) < ttl
}

// Price returns the USD price of asset.
func (s PriceSnapshot) Price(asset Asset) float64 {
	switch asset {
	case AssetBTC:
		return s.BTC
	case AssetETH:
		return s.ETH
	case AssetUSDT:
		return s.USDT
	case AssetUSDC:
		return s.USDC
	}
	return 0
}

// PriceQuote is what the oracle hands to callers.
type PriceQuote struct {
	PriceSnapshot
	Cached bool `json:"cached"`
	Stale  bool `json:"stale,omitempty"`
}
