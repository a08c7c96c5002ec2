package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "propdesk.backend/internal/domain/errors"
)

func TestParseAsset(t *testing.T) {
	a, err := ParseAsset(" usdt ")
	require.NoError(t, err)
	assert.Equal(t, AssetUSDT, a)
	assert.True(t, a.IsStable())
	assert.False(t, AssetBTC.IsStable())

	_, err = ParseAsset("DOGE")
	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedAsset)
}

func TestPriceSnapshot_IsFresh(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 10, 0, 0, time.UTC)
	snap := PriceSnapshot{LastUpdated: now.Add(-4 * time.Minute)}
	assert.True(t, snap.IsFresh(now, 5*time.Minute))
	assert.False(t, snap.IsFresh(now.Add(time.Minute), 5*time.Minute))
	assert.False(t, PriceSnapshot{}.IsFresh(now, time.Hour))
}

func TestPriceSnapshot_Price(t *testing.T) {
	snap := PriceSnapshot{BTC: 1, ETH: 2, USDT: 3, USDC: 4}
	assert.Equal(t, 1.0, snap.Price(AssetBTC))
	assert.Equal(t, 2.0, snap.Price(AssetETH))
	assert.Equal(t, 3.0, snap.Price(AssetUSDT))
	assert.Equal(t, 4.0, snap.Price(AssetUSDC))
	assert.Equal(t, 0.0, snap.Price("XRP"))
}
