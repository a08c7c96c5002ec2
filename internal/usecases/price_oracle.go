package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/pkg/logger"
)

// Price fetch results, used as metric labels.
const (
	PriceResultCacheHit      = "cache_hit"
	PriceResultFresh         = "fresh"
	PriceResultStale         = "stale"
	PriceResultFallback      = "fallback"
	PriceResultAttemptFailed = "attempt_failed"
	PriceResultRateLimited   = "rate_limited"
)

// PriceOracleConfig tunes the oracle. Zero values take the defaults below.
type PriceOracleConfig struct {
	FreshFor       time.Duration
	MaxAttempts    int
	BaseDelay      time.Duration
	RateLimitDelay time.Duration
}

const (
	defaultPriceFreshFor    = 5 * time.Minute
	defaultPriceAttempts    = 3
	defaultPriceBaseDelay   = time.Second
	defaultPriceRateLimited = 5 * time.Second
)

// FallbackPrices is served when upstream is down and nothing was ever cached.
func FallbackPrices(now time.Time) entities.PriceSnapshot {
	return entities.PriceSnapshot{
		BTC:         95000,
		ETH:         3500,
		USDT:        1,
		USDC:        1,
		LastUpdated: now,
		Source:      entities.PriceSourceFallback,
	}
}

// PriceOracle serves crypto spot prices, preferring a fresh cache, then
// upstream with retries, then a stale cache, then the fallback table.
// It never fails.
type PriceOracle struct {
	source  PriceSource
	cache   PriceCache
	metrics MetricsRecorder
	cfg     PriceOracleConfig

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPriceOracle creates a new price oracle
func NewPriceOracle(source PriceSource, cache PriceCache, metrics MetricsRecorder, cfg PriceOracleConfig) *PriceOracle {
	if cfg.FreshFor <= 0 {
		cfg.FreshFor = defaultPriceFreshFor
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultPriceAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultPriceBaseDelay
	}
	if cfg.RateLimitDelay <= 0 {
		cfg.RateLimitDelay = defaultPriceRateLimited
	}
	return &PriceOracle{
		source:  source,
		cache:   cache,
		metrics: metricsOrNoop(metrics),
		cfg:     cfg,
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// SetClock overrides the time source and the retry sleeper.
func (o *PriceOracle) SetClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) {
	if now != nil {
		o.now = now
	}
	if sleep != nil {
		o.sleep = sleep
	}
}

// GetPrices returns current USD prices for BTC, ETH, USDT and USDC.
func (o *PriceOracle) GetPrices(ctx context.Context) entities.PriceQuote {
	cached, haveCached, err := o.cache.Get(ctx)
	if err != nil {
		logger.Warn(ctx, "Price cache read failed", zap.Error(err))
		haveCached = false
	}
	if haveCached && cached.IsFresh(o.now(), o.cfg.FreshFor) {
		o.metrics.PriceFetch(PriceResultCacheHit)
		return entities.PriceQuote{PriceSnapshot: cached, Cached: true}
	}

	snap, err := o.fetchWithRetry(ctx)
	if err == nil {
		if err := o.cache.Set(ctx, snap); err != nil {
			logger.Warn(ctx, "Price cache write failed", zap.Error(err))
		}
		o.metrics.PriceFetch(PriceResultFresh)
		return entities.PriceQuote{PriceSnapshot: snap}
	}

	if haveCached {
		logger.Warn(ctx, "Serving stale prices", zap.Error(err), zap.Time("lastUpdated", cached.LastUpdated))
		o.metrics.PriceFetch(PriceResultStale)
		return entities.PriceQuote{PriceSnapshot: cached, Cached: true, Stale: true}
	}

	logger.Error(ctx, "Serving fallback prices", zap.Error(err))
	fallback := FallbackPrices(o.now())
	if err := o.cache.Set(ctx, fallback); err != nil {
		logger.Warn(ctx, "Price cache write failed", zap.Error(err))
	}
	o.metrics.PriceFetch(PriceResultFallback)
	return entities.PriceQuote{PriceSnapshot: fallback}
}

func (o *PriceOracle) fetchWithRetry(ctx context.Context) (entities.PriceSnapshot, error) {
	var lastErr error
	for attempt := 0; attempt < o.cfg.MaxAttempts; attempt++ {
		snap, err := o.source.FetchPrices(ctx)
		if err == nil {
			err = normalizeSnapshot(&snap, o.now())
		}
		if err == nil {
			return snap, nil
		}
		lastErr = err

		rateLimited := errors.Is(err, domainerrors.ErrUpstreamRateLimited)
		if rateLimited {
			o.metrics.PriceFetch(PriceResultRateLimited)
		} else {
			o.metrics.PriceFetch(PriceResultAttemptFailed)
		}
		logger.Warn(ctx, "Price fetch attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Int("maxAttempts", o.cfg.MaxAttempts),
			zap.Error(err),
		)

		if attempt == o.cfg.MaxAttempts-1 {
			break
		}
		if err := o.sleep(ctx, o.retryDelay(attempt, rateLimited)); err != nil {
			return entities.PriceSnapshot{}, fmt.Errorf("price fetch interrupted: %w", err)
		}
	}
	return entities.PriceSnapshot{}, fmt.Errorf("price fetch failed after %d attempts: %w", o.cfg.MaxAttempts, lastErr)
}

// retryDelay is rateLimitDelay*(attempt+1) after a 429 and baseDelay*2^attempt otherwise.
func (o *PriceOracle) retryDelay(attempt int, rateLimited bool) time.Duration {
	if rateLimited {
		return o.cfg.RateLimitDelay * time.Duration(attempt+1)
	}
	return o.cfg.BaseDelay << uint(attempt)
}

func normalizeSnapshot(snap *entities.PriceSnapshot, now time.Time) error {
	if snap.BTC <= 0 || snap.ETH <= 0 {
		return fmt.Errorf("incomplete price data: BTC=%v ETH=%v", snap.BTC, snap.ETH)
	}
	if snap.USDT <= 0 {
		snap.USDT = 1
	}
	if snap.USDC <= 0 {
		snap.USDC = 1
	}
	if snap.Source == "" {
		snap.Source = entities.PriceSourceUpstream
	}
	snap.LastUpdated = now
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
