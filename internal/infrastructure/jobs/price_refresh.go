package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"propdesk.backend/internal/domain/entities"
	"propdesk.backend/pkg/logger"
)

type priceSource interface {
	GetPrices(ctx context.Context) entities.PriceQuote
}

// PriceRefreshJob keeps the shared price cache warm so checkout traffic
// rarely waits on the upstream API.
type PriceRefreshJob struct {
	oracle   priceSource
	interval time.Duration
	stop     chan struct{}
}

func NewPriceRefreshJob(oracle priceSource, interval time.Duration) *PriceRefreshJob {
	return &PriceRefreshJob{
		oracle:   oracle,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start refreshes once immediately and then on every tick until ctx is
// cancelled or Stop is called. A non-positive interval disables the job.
func (j *PriceRefreshJob) Start(ctx context.Context) {
	if j.interval <= 0 {
		logger.Info(ctx, "Price refresh job disabled")
		return
	}
	logger.Info(ctx, "Starting price refresh job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "Price refresh job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Price refresh job stopped")
			return
		case <-ticker.C:
			j.refresh(ctx)
		}
	}
}

func (j *PriceRefreshJob) Stop() {
	close(j.stop)
}

func (j *PriceRefreshJob) refresh(ctx context.Context) {
	quote := j.oracle.GetPrices(ctx)
	fields := []zap.Field{
		zap.String("source", quote.Source),
		zap.Bool("cached", quote.Cached),
		zap.Time("last_updated", quote.LastUpdated),
	}
	switch {
	case quote.Source == entities.PriceSourceFallback:
		logger.Warn(ctx, "Price refresh served fallback prices", fields...)
	case quote.Stale:
		logger.Warn(ctx, "Price refresh served stale prices", fields...)
	default:
		logger.Debug(ctx, "Prices refreshed", fields...)
	}
}
