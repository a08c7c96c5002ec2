package usecases

import (
	"context"

	"propdesk.backend/internal/domain/entities"
	"propdesk.backend/internal/infrastructure/mailer"
)

// PriceSource fetches a live snapshot from the upstream price API.
type PriceSource interface {
	FetchPrices(ctx context.Context) (entities.PriceSnapshot, error)
}

// PriceQuoter serves current prices. It never fails.
type PriceQuoter interface {
	GetPrices(ctx context.Context) entities.PriceQuote
}

// PriceCache holds the last good snapshot. Get reports ok=false when empty.
type PriceCache interface {
	Get(ctx context.Context) (entities.PriceSnapshot, bool, error)
	Set(ctx context.Context, snap entities.PriceSnapshot) error
}

// ChallengeStore keeps crypto quotes alive for the life of the payment page.
type ChallengeStore interface {
	Put(ctx context.Context, quote entities.CryptoQuote) error
	Get(ctx context.Context, quoteID string) (entities.CryptoQuote, error)
	// Take removes and returns a live quote. Only one caller can take a
	// given quote; the rest get ErrQuoteExpired.
	Take(ctx context.Context, quoteID string) (entities.CryptoQuote, error)
}

// EventPublisher emits domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// EmailSender delivers one rendered message.
type EmailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// MetricsRecorder counts pipeline outcomes.
type MetricsRecorder interface {
	PriceFetch(result string)
	WebhookEvent(outcome string)
	EmailSent(template string, err error)
}

type noopMetrics struct{}

func (noopMetrics) PriceFetch(string)       {}
func (noopMetrics) WebhookEvent(string)     {}
func (noopMetrics) EmailSent(string, error) {}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, interface{}) error { return nil }

func metricsOrNoop(m MetricsRecorder) MetricsRecorder {
	if m == nil {
		return noopMetrics{}
	}
	return m
}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
