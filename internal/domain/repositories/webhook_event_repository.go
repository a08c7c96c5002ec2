package repositories

import (
	"context"

	"propdesk.backend/internal/domain/entities"
)

// WebhookEventRepository records processed webhook deliveries
type WebhookEventRepository interface {
	Create(ctx context.Context, event *entities.WebhookEvent) error
	ListByReceiptID(ctx context.Context, receiptID string) ([]*entities.WebhookEvent, error)
}
