package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"propdesk.backend/internal/domain/entities"
	"propdesk.backend/internal/infrastructure/models"
	"propdesk.backend/pkg/utils"
)

// WebhookEventRepository implements the webhook delivery ledger
type WebhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository
func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Create appends a ledger row
func (r *WebhookEventRepository) Create(ctx context.Context, e *entities.WebhookEvent) error {
	if e.ID == uuid.Nil {
		e.ID = utils.GenerateUUIDv7()
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now()
	}
	m := &models.WebhookEvent{
		ID:         e.ID,
		ReceiptID:  e.ReceiptID,
		EventType:  e.EventType,
		Outcome:    string(e.Outcome),
		PurchaseID: e.PurchaseID,
		Payload:    e.Payload,
		ReceivedAt: e.ReceivedAt,
	}
	return translateError(GetDB(ctx, r.db).Create(m).Error)
}

// ListByReceiptID lists ledger rows for a receipt in arrival order
func (r *WebhookEventRepository) ListByReceiptID(ctx context.Context, receiptID string) ([]*entities.WebhookEvent, error) {
	var ms []models.WebhookEvent
	if err := GetDB(ctx, r.db).Where("receipt_id = ?", receiptID).Order("received_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	events := make([]*entities.WebhookEvent, 0, len(ms))
	for _, m := range ms {
		events = append(events, &entities.WebhookEvent{
			ID:         m.ID,
			ReceiptID:  m.ReceiptID,
			EventType:  m.EventType,
			Outcome:    entities.WebhookOutcome(m.Outcome),
			PurchaseID: m.PurchaseID,
			Payload:    m.Payload,
			ReceivedAt: m.ReceivedAt,
		})
	}
	return events, nil
}
