package repositories

import (
	"context"

	"github.com/google/uuid"
	"propdesk.backend/internal/domain/entities"
	"propdesk.backend/pkg/utils"
)

// PurchaseRepository defines purchase data operations
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entities.Purchase) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Purchase, error)
	GetByReceiptID(ctx context.Context, receiptID string) (*entities.Purchase, error)
	Update(ctx context.Context, purchase *entities.Purchase) error
	// CompletePending overwrites a purchase only while it is still pending.
	// A purchase completed by someone else yields ErrInvalidTransition.
	CompletePending(ctx context.Context, purchase *entities.Purchase) error
	List(ctx context.Context, filter entities.PurchaseFilter, p utils.PaginationParams) ([]*entities.Purchase, int64, error)
}
