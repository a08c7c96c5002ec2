package repositories

import (
	"context"

	"github.com/google/uuid"
	"propdesk.backend/internal/domain/entities"
	"propdesk.backend/pkg/utils"
)

// WithdrawalRepository defines payout request data operations
type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *entities.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Withdrawal, error)
	GetPendingByUser(ctx context.Context, userID uuid.UUID) (*entities.Withdrawal, error)
	Update(ctx context.Context, withdrawal *entities.Withdrawal) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Withdrawal, error)
	List(ctx context.Context, status entities.WithdrawalStatus, p utils.PaginationParams) ([]*entities.Withdrawal, int64, error)
}
