package repositories

import (
	"context"

	"github.com/google/uuid"
	"propdesk.backend/internal/domain/entities"
	"propdesk.backend/pkg/utils"
)

// TradingAccountRepository defines trading account data operations.
// Credentials are sealed at rest by implementations.
type TradingAccountRepository interface {
	Create(ctx context.Context, account *entities.TradingAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TradingAccount, error)
	Update(ctx context.Context, account *entities.TradingAccount) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.TradingAccount, error)
	ListIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	List(ctx context.Context, filter entities.AccountFilter, p utils.PaginationParams) ([]*entities.TradingAccount, int64, error)
}
