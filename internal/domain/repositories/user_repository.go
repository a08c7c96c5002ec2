package repositories

import (
	"context"

	"github.com/google/uuid"
	"propdesk.backend/internal/domain/entities"
	"propdesk.backend/pkg/utils"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error
	SetKYCStatus(ctx context.Context, id uuid.UUID, status entities.KYCStatus) error
	List(ctx context.Context, search string, p utils.PaginationParams) ([]*entities.User, int64, error)
}
