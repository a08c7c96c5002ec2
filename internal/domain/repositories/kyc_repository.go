package repositories

import (
	"context"

	"github.com/google/uuid"
	"propdesk.backend/internal/domain/entities"
	"propdesk.backend/pkg/utils"
)

// KYCRepository defines KYC submission data operations
type KYCRepository interface {
	Upsert(ctx context.Context, submission *entities.KYCSubmission) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.KYCSubmission, error)
	Update(ctx context.Context, submission *entities.KYCSubmission) error
	List(ctx context.Context, status entities.KYCStatus, p utils.PaginationParams) ([]*entities.KYCSubmission, int64, error)
}
