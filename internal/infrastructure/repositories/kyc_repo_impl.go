package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/infrastructure/models"
	"propdesk.backend/pkg/utils"
)

// KYCRepository implements KYC submission data operations
type KYCRepository struct {
	db *gorm.DB
}

// NewKYCRepository creates a new KYC repository
func NewKYCRepository(db *gorm.DB) *KYCRepository {
	return &KYCRepository{db: db}
}

// Upsert inserts or replaces the user's single submission
func (r *KYCRepository) Upsert(ctx context.Context, s *entities.KYCSubmission) error {
	if s.ID == uuid.Nil {
		s.ID = utils.GenerateUUIDv7()
	}
	m := toKYCModel(s)
	m.UpdatedAt = time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = m.UpdatedAt
	}

	err := GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "date_of_birth", "nationality", "address", "city",
			"postal_code", "country", "phone", "document_type", "document_refs",
			"status", "reviewer_notes", "submitted_at", "reviewed_at", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return translateError(err)
	}

	stored, err := r.GetByUserID(ctx, s.UserID)
	if err != nil {
		return err
	}
	*s = *stored
	return nil
}

// GetByUserID gets the submission of a user
func (r *KYCRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.KYCSubmission, error) {
	var m models.KYCSubmission
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return toKYCEntity(&m), nil
}

// Update records a review decision
func (r *KYCRepository) Update(ctx context.Context, s *entities.KYCSubmission) error {
	result := GetDB(ctx, r.db).Model(&models.KYCSubmission{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"status":         string(s.Status),
		"reviewer_notes": s.ReviewerNotes,
		"reviewed_at":    s.ReviewedAt,
		"updated_at":     time.Now(),
	})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List lists submissions, optionally by status, oldest first for review queues
func (r *KYCRepository) List(ctx context.Context, status entities.KYCStatus, pagination utils.PaginationParams) ([]*entities.KYCSubmission, int64, error) {
	var ms []models.KYCSubmission
	var totalCount int64

	query := GetDB(ctx, r.db).Model(&models.KYCSubmission{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("submitted_at ASC")
	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}

	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	items := make([]*entities.KYCSubmission, 0, len(ms))
	for i := range ms {
		items = append(items, toKYCEntity(&ms[i]))
	}
	return items, totalCount, nil
}

func toKYCModel(s *entities.KYCSubmission) *models.KYCSubmission {
	return &models.KYCSubmission{
		ID:            s.ID,
		UserID:        s.UserID,
		FirstName:     s.FirstName,
		LastName:      s.LastName,
		DateOfBirth:   s.DateOfBirth,
		Nationality:   s.Nationality,
		Address:       s.Address,
		City:          s.City,
		PostalCode:    s.PostalCode,
		Country:       s.Country,
		Phone:         s.Phone,
		DocumentType:  s.DocumentType,
		DocumentRefs:  pq.StringArray(s.DocumentRefs),
		Status:        string(s.Status),
		ReviewerNotes: s.ReviewerNotes,
		SubmittedAt:   s.SubmittedAt,
		ReviewedAt:    s.ReviewedAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func toKYCEntity(m *models.KYCSubmission) *entities.KYCSubmission {
	refs := []string(m.DocumentRefs)
	if refs == nil {
		refs = []string{}
	}
	return &entities.KYCSubmission{
		ID:            m.ID,
		UserID:        m.UserID,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		DateOfBirth:   m.DateOfBirth,
		Nationality:   m.Nationality,
		Address:       m.Address,
		City:          m.City,
		PostalCode:    m.PostalCode,
		Country:       m.Country,
		Phone:         m.Phone,
		DocumentType:  m.DocumentType,
		DocumentRefs:  refs,
		Status:        entities.KYCStatus(m.Status),
		ReviewerNotes: m.ReviewerNotes,
		SubmittedAt:   m.SubmittedAt,
		ReviewedAt:    m.ReviewedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
