package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/infrastructure/models"
	"propdesk.backend/pkg/utils"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. Emails are stored lower-cased.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = utils.GenerateUUIDv7()
	}
	if user.KYCStatus == "" {
		user.KYCStatus = entities.KYCStatusPending
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	m := &models.User{
		ID:                     user.ID,
		Email:                  user.Email,
		Name:                   user.Name,
		FirstName:              user.FirstName,
		LastName:               user.LastName,
		Country:                user.Country,
		KYCStatus:              string(user.KYCStatus),
		IsAdmin:                user.IsAdmin,
		RequiresPasswordChange: user.RequiresPasswordChange,
		CreatedAt:              user.CreatedAt,
		UpdatedAt:              user.UpdatedAt,
	}

	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return translateError(err)
	}
	user.CreatedAt = m.CreatedAt
	user.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return toUserEntity(&m), nil
}

// GetByEmail gets a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := GetDB(ctx, r.db).Where("email = ?", normalized).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return toUserEntity(&m), nil
}

// Update updates profile fields of a user
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	updates := map[string]interface{}{
		"name":                     user.Name,
		"first_name":               user.FirstName,
		"last_name":                user.LastName,
		"country":                  user.Country,
		"requires_password_change": user.RequiresPasswordChange,
		"updated_at":               time.Now(),
	}
	return r.updateColumns(ctx, user.ID, updates)
}

// SetAdmin sets the admin flag
func (r *UserRepository) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"is_admin":   isAdmin,
		"updated_at": time.Now(),
	})
}

// SetKYCStatus records the outcome of a KYC review
func (r *UserRepository) SetKYCStatus(ctx context.Context, id uuid.UUID, status entities.KYCStatus) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"kyc_status": string(status),
		"updated_at": time.Now(),
	})
}

func (r *UserRepository) updateColumns(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List lists users with optional search filter on name or email
func (r *UserRepository) List(ctx context.Context, search string, pagination utils.PaginationParams) ([]*entities.User, int64, error) {
	var ms []models.User
	var totalCount int64

	query := GetDB(ctx, r.db).Model(&models.User{})
	if strings.TrimSpace(search) != "" {
		term := likeTerm(search)
		query = query.Where("LOWER(name) LIKE ? OR email LIKE ?", term, term)
	}

	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}

	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	users := make([]*entities.User, 0, len(ms))
	for i := range ms {
		users = append(users, toUserEntity(&ms[i]))
	}
	return users, totalCount, nil
}

func toUserEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:                     m.ID,
		Email:                  m.Email,
		Name:                   m.Name,
		FirstName:              m.FirstName,
		LastName:               m.LastName,
		Country:                m.Country,
		KYCStatus:              entities.KYCStatus(m.KYCStatus),
		IsAdmin:                m.IsAdmin,
		RequiresPasswordChange: m.RequiresPasswordChange,
		Accounts:               []uuid.UUID{},
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}
