package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/infrastructure/models"
	"propdesk.backend/pkg/utils"
)

// WithdrawalRepository implements payout request data operations
type WithdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// Create inserts a withdrawal request
func (r *WithdrawalRepository) Create(ctx context.Context, w *entities.Withdrawal) error {
	if w.ID == uuid.Nil {
		w.ID = utils.GenerateUUIDv7()
	}
	m := toWithdrawalModel(w)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return translateError(err)
	}
	w.CreatedAt = m.CreatedAt
	w.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a withdrawal by ID
func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Withdrawal, error) {
	var m models.Withdrawal
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return toWithdrawalEntity(&m), nil
}

// GetPendingByUser gets the user's open request, if any
func (r *WithdrawalRepository) GetPendingByUser(ctx context.Context, userID uuid.UUID) (*entities.Withdrawal, error) {
	var m models.Withdrawal
	err := GetDB(ctx, r.db).
		Where("user_id = ? AND status = ?", userID, string(entities.WithdrawalStatusPending)).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		return nil, translateError(err)
	}
	return toWithdrawalEntity(&m), nil
}

// Update records an admin decision
func (r *WithdrawalRepository) Update(ctx context.Context, w *entities.Withdrawal) error {
	result := GetDB(ctx, r.db).Model(&models.Withdrawal{}).Where("id = ?", w.ID).Updates(map[string]interface{}{
		"status":       string(w.Status),
		"admin_notes":  w.AdminNotes,
		"processed_at": w.ProcessedAt,
		"updated_at":   time.Now(),
	})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListByUser lists a user's requests, newest first
func (r *WithdrawalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Withdrawal, error) {
	var ms []models.Withdrawal
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	items := make([]*entities.Withdrawal, 0, len(ms))
	for i := range ms {
		items = append(items, toWithdrawalEntity(&ms[i]))
	}
	return items, nil
}

// List lists requests, optionally by status
func (r *WithdrawalRepository) List(ctx context.Context, status entities.WithdrawalStatus, pagination utils.PaginationParams) ([]*entities.Withdrawal, int64, error) {
	var ms []models.Withdrawal
	var totalCount int64

	query := GetDB(ctx, r.db).Model(&models.Withdrawal{})
	if status != "" {
		query = query.Where("status = ?", string(status))
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

	items := make([]*entities.Withdrawal, 0, len(ms))
	for i := range ms {
		items = append(items, toWithdrawalEntity(&ms[i]))
	}
	return items, totalCount, nil
}

func toWithdrawalModel(w *entities.Withdrawal) *models.Withdrawal {
	return &models.Withdrawal{
		ID:                w.ID,
		UserID:            w.UserID,
		AccountID:         w.AccountID,
		Amount:            w.Amount,
		Method:            string(w.Method),
		WalletAddress:     w.WalletAddress,
		CryptoAsset:       w.CryptoAsset,
		BankAccountName:   w.Bank.AccountName,
		BankAccountNumber: w.Bank.AccountNumber,
		BankName:          w.Bank.BankName,
		BankSwiftCode:     w.Bank.SwiftCode,
		BankIBAN:          w.Bank.IBAN,
		Status:            string(w.Status),
		AdminNotes:        w.AdminNotes,
		ProcessedAt:       w.ProcessedAt,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
}

func toWithdrawalEntity(m *models.Withdrawal) *entities.Withdrawal {
	return &entities.Withdrawal{
		ID:            m.ID,
		UserID:        m.UserID,
		AccountID:     m.AccountID,
		Amount:        m.Amount,
		Method:        entities.WithdrawalMethod(m.Method),
		WalletAddress: m.WalletAddress,
		CryptoAsset:   m.CryptoAsset,
		Bank: entities.BankDetails{
			AccountName:   m.BankAccountName,
			AccountNumber: m.BankAccountNumber,
			BankName:      m.BankName,
			SwiftCode:     m.BankSwiftCode,
			IBAN:          m.BankIBAN,
		},
		Status:      entities.WithdrawalStatus(m.Status),
		AdminNotes:  m.AdminNotes,
		ProcessedAt: m.ProcessedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
