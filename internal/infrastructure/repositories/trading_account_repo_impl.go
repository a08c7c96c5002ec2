package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/infrastructure/models"
	"propdesk.backend/pkg/utils"
)

// CredentialSealer encrypts credential bundles bound to their account id.
type CredentialSealer interface {
	Seal(plaintext, additionalData []byte) (string, error)
	Open(encoded string, additionalData []byte) ([]byte, error)
}

// TradingAccountRepository implements trading account data operations
type TradingAccountRepository struct {
	db     *gorm.DB
	sealer CredentialSealer
}

// NewTradingAccountRepository creates a new trading account repository
func NewTradingAccountRepository(db *gorm.DB, sealer CredentialSealer) *TradingAccountRepository {
	return &TradingAccountRepository{db: db, sealer: sealer}
}

// Create inserts an account after checking the credential invariant
func (r *TradingAccountRepository) Create(ctx context.Context, account *entities.TradingAccount) error {
	if err := account.Validate(); err != nil {
		return err
	}
	if account.ID == uuid.Nil {
		account.ID = utils.GenerateUUIDv7()
	}
	m, err := r.toModel(account)
	if err != nil {
		return err
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return translateError(err)
	}
	account.CreatedAt = m.CreatedAt
	account.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets an account by ID
func (r *TradingAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TradingAccount, error) {
	var m models.TradingAccount
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return r.toEntity(&m)
}

// Update overwrites status, balances and credentials of an account
func (r *TradingAccountRepository) Update(ctx context.Context, account *entities.TradingAccount) error {
	if err := account.Validate(); err != nil {
		return err
	}
	m, err := r.toModel(account)
	if err != nil {
		return err
	}
	m.UpdatedAt = time.Now()

	result := GetDB(ctx, r.db).Model(&models.TradingAccount{}).Where("id = ?", account.ID).
		Select("status", "balance", "profit", "start_date", "sealed_credentials", "platform", "updated_at").
		Updates(m)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	account.UpdatedAt = m.UpdatedAt
	return nil
}

// ListByUser lists the accounts owned by a user
func (r *TradingAccountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.TradingAccount, error) {
	var ms []models.TradingAccount
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms)
}

// ListIDsByUser returns the ids of a user's accounts, oldest first
func (r *TradingAccountRepository) ListIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := GetDB(ctx, r.db).Model(&models.TradingAccount{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// List lists accounts with optional filters
func (r *TradingAccountRepository) List(ctx context.Context, filter entities.AccountFilter, pagination utils.PaginationParams) ([]*entities.TradingAccount, int64, error) {
	var ms []models.TradingAccount
	var totalCount int64

	query := GetDB(ctx, r.db).Model(&models.TradingAccount{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
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

	accounts, err := r.toEntities(ms)
	if err != nil {
		return nil, 0, err
	}
	return accounts, totalCount, nil
}

func (r *TradingAccountRepository) toEntities(ms []models.TradingAccount) ([]*entities.TradingAccount, error) {
	accounts := make([]*entities.TradingAccount, 0, len(ms))
	for i := range ms {
		acc, err := r.toEntity(&ms[i])
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func (r *TradingAccountRepository) toModel(a *entities.TradingAccount) (*models.TradingAccount, error) {
	m := &models.TradingAccount{
		ID:          a.ID,
		UserID:      a.UserID,
		PurchaseID:  a.PurchaseID,
		AccountSize: a.AccountSize,
		AccountType: a.AccountType,
		Platform:    a.Platform,
		Status:      string(a.Status),
		Balance:     a.Balance,
		Profit:      a.Profit,
		StartDate:   a.StartDate,
		PlanID:      a.PlanID,
		ReceiptID:   null.NewString(a.ReceiptID, a.ReceiptID != "").Ptr(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.Credentials != nil {
		plain, err := json.Marshal(a.Credentials)
		if err != nil {
			return nil, err
		}
		sealed, err := r.sealer.Seal(plain, a.ID[:])
		if err != nil {
			return nil, fmt.Errorf("failed to seal credentials: %w", err)
		}
		m.SealedCredentials = &sealed
	}
	return m, nil
}

func (r *TradingAccountRepository) toEntity(m *models.TradingAccount) (*entities.TradingAccount, error) {
	a := &entities.TradingAccount{
		ID:          m.ID,
		UserID:      m.UserID,
		PurchaseID:  m.PurchaseID,
		AccountSize: m.AccountSize,
		AccountType: m.AccountType,
		Platform:    m.Platform,
		Status:      entities.AccountStatus(m.Status),
		Balance:     m.Balance,
		Profit:      m.Profit,
		StartDate:   m.StartDate,
		PlanID:      m.PlanID,
		ReceiptID:   null.StringFromPtr(m.ReceiptID).String,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.SealedCredentials != nil && *m.SealedCredentials != "" {
		plain, err := r.sealer.Open(*m.SealedCredentials, m.ID[:])
		if err != nil {
			return nil, fmt.Errorf("failed to open credentials for account %s: %w", m.ID, err)
		}
		var creds entities.Credentials
		if err := json.Unmarshal(plain, &creds); err != nil {
			return nil, err
		}
		a.Credentials = &creds
	}
	return a, nil
}
