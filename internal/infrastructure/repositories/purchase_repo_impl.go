package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/infrastructure/models"
	"propdesk.backend/pkg/utils"
)

// PurchaseRepository implements purchase data operations
type PurchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// Create inserts a purchase. A reused receipt id yields ErrAlreadyExists.
func (r *PurchaseRepository) Create(ctx context.Context, purchase *entities.Purchase) error {
	if purchase.ID == uuid.Nil {
		purchase.ID = utils.GenerateUUIDv7()
	}
	m := toPurchaseModel(purchase)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return translateError(err)
	}
	purchase.CreatedAt = m.CreatedAt
	purchase.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a purchase by ID
func (r *PurchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Purchase, error) {
	var m models.Purchase
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return toPurchaseEntity(&m), nil
}

// GetByReceiptID gets the purchase recorded for a processor receipt
func (r *PurchaseRepository) GetByReceiptID(ctx context.Context, receiptID string) (*entities.Purchase, error) {
	var m models.Purchase
	if err := GetDB(ctx, r.db).Where("receipt_id = ?", receiptID).First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return toPurchaseEntity(&m), nil
}

// Update overwrites a purchase
func (r *PurchaseRepository) Update(ctx context.Context, purchase *entities.Purchase) error {
	m := toPurchaseModel(purchase)
	m.UpdatedAt = time.Now()
	result := GetDB(ctx, r.db).Model(&models.Purchase{}).Where("id = ?", purchase.ID).
		Select("*").Omit("id", "created_at").Updates(m)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	purchase.UpdatedAt = m.UpdatedAt
	return nil
}

// CompletePending writes a completed purchase over a row that is still
// pending. The status guard is re-checked after any row lock wait, so only one
// of two racing completions affects the row.
func (r *PurchaseRepository) CompletePending(ctx context.Context, purchase *entities.Purchase) error {
	m := toPurchaseModel(purchase)
	m.UpdatedAt = time.Now()
	result := GetDB(ctx, r.db).Model(&models.Purchase{}).
		Where("id = ? AND status = ?", purchase.ID, string(entities.PurchaseStatusPending)).
		Select("*").Omit("id", "created_at").Updates(m)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, purchase.ID); err != nil {
			return err
		}
		return domainerrors.ErrInvalidTransition
	}
	purchase.UpdatedAt = m.UpdatedAt
	return nil
}

// List lists purchases, newest first
func (r *PurchaseRepository) List(ctx context.Context, filter entities.PurchaseFilter, pagination utils.PaginationParams) ([]*entities.Purchase, int64, error) {
	var ms []models.Purchase
	var totalCount int64

	query := GetDB(ctx, r.db).Model(&models.Purchase{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Source != "" {
		query = query.Where("source = ?", string(filter.Source))
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

	purchases := make([]*entities.Purchase, 0, len(ms))
	for i := range ms {
		purchases = append(purchases, toPurchaseEntity(&ms[i]))
	}
	return purchases, totalCount, nil
}

func toPurchaseModel(p *entities.Purchase) *models.Purchase {
	return &models.Purchase{
		ID:            p.ID,
		UserID:        p.UserID,
		Email:         p.Email,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		AccountSize:   p.AccountSize,
		AccountType:   p.AccountType,
		AccountPrice:  p.AccountPrice,
		Platform:      p.Platform,
		PlanID:        p.PlanID,
		PaymentMethod: string(p.PaymentMethod),
		ReceiptID:     p.ReceiptID.Ptr(),
		BillingAddress: models.BillingAddress{
			Line1:      p.BillingAddress.Line1,
			Line2:      p.BillingAddress.Line2,
			City:       p.BillingAddress.City,
			State:      p.BillingAddress.State,
			PostalCode: p.BillingAddress.PostalCode,
			Country:    p.BillingAddress.Country,
		},
		Status:             string(p.Status),
		Source:             string(p.Source),
		CryptoAsset:        p.CryptoAsset.Ptr(),
		CryptoAmount:       p.CryptoAmount.Ptr(),
		CryptoAddress:      p.CryptoAddress.Ptr(),
		VerificationPhrase: p.VerificationPhrase.Ptr(),
		PaymentSentAt:      p.PaymentSentAt,
		CompletedAt:        p.CompletedAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func toPurchaseEntity(m *models.Purchase) *entities.Purchase {
	return &entities.Purchase{
		ID:            m.ID,
		UserID:        m.UserID,
		Email:         m.Email,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		AccountSize:   m.AccountSize,
		AccountType:   m.AccountType,
		AccountPrice:  m.AccountPrice,
		Platform:      m.Platform,
		PlanID:        m.PlanID,
		PaymentMethod: entities.PaymentMethod(m.PaymentMethod),
		ReceiptID:     null.StringFromPtr(m.ReceiptID),
		BillingAddress: entities.BillingAddress{
			Line1:      m.BillingAddress.Line1,
			Line2:      m.BillingAddress.Line2,
			City:       m.BillingAddress.City,
			State:      m.BillingAddress.State,
			PostalCode: m.BillingAddress.PostalCode,
			Country:    m.BillingAddress.Country,
		},
		Status:             entities.PurchaseStatus(m.Status),
		Source:             entities.PurchaseSource(m.Source),
		CryptoAsset:        null.StringFromPtr(m.CryptoAsset),
		CryptoAmount:       null.StringFromPtr(m.CryptoAmount),
		CryptoAddress:      null.StringFromPtr(m.CryptoAddress),
		VerificationPhrase: null.StringFromPtr(m.VerificationPhrase),
		PaymentSentAt:      m.PaymentSentAt,
		CompletedAt:        m.CompletedAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
