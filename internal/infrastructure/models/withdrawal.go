package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Withdrawal rows allow at most one pending request per user.
type Withdrawal struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_withdrawals_user_pending,where:status = 'pending'"`
	AccountID         *uuid.UUID      `gorm:"type:uuid"`
	Amount            decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Method            string          `gorm:"type:varchar(16);not null"`
	WalletAddress     string          `gorm:"type:varchar(255)"`
	CryptoAsset       string          `gorm:"type:varchar(8)"`
	BankAccountName   string          `gorm:"type:varchar(255)"`
	BankAccountNumber string          `gorm:"type:varchar(64)"`
	BankName          string          `gorm:"type:varchar(255)"`
	BankSwiftCode     string          `gorm:"type:varchar(32)"`
	BankIBAN          string          `gorm:"column:bank_iban;type:varchar(64)"`
	Status            string          `gorm:"type:varchar(16);not null;index"`
	AdminNotes        string          `gorm:"type:text"`
	ProcessedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
