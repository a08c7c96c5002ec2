package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TradingAccount struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseID        *uuid.UUID      `gorm:"type:uuid;index"`
	AccountSize       string          `gorm:"type:text"`
	AccountType       string          `gorm:"type:text"`
	Platform          string          `gorm:"type:text"`
	Status            string          `gorm:"type:varchar(16);not null;index"`
	Balance           decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Profit            decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	StartDate         *time.Time
	SealedCredentials *string `gorm:"type:text"`
	PlanID            string  `gorm:"type:text"`
	ReceiptID         *string `gorm:"type:varchar(255);uniqueIndex"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
