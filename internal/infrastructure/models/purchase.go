package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BillingAddress struct {
	Line1      string `gorm:"type:text"`
	Line2      string `gorm:"type:text"`
	City       string `gorm:"type:text"`
	State      string `gorm:"type:text"`
	PostalCode string `gorm:"type:text"`
	Country    string `gorm:"type:text"`
}

type Purchase struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID             *uuid.UUID      `gorm:"type:uuid;index"`
	Email              string          `gorm:"type:varchar(255);not null;index"`
	FirstName          string          `gorm:"type:text"`
	LastName           string          `gorm:"type:text"`
	AccountSize        string          `gorm:"type:text"`
	AccountType        string          `gorm:"type:text"`
	AccountPrice       decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Platform           string          `gorm:"type:text"`
	PlanID             string          `gorm:"type:text;index"`
	PaymentMethod      string          `gorm:"type:varchar(16);not null"`
	ReceiptID          *string         `gorm:"type:varchar(255);uniqueIndex"`
	BillingAddress     BillingAddress  `gorm:"embedded;embeddedPrefix:billing_"`
	Status             string          `gorm:"type:varchar(16);not null;index"`
	Source             string          `gorm:"type:varchar(32);not null"`
	CryptoAsset        *string         `gorm:"type:varchar(8)"`
	CryptoAmount       *string         `gorm:"type:varchar(64)"`
	CryptoAddress      *string         `gorm:"type:varchar(255)"`
	VerificationPhrase *string         `gorm:"type:varchar(255)"`
	PaymentSentAt      *time.Time
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
