package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type KYCSubmission struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	FirstName     string         `gorm:"type:varchar(100)"`
	LastName      string         `gorm:"type:varchar(100)"`
	DateOfBirth   string         `gorm:"type:varchar(32)"`
	Nationality   string         `gorm:"type:varchar(64)"`
	Address       string         `gorm:"type:varchar(255)"`
	City          string         `gorm:"type:varchar(100)"`
	PostalCode    string         `gorm:"type:varchar(32)"`
	Country       string         `gorm:"type:varchar(64)"`
	Phone         string         `gorm:"type:varchar(32)"`
	DocumentType  string         `gorm:"type:varchar(32)"`
	DocumentRefs  pq.StringArray `gorm:"type:text[]"`
	Status        string         `gorm:"type:varchar(16);not null;index"`
	ReviewerNotes string         `gorm:"type:text"`
	SubmittedAt   time.Time
	ReviewedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (KYCSubmission) TableName() string {
	return "kyc_submissions"
}
