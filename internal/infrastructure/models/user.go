package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email                  string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name                   string    `gorm:"type:text"`
	FirstName              string    `gorm:"type:text"`
	LastName               string    `gorm:"type:text"`
	Country                string    `gorm:"type:text"`
	KYCStatus              string    `gorm:"type:varchar(20);not null;default:'pending'"`
	IsAdmin                bool      `gorm:"not null;default:false"`
	RequiresPasswordChange bool      `gorm:"not null;default:false"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
	DeletedAt              gorm.DeletedAt `gorm:"index"`
}
