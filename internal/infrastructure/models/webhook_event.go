package models

import (
	"time"

	"github.com/google/uuid"
)

type WebhookEvent struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ReceiptID  string     `gorm:"type:varchar(255);not null;index"`
	EventType  string     `gorm:"type:varchar(64);not null"`
	Outcome    string     `gorm:"type:varchar(16);not null"`
	PurchaseID *uuid.UUID `gorm:"type:uuid"`
	Payload    string     `gorm:"type:text"`
	ReceivedAt time.Time  `gorm:"not null"`
}
