package models

import "gorm.io/gorm"

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Purchase{},
		&TradingAccount{},
		&KYCSubmission{},
		&Withdrawal{},
		&WebhookEvent{},
	}
}

// AutoMigrate creates or updates the schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
