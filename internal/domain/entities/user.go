package entities

import (
	"time"

	"github.com/google/uuid"
)

// KYCStatus represents KYC verification status
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "pending"
	KYCStatusApproved KYCStatus = "approved"
	KYCStatusRejected KYCStatus = "rejected"
)

// Valid reports whether s is a known KYC status.
func (s KYCStatus) Valid() bool {
	switch s {
	case KYCStatusPending, KYCStatusApproved, KYCStatusRejected:
		return true
	}
	return false
}

// User represents a customer or operator identity.
// Accounts is derived from trading accounts referencing the user and is never stored.
type User struct {
	ID                     uuid.UUID   `json:"id"`
	Email                  string      `json:"email"`
	Name                   string      `json:"name"`
	FirstName              string      `json:"firstName"`
	LastName               string      `json:"lastName"`
	Country                string      `json:"country"`
	KYCStatus              KYCStatus   `json:"kycStatus"`
	IsAdmin                bool        `json:"isAdmin"`
	RequiresPasswordChange bool        `json:"requiresPasswordChange"`
	Accounts               []uuid.UUID `json:"accounts"`
	CreatedAt              time.Time   `json:"createdAt"`
	UpdatedAt              time.Time   `json:"updatedAt"`
}

// EnsureProfileInput carries the optional profile fields sent at signup.
type EnsureProfileInput struct {
	Name    string `json:"name" binding:"omitempty,max=100"`
	Country string `json:"country" binding:"omitempty,max=64"`
}

// SetAdminInput toggles the admin flag of a user.
type SetAdminInput struct {
	IsAdmin *bool `json:"isAdmin" binding:"required"`
}
