package entities

import (
	"time"

	"github.com/google/uuid"
)

// KYCSubmission holds personal info and document references for review.
// There is at most one per user.
type KYCSubmission struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"userId"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	DateOfBirth   string     `json:"dateOfBirth"`
	Nationality   string     `json:"nationality"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	PostalCode    string     `json:"postalCode"`
	Country       string     `json:"country"`
	Phone         string     `json:"phone"`
	DocumentType  string     `json:"documentType"`
	DocumentRefs  []string   `json:"documentRefs"`
	Status        KYCStatus  `json:"status"`
	ReviewerNotes string     `json:"reviewerNotes"`
	SubmittedAt   time.Time  `json:"submittedAt"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// SubmitKYCInput is the customer-facing KYC form.
type SubmitKYCInput struct {
	FirstName    string   `json:"firstName" binding:"required,max=100"`
	LastName     string   `json:"lastName" binding:"required,max=100"`
	DateOfBirth  string   `json:"dateOfBirth" binding:"required"`
	Nationality  string   `json:"nationality" binding:"required"`
	Address      string   `json:"address" binding:"required"`
	City         string   `json:"city" binding:"required"`
	PostalCode   string   `json:"postalCode"`
	Country      string   `json:"country" binding:"required"`
	Phone        string   `json:"phone"`
	DocumentType string   `json:"documentType" binding:"required,oneof=passport id_card drivers_license"`
	DocumentRefs []string `json:"documentRefs" binding:"required,min=1,dive,required"`
}

// ReviewKYCInput is the admin decision on a submission.
type ReviewKYCInput struct {
	Status KYCStatus `json:"status" binding:"required,oneof=approved rejected"`
	Notes  string    `json:"notes"`
}
