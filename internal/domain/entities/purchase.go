package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// PurchaseStatus represents purchase status
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
)

// PaymentMethod represents how a purchase was paid
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodCrypto PaymentMethod = "crypto"
)

// PurchaseSource tags which flow created the purchase
type PurchaseSource string

const (
	PurchaseSourceWebhook      PurchaseSource = "whop_webhook"
	PurchaseSourceCryptoManual PurchaseSource = "crypto_manual"
	PurchaseSourceCheckoutForm PurchaseSource = "checkout_form"
)

// BillingAddress is a snapshot of the payer's address at purchase time.
type BillingAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Purchase represents a monetary transaction attempt for a challenge tier.
type Purchase struct {
	ID                 uuid.UUID       `json:"id"`
	UserID             *uuid.UUID      `json:"userId,omitempty"`
	Email              string          `json:"email"`
	FirstName          string          `json:"firstName"`
	LastName           string          `json:"lastName"`
	AccountSize        string          `json:"accountSize"`
	AccountType        string          `json:"accountType"`
	AccountPrice       decimal.Decimal `json:"accountPrice"`
	Platform           string          `json:"platform"`
	PlanID             string          `json:"planId"`
	PaymentMethod      PaymentMethod   `json:"paymentMethod"`
	ReceiptID          null.String     `json:"receiptId,omitempty"`
	BillingAddress     BillingAddress  `json:"billingAddress"`
	Status             PurchaseStatus  `json:"status"`
	Source             PurchaseSource  `json:"source"`
	CryptoAsset        null.String     `json:"cryptoAsset,omitempty"`
	CryptoAmount       null.String     `json:"cryptoAmount,omitempty"`
	CryptoAddress      null.String     `json:"cryptoAddress,omitempty"`
	VerificationPhrase null.String     `json:"verificationPhrase,omitempty"`
	PaymentSentAt      *time.Time      `json:"paymentSentAt,omitempty"`
	CompletedAt        *time.Time      `json:"completedAt,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// Complete marks a pending purchase as paid under the given receipt id.
func (p *Purchase) Complete(receiptID string, now time.Time) {
	p.Status = PurchaseStatusCompleted
	p.ReceiptID = null.StringFrom(receiptID)
	p.CompletedAt = &now
}

// PurchaseFilter narrows purchase listings.
type PurchaseFilter struct {
	UserID *uuid.UUID
	Status PurchaseStatus
	Source PurchaseSource
}
