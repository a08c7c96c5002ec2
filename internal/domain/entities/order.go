package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// CryptoQuoteInput asks for a crypto amount and phrase for a USD price.
type CryptoQuoteInput struct {
	USDAmount decimal.Decimal `json:"usdAmount" binding:"required"`
	Asset     string          `json:"asset" binding:"required"`
}

// CryptoQuote is the payment page challenge: amount, address and phrase.
type CryptoQuote struct {
	QuoteID      string          `json:"quoteId"`
	Asset        Asset           `json:"asset"`
	USDAmount    decimal.Decimal `json:"usdAmount"`
	CryptoAmount decimal.Decimal `json:"cryptoAmount"`
	Address      string          `json:"address"`
	Phrase       string          `json:"phrase"`
	ExpiresAt    time.Time       `json:"expiresAt"`
}

// OrderDraft is the tier, pricing and contact snapshot submitted with an order.
type OrderDraft struct {
	PlanID         string          `json:"planId"`
	AccountSize    string          `json:"accountSize"`
	AccountType    string          `json:"accountType"`
	AccountPrice   decimal.Decimal `json:"accountPrice"`
	Platform       string          `json:"platform" binding:"required"`
	Email          string          `json:"email" binding:"required,email"`
	FirstName      string          `json:"firstName" binding:"required"`
	LastName       string          `json:"lastName" binding:"required"`
	BillingAddress BillingAddress  `json:"billingAddress"`
}

// SubmitCryptoOrderInput confirms a quote by retyping its phrase.
type SubmitCryptoOrderInput struct {
	QuoteID string     `json:"quoteId" binding:"required"`
	Phrase  string     `json:"phrase" binding:"required"`
	Order   OrderDraft `json:"order" binding:"required"`
}

// OrderResult is returned from order submission.
type OrderResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}
