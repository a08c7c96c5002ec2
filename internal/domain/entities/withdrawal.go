package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalStatus represents payout request status
type WithdrawalStatus string

const (
	WithdrawalStatusPending  WithdrawalStatus = "pending"
	WithdrawalStatusApproved WithdrawalStatus = "approved"
	WithdrawalStatusRejected WithdrawalStatus = "rejected"
	WithdrawalStatusPaid     WithdrawalStatus = "paid"
)

// WithdrawalMethod is where the payout goes
type WithdrawalMethod string

const (
	WithdrawalMethodCrypto WithdrawalMethod = "crypto"
	WithdrawalMethodBank   WithdrawalMethod = "bank"
)

// BankDetails is the bank payout destination.
type BankDetails struct {
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	SwiftCode     string `json:"swiftCode"`
	IBAN          string `json:"iban"`
}

// Withdrawal is a payout request.
type Withdrawal struct {
	ID            uuid.UUID        `json:"id"`
	UserID        uuid.UUID        `json:"userId"`
	AccountID     *uuid.UUID       `json:"accountId,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
	Method        WithdrawalMethod `json:"method"`
	WalletAddress string           `json:"walletAddress,omitempty"`
	CryptoAsset   string           `json:"cryptoAsset,omitempty"`
	Bank          BankDetails      `json:"bank"`
	Status        WithdrawalStatus `json:"status"`
	AdminNotes    string           `json:"adminNotes"`
	ProcessedAt   *time.Time       `json:"processedAt,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// CreateWithdrawalInput is the customer payout request.
type CreateWithdrawalInput struct {
	AccountID     *uuid.UUID       `json:"accountId"`
	Amount        decimal.Decimal  `json:"amount" binding:"required"`
	Method        WithdrawalMethod `json:"method" binding:"required,oneof=crypto bank"`
	WalletAddress string           `json:"walletAddress"`
	CryptoAsset   string           `json:"cryptoAsset"`
	Bank          BankDetails      `json:"bank"`
}

// UpdateWithdrawalInput is the admin review of a payout.
type UpdateWithdrawalInput struct {
	Status     WithdrawalStatus `json:"status" binding:"required,oneof=pending approved rejected paid"`
	AdminNotes string           `json:"adminNotes"`
}
