package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainerrors "propdesk.backend/internal/domain/errors"
)

// AccountStatus represents trading account status
type AccountStatus string

const (
	AccountStatusPending  AccountStatus = "pending"
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
	AccountStatusBreached AccountStatus = "breached"
)

// Valid reports whether s is a known account status.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusPending, AccountStatusActive, AccountStatusInactive, AccountStatusBreached:
		return true
	}
	return false
}

// Credentials is the platform login bundle handed to the trader.
type Credentials struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
	Server   string `json:"server" binding:"required"`
}

func (c Credentials) complete() bool {
	return strings.TrimSpace(c.Login) != "" &&
		strings.TrimSpace(c.Password) != "" &&
		strings.TrimSpace(c.Server) != ""
}

// TradingAccount is a provisioned challenge account.
// Active accounts always carry credentials, pending ones never do.
type TradingAccount struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	PurchaseID  *uuid.UUID      `json:"purchaseId,omitempty"`
	AccountSize string          `json:"accountSize"`
	AccountType string          `json:"accountType"`
	Platform    string          `json:"platform"`
	Status      AccountStatus   `json:"status"`
	Balance     decimal.Decimal `json:"balance"`
	Profit      decimal.Decimal `json:"profit"`
	StartDate   *time.Time      `json:"startDate,omitempty"`
	Credentials *Credentials    `json:"credentials"`
	PlanID      string          `json:"planId"`
	ReceiptID   string          `json:"receiptId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// AttachCredentials activates the account with the given login bundle.
func (a *TradingAccount) AttachCredentials(creds Credentials, now time.Time) error {
	if !creds.complete() {
		return domainerrors.ErrCredentialsRequired
	}
	a.Credentials = &creds
	a.Status = AccountStatusActive
	if a.StartDate == nil {
		a.StartDate = &now
	}
	return nil
}

// SetStatus moves the account to status. Returning to pending revokes credentials.
func (a *TradingAccount) SetStatus(status AccountStatus) error {
	if !status.Valid() {
		return domainerrors.ErrInvalidTransition
	}
	switch status {
	case AccountStatusActive:
		if a.Credentials == nil {
			return domainerrors.ErrCredentialsRequired
		}
	case AccountStatusPending:
		a.Credentials = nil
		a.StartDate = nil
	}
	a.Status = status
	return nil
}

// Validate checks the status/credentials invariant.
func (a *TradingAccount) Validate() error {
	switch a.Status {
	case AccountStatusActive:
		if a.Credentials == nil {
			return domainerrors.ErrCredentialsRequired
		}
	case AccountStatusPending:
		if a.Credentials != nil {
			return domainerrors.ErrInvalidTransition
		}
	}
	return nil
}

// AccountFilter narrows account listings.
type AccountFilter struct {
	UserID *uuid.UUID
	Status AccountStatus
}

// UpdateAccountStatusInput is the admin status change payload.
type UpdateAccountStatusInput struct {
	Status AccountStatus `json:"status" binding:"required"`
}
