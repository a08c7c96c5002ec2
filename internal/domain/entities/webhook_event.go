package entities

import (
	"time"

	"github.com/google/uuid"
)

// WebhookOutcome is how a delivery was resolved
type WebhookOutcome string

const (
	WebhookOutcomeProcessed WebhookOutcome = "processed"
	WebhookOutcomeDuplicate WebhookOutcome = "duplicate"
	WebhookOutcomeIgnored   WebhookOutcome = "ignored"
)

// WebhookEvent is a ledger row for a reconciled or duplicate delivery.
type WebhookEvent struct {
	ID         uuid.UUID      `json:"id"`
	ReceiptID  string         `json:"receiptId"`
	EventType  string         `json:"eventType"`
	Outcome    WebhookOutcome `json:"outcome"`
	PurchaseID *uuid.UUID     `json:"purchaseId,omitempty"`
	Payload    string         `json:"-"`
	ReceivedAt time.Time      `json:"receivedAt"`
}

// WebhookResult is returned to the payment processor.
type WebhookResult struct {
	Outcome    WebhookOutcome `json:"-"`
	ReceiptID  string         `json:"-"`
	PurchaseID *uuid.UUID     `json:"purchaseId,omitempty"`
}
