package mailer

import "github.com/shopspring/decimal"

// OrderData feeds the order templates.
type OrderData struct {
	OrderID       string
	PurchaseID    string
	AccountID     string
	ReceiptID     string
	FirstName     string
	LastName      string
	Email         string
	PlanID        string
	AccountSize   string
	AccountType   string
	AccountPrice  decimal.Decimal
	Platform      string
	CryptoAsset   string
	CryptoAmount  string
	CryptoAddress string
	Phrase        string
	DashboardURL  string
	NewUser       bool
}

// CredentialsData feeds the credentials-issued template.
type CredentialsData struct {
	FirstName    string
	AccountSize  string
	Platform     string
	Server       string
	Login        string
	Password     string
	DashboardURL string
}

// StatusData feeds the KYC and withdrawal status templates.
type StatusData struct {
	FirstName string
	Status    string
	Notes     string
	Amount    decimal.Decimal
}
