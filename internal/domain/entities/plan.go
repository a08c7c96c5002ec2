package entities

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Plan maps a processor plan id to a challenge tier.
type Plan struct {
	ID          string          `json:"id" mapstructure:"id"`
	AccountSize string          `json:"accountSize" mapstructure:"account_size"`
	Price       decimal.Decimal `json:"price" mapstructure:"-"`
	Type        string          `json:"type" mapstructure:"type"`
}

// NominalSize parses the display size ("$25,000") into a number.
// Unparseable sizes yield zero.
func (p Plan) NominalSize() decimal.Decimal {
	return ParseAccountSize(p.AccountSize)
}

// ParseAccountSize strips currency formatting from a display size.
func ParseAccountSize(display string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, display)
	if cleaned == "" {
		return decimal.Zero
	}
	size, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return size
}
