package usecases

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
)

const notAvailable = "N/A"

// maxIdentifierLen bounds the email and receipt id columns.
const maxIdentifierLen = 255

// Event types that complete a sale. Everything else is acknowledged and ignored.
var reconciledEventTypes = map[string]bool{
	"payment.succeeded":     true,
	"membership.went_valid": true,
	"membership.created":    true,
	"checkout.completed":    true,
}

type webhookEnvelope struct {
	Action string          `json:"action"`
	Type   string          `json:"type"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

func (e webhookEnvelope) eventType() string {
	for _, t := range []string{e.Type, e.Action, e.Event} {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	return ""
}

// saleFields is what the reconciler needs from a delivery, whatever shape it came in.
type saleFields struct {
	ReceiptID   string
	PlanID      string
	Email       string
	Name        string
	FirstName   string
	LastName    string
	Platform    string
	Billing     entities.BillingAddress
	Price       decimal.Decimal
	HasPrice    bool
	ProductName string
	OrderID     string
}

func decodeEnvelope(raw []byte) (webhookEnvelope, map[string]interface{}, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, nil, fmt.Errorf("%w: %v", domainerrors.ErrMalformedPayload, err)
	}

	data := map[string]interface{}{}
	if len(bytes.TrimSpace(env.Data)) > 0 && !bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(env.Data))
		dec.UseNumber()
		if err := dec.Decode(&data); err != nil {
			return env, nil, fmt.Errorf("%w: data: %v", domainerrors.ErrMalformedPayload, err)
		}
	}
	return env, data, nil
}

func extractSaleFields(data map[string]interface{}) saleFields {
	f := saleFields{
		ReceiptID: lookupString(data, "receipt_id", "payment_id", "id"),
		PlanID:    lookupString(data, "plan_id", "plan.id"),
		Email: strings.ToLower(lookupString(data,
			"email", "user.email", "customer.email", "billing_details.email", "customer_email")),
		Name:        lookupString(data, "name", "user.name", "customer.name", "billing_details.name", "user.username"),
		Platform:    lookupString(data, "metadata.platform", "custom_fields.platform"),
		ProductName: lookupString(data, "product.name", "product_name", "plan.name", "product.title"),
		OrderID:     lookupString(data, "metadata.order_id", "metadata.orderId"),
	}

	f.FirstName, f.LastName = splitName(f.Name, f.Email)
	if f.Platform == "" {
		f.Platform = notAvailable
	}

	for _, prefix := range []string{"billing_address.", "billing_details.address.", "address."} {
		addr := entities.BillingAddress{
			Line1:      lookupString(data, prefix+"line1"),
			Line2:      lookupString(data, prefix+"line2"),
			City:       lookupString(data, prefix+"city"),
			State:      lookupString(data, prefix+"state"),
			PostalCode: lookupString(data, prefix+"postal_code"),
			Country:    lookupString(data, prefix+"country"),
		}
		if addr != (entities.BillingAddress{}) {
			f.Billing = addr
			break
		}
	}
	f.Billing = fillBilling(f.Billing)

	for _, key := range []string{"final_amount", "total", "amount", "price", "plan.price"} {
		if d, ok := lookupDecimal(data, key); ok {
			f.Price, f.HasPrice = d, true
			break
		}
	}
	return f
}

// syntheticReceiptID derives a stable id from the delivery data so that a
// redelivery of a receipt-less event maps to the same purchase.
func syntheticReceiptID(data map[string]interface{}) string {
	// encoding/json sorts map keys, which makes this canonical.
	canonical, _ := json.Marshal(data)
	sum := sha256.Sum256(canonical)
	return "whop_" + hex.EncodeToString(sum[:])[:32]
}

func splitName(name, email string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
			return local, notAvailable
		}
		return notAvailable, notAvailable
	case 1:
		return parts[0], notAvailable
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func fillBilling(a entities.BillingAddress) entities.BillingAddress {
	for _, field := range []*string{&a.Line1, &a.City, &a.State, &a.PostalCode, &a.Country} {
		if *field == "" {
			*field = notAvailable
		}
	}
	return a
}

// lookup walks dotted paths and returns the first non-empty value.
func lookup(data map[string]interface{}, paths ...string) (interface{}, bool) {
	for _, path := range paths {
		var cur interface{} = data
		found := true
		for _, key := range strings.Split(path, ".") {
			m, ok := cur.(map[string]interface{})
			if !ok {
				found = false
				break
			}
			if cur, ok = m[key]; !ok || cur == nil {
				found = false
				break
			}
		}
		if found {
			if s, ok := cur.(string); ok && strings.TrimSpace(s) == "" {
				continue
			}
			return cur, true
		}
	}
	return nil, false
}

func lookupString(data map[string]interface{}, paths ...string) string {
	v, ok := lookup(data, paths...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return fmt.Sprint(t)
	}
	return ""
}

func lookupDecimal(data map[string]interface{}, paths ...string) (decimal.Decimal, bool) {
	v, ok := lookup(data, paths...)
	if !ok {
		return decimal.Zero, false
	}
	var raw string
	switch t := v.(type) {
	case json.Number:
		raw = t.String()
	case string:
		raw = strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(t), ",", ""), "$")
	default:
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}
