package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	texttemplate "text/template"
)

// Template kinds
const (
	TemplateOrderPending        = "order_pending"
	TemplateOrderPendingAdmin   = "order_pending_admin"
	TemplateOrderCompleted      = "order_completed"
	TemplateOrderCompletedAdmin = "order_completed_admin"
	TemplateCredentialsIssued   = "credentials_issued"
	TemplateKYCStatus           = "kyc_status"
	TemplateWithdrawalStatus    = "withdrawal_status"
)

const layout = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#0b0f19;font-family:Helvetica,Arial,sans-serif;color:#e5e7eb;">
  <table width="100%" cellpadding="0" cellspacing="0" style="padding:32px 0;">
    <tr><td align="center">
      <table width="600" cellpadding="0" cellspacing="0" style="background:#111827;border-radius:12px;padding:32px;">
        <tr><td style="font-size:22px;font-weight:bold;color:#38bdf8;padding-bottom:24px;">PropDesk</td></tr>
        <tr><td style="font-size:15px;line-height:1.6;">{{template "body" .}}</td></tr>
        <tr><td style="font-size:12px;color:#6b7280;padding-top:32px;">You are receiving this email because of activity on your PropDesk account.</td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`

type templateDef struct {
	subject string
	body    string
}

var templateDefs = map[string]templateDef{
	TemplateOrderPending: {
		subject: "We received your order for the {{.AccountSize}} challenge",
		body: `<p>Hi {{.FirstName}},</p>
<p>Thanks for your order. We are waiting for your {{.CryptoAsset}} payment of <strong>{{.CryptoAmount}} {{.CryptoAsset}}</strong> to <code>{{.CryptoAddress}}</code>.</p>
<p>Order: {{.OrderID}}<br>Plan: {{.AccountSize}} {{.AccountType}} on {{.Platform}}<br>Price: ${{.AccountPrice}}</p>
<p>Your verification phrase is <strong>{{.Phrase}}</strong>. Once the transfer is confirmed we will set up your account.</p>`,
	},
	TemplateOrderPendingAdmin: {
		subject: "Crypto payment in flight: {{.Email}} ({{.AccountSize}})",
		body: `<p>A customer reported a manual crypto payment.</p>
<p>Order: {{.OrderID}}<br>Customer: {{.FirstName}} {{.LastName}} &lt;{{.Email}}&gt;<br>
Plan: {{.AccountSize}} {{.AccountType}} on {{.Platform}}<br>Price: ${{.AccountPrice}}<br>
Amount: {{.CryptoAmount}} {{.CryptoAsset}} to {{.CryptoAddress}}<br>Phrase: {{.Phrase}}</p>`,
	},
	TemplateOrderCompleted: {
		subject: "Your {{.AccountSize}} challenge is confirmed",
		body: `<p>Hi {{.FirstName}},</p>
<p>Your payment for the <strong>{{.AccountSize}} {{.AccountType}}</strong> challenge was received. Your trading account is being prepared and credentials will follow shortly.</p>
<p>Receipt: {{.ReceiptID}}</p>
<p><a href="{{.DashboardURL}}" style="color:#38bdf8;">Open your dashboard</a></p>`,
	},
	TemplateOrderCompletedAdmin: {
		subject: "New purchase: {{.Email}} ({{.AccountSize}})",
		body: `<p>A payment was reconciled.</p>
<p>Purchase: {{.PurchaseID}}<br>Account: {{.AccountID}}<br>Receipt: {{.ReceiptID}}<br>
Customer: {{.FirstName}} {{.LastName}} &lt;{{.Email}}&gt;{{if .NewUser}} (new user){{end}}<br>
Plan: {{.PlanID}} / {{.AccountSize}} {{.AccountType}} on {{.Platform}}<br>Price: ${{.AccountPrice}}</p>
<p>Attach credentials from the admin panel to activate the account.</p>`,
	},
	TemplateCredentialsIssued: {
		subject: "Your {{.AccountSize}} account credentials",
		body: `<p>Hi {{.FirstName}},</p>
<p>Your trading account is active.</p>
<p>Platform: {{.Platform}}<br>Server: <strong>{{.Server}}</strong><br>Login: <strong>{{.Login}}</strong><br>Password: <strong>{{.Password}}</strong></p>
<p>Keep these details private. <a href="{{.DashboardURL}}" style="color:#38bdf8;">Open your dashboard</a></p>`,
	},
	TemplateKYCStatus: {
		subject: "Your verification was {{.Status}}",
		body: `<p>Hi {{.FirstName}},</p>
<p>Your identity verification was <strong>{{.Status}}</strong>.</p>
{{if .Notes}}<p>Reviewer notes: {{.Notes}}</p>{{end}}`,
	},
	TemplateWithdrawalStatus: {
		subject: "Your withdrawal request is {{.Status}}",
		body: `<p>Hi {{.FirstName}},</p>
<p>Your withdrawal of <strong>${{.Amount}}</strong> is now <strong>{{.Status}}</strong>.</p>
{{if .Notes}}<p>Notes: {{.Notes}}</p>{{end}}`,
	},
}

// Renderer renders the fixed template set.
type Renderer struct {
	subjects map[string]*texttemplate.Template
	bodies   map[string]*template.Template
}

// NewRenderer parses every template. Parse errors are programming errors.
func NewRenderer() *Renderer {
	r := &Renderer{
		subjects: make(map[string]*texttemplate.Template, len(templateDefs)),
		bodies:   make(map[string]*template.Template, len(templateDefs)),
	}
	base := template.Must(template.New("layout").Option("missingkey=zero").Parse(layout))
	for kind, s := range templateDefs {
		r.subjects[kind] = texttemplate.Must(texttemplate.New(kind + "_subject").Option("missingkey=zero").Parse(s.subject))
		r.bodies[kind] = template.Must(template.Must(base.Clone()).New("body").Parse(s.body))
	}
	return r
}

// Kinds lists the known template kinds.
func (r *Renderer) Kinds() []string {
	kinds := make([]string, 0, len(r.bodies))
	for k := range r.bodies {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Has reports whether kind is a known template.
func (r *Renderer) Has(kind string) bool {
	_, ok := r.bodies[kind]
	return ok
}

// Render produces the subject and HTML body of kind for data.
func (r *Renderer) Render(kind string, data interface{}) (string, string, error) {
	body, ok := r.bodies[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", kind)
	}

	var subject bytes.Buffer
	if err := r.subjects[kind].Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", kind, err)
	}
	var html bytes.Buffer
	if err := body.ExecuteTemplate(&html, "layout", data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", kind, err)
	}
	return subject.String(), html.String(), nil
}
