package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propdesk.backend/internal/domain/entities"
)

func TestAdminHandler_RequiresAdminFlag(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.signUp(t, "trader@example.com", false)

	w := app.do(t, http.MethodGet, "/api/v1/admin/users", token, nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodGet, "/api/v1/admin/users", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminHandler_UsersAndAdminFlag(t *testing.T) {
	app := newTestApp(t)
	adminToken, _ := app.signUp(t, "ops@example.com", true)
	_, trader := app.signUp(t, "trader@example.com", false)

	w := app.do(t, http.MethodGet, "/api/v1/admin/users?search=trader&limit=5", adminToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []entities.User `json:"items"`
		Meta  struct {
			TotalCount int64 `json:"totalCount"`
			Limit      int   `json:"limit"`
		} `json:"meta"`
	}
	decode(t, w, &page)
	assert.Equal(t, int64(1), page.Meta.TotalCount)
	assert.Equal(t, 5, page.Meta.Limit)

	w = app.do(t, http.MethodPut, "/api/v1/admin/users/"+trader.ID.String()+"/admin", adminToken, map[string]bool{"isAdmin": true}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var updated entities.User
	decode(t, w, &updated)
	assert.True(t, updated.IsAdmin)

	w = app.do(t, http.MethodPut, "/api/v1/admin/users/not-a-uuid/admin", adminToken, map[string]bool{"isAdmin": true}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPut, "/api/v1/admin/users/"+trader.ID.String()+"/admin", adminToken, map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "isAdmin is required")
}

func TestAdminHandler_AccountCredentialsAndStatus(t *testing.T) {
	app := newTestApp(t)
	adminToken, _ := app.signUp(t, "ops@example.com", true)
	_, trader := app.signUp(t, "trader@example.com", false)

	acc := &entities.TradingAccount{
		UserID: trader.ID, AccountSize: "$25,000", AccountType: "Two-Step", Platform: "MT5",
		Status: entities.AccountStatusPending,
	}
	require.NoError(t, app.accounts.Create(context.Background(), acc))
	base := "/api/v1/admin/accounts/" + acc.ID.String()

	w := app.do(t, http.MethodPut, base+"/status", adminToken, map[string]string{"status": "active"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "activation needs credentials")

	w = app.do(t, http.MethodPut, base+"/credentials", adminToken, map[string]string{"login": "9001"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPut, base+"/credentials", adminToken, map[string]string{
		"login": "9001", "password": "pw", "server": "Demo-1",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var active entities.TradingAccount
	decode(t, w, &active)
	assert.Equal(t, entities.AccountStatusActive, active.Status)
	assert.NotNil(t, active.StartDate)
	assert.Contains(t, app.mail.subjects(), "Your $25,000 account credentials")

	w = app.do(t, http.MethodGet, "/api/v1/admin/accounts?status=active", adminToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), acc.ID.String())

	w = app.do(t, http.MethodGet, "/api/v1/admin/accounts?status=frozen", adminToken, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPut, base+"/status", adminToken, map[string]string{"status": "breached"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAdminHandler_KYCReview(t *testing.T) {
	app := newTestApp(t)
	adminToken, _ := app.signUp(t, "ops@example.com", true)
	traderToken, trader := app.signUp(t, "trader@example.com", false)

	w := app.do(t, http.MethodPut, "/api/v1/me/kyc", traderToken, map[string]interface{}{
		"firstName": "Ada", "lastName": "Lovelace", "dateOfBirth": "1990-12-10",
		"nationality": "GB", "address": "1 Main St", "city": "London", "country": "GB",
		"documentType": "id_card", "documentRefs": []string{"kyc/front.jpg", "kyc/back.jpg"},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(t, http.MethodGet, "/api/v1/admin/kyc?status=pending", adminToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), trader.ID.String())

	review := "/api/v1/admin/kyc/" + trader.ID.String() + "/review"
	w = app.do(t, http.MethodPut, review, adminToken, map[string]string{"status": "pending"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPut, review, adminToken, map[string]string{"status": "approved", "notes": "looks good"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, app.mail.subjects(), "Your verification was approved")

	w = app.do(t, http.MethodGet, "/api/v1/me", traderToken, nil, nil)
	var me entities.User
	decode(t, w, &me)
	assert.Equal(t, entities.KYCStatusApproved, me.KYCStatus)
}

func TestAdminHandler_WithdrawalReview(t *testing.T) {
	app := newTestApp(t)
	adminToken, _ := app.signUp(t, "ops@example.com", true)
	traderToken, _ := app.signUp(t, "trader@example.com", false)

	w := app.do(t, http.MethodPost, "/api/v1/me/withdrawals", traderToken, map[string]interface{}{
		"amount": 500, "method": "bank",
		"bank": map[string]string{"accountName": "Ada Lovelace", "iban": "GB00TEST"},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created entities.Withdrawal
	decode(t, w, &created)

	w = app.do(t, http.MethodGet, "/api/v1/admin/withdrawals?status=pending", adminToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.ID.String())

	w = app.do(t, http.MethodPut, "/api/v1/admin/withdrawals/"+created.ID.String(), adminToken, map[string]string{
		"status": "paid", "adminNotes": "sent",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var paid entities.Withdrawal
	decode(t, w, &paid)
	assert.Equal(t, entities.WithdrawalStatusPaid, paid.Status)
	assert.NotNil(t, paid.ProcessedAt)
	assert.Contains(t, app.mail.subjects(), "Your withdrawal request is paid")

	w = app.do(t, http.MethodPut, "/api/v1/admin/withdrawals/"+created.ID.String(), adminToken, map[string]string{"status": "lost"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_PurchasesAndEmails(t *testing.T) {
	app := newTestApp(t)
	adminToken, _ := app.signUp(t, "ops@example.com", true)

	w := app.do(t, http.MethodPost, "/api/v1/orders/checkout", "", draft("buyer@example.com"), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = app.do(t, http.MethodGet, "/api/v1/admin/purchases?status=pending&source=checkout_form", adminToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "buyer@example.com")

	w = app.do(t, http.MethodGet, "/api/v1/admin/purchases?userId=nope", adminToken, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodGet, "/api/v1/admin/emails", adminToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kyc_status")

	w = app.do(t, http.MethodPost, "/api/v1/admin/emails/kyc_status", adminToken, map[string]interface{}{
		"to":   "customer@example.com",
		"data": map[string]string{"FirstName": "Ada", "Status": "approved"},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Contains(t, app.mail.subjects(), "Your verification was approved")

	w = app.do(t, http.MethodPost, "/api/v1/admin/emails/no_such_template", adminToken, map[string]string{"to": "customer@example.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}
