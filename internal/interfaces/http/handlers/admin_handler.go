package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/interfaces/http/response"
	"propdesk.backend/internal/usecases"
	"propdesk.backend/pkg/utils"
)

type userDirectory interface {
	List(ctx context.Context, search string, p utils.PaginationParams) ([]*entities.User, int64, error)
	SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*entities.User, error)
}

type accountAdmin interface {
	List(ctx context.Context, filter entities.AccountFilter, p utils.PaginationParams) ([]*entities.TradingAccount, int64, error)
	ListPurchases(ctx context.Context, filter entities.PurchaseFilter, p utils.PaginationParams) ([]*entities.Purchase, int64, error)
	AttachCredentials(ctx context.Context, id uuid.UUID, creds entities.Credentials) (*entities.TradingAccount, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.AccountStatus) (*entities.TradingAccount, error)
}

type kycAdmin interface {
	List(ctx context.Context, status entities.KYCStatus, p utils.PaginationParams) ([]*entities.KYCSubmission, int64, error)
	Review(ctx context.Context, userID uuid.UUID, input *entities.ReviewKYCInput) (*entities.KYCSubmission, error)
}

type withdrawalAdmin interface {
	List(ctx context.Context, status entities.WithdrawalStatus, p utils.PaginationParams) ([]*entities.Withdrawal, int64, error)
	Update(ctx context.Context, id uuid.UUID, input *entities.UpdateWithdrawalInput) (*entities.Withdrawal, error)
}

type emailService interface {
	Send(ctx context.Context, kind, recipient string, data interface{}) error
	Templates() []string
}

// AdminHandler handles back-office endpoints
type AdminHandler struct {
	users         userDirectory
	accounts      accountAdmin
	kyc           kycAdmin
	withdrawals   withdrawalAdmin
	notifications emailService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	users *usecases.UserUsecase,
	accounts *usecases.AccountUsecase,
	kyc *usecases.KYCUsecase,
	withdrawals *usecases.WithdrawalUsecase,
	notifications *usecases.NotificationUsecase,
) *AdminHandler {
	return &AdminHandler{
		users:         users,
		accounts:      accounts,
		kyc:           kyc,
		withdrawals:   withdrawals,
		notifications: notifications,
	}
}

// SendEmailInput is the body of the operator email endpoint.
type SendEmailInput struct {
	To   string                 `json:"to" binding:"required,email"`
	Data map[string]interface{} `json:"data"`
}

// ListUsers lists users, optionally filtered by a search term
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	p := pagination(c)
	items, total, err := h.users.List(c.Request.Context(), c.Query("search"), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, p)
}

// SetAdmin toggles a user's admin flag
// PUT /api/v1/admin/users/:id/admin
func (h *AdminHandler) SetAdmin(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var input entities.SetAdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	user, err := h.users.SetAdmin(c.Request.Context(), id, *input.IsAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// ListPurchases lists purchases by status and source
// GET /api/v1/admin/purchases
func (h *AdminHandler) ListPurchases(c *gin.Context) {
	filter := entities.PurchaseFilter{
		Status: entities.PurchaseStatus(c.Query("status")),
		Source: entities.PurchaseSource(c.Query("source")),
	}
	if raw := c.Query("userId"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("Invalid userId"))
			return
		}
		filter.UserID = &userID
	}

	p := pagination(c)
	items, total, err := h.accounts.ListPurchases(c.Request.Context(), filter, p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, p)
}

// ListAccounts lists trading accounts by status
// GET /api/v1/admin/accounts
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	filter := entities.AccountFilter{Status: entities.AccountStatus(c.Query("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		response.Error(c, domainerrors.BadRequest("Invalid status"))
		return
	}
	if raw := c.Query("userId"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("Invalid userId"))
			return
		}
		filter.UserID = &userID
	}

	p := pagination(c)
	items, total, err := h.accounts.List(c.Request.Context(), filter, p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, p)
}

// AttachCredentials stores platform credentials and activates the account
// PUT /api/v1/admin/accounts/:id/credentials
func (h *AdminHandler) AttachCredentials(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var creds entities.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		response.BindError(c, err)
		return
	}

	account, err := h.accounts.AttachCredentials(c.Request.Context(), id, creds)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, account)
}

// UpdateAccountStatus changes an account's lifecycle status
// PUT /api/v1/admin/accounts/:id/status
func (h *AdminHandler) UpdateAccountStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var input entities.UpdateAccountStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	account, err := h.accounts.UpdateStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, account)
}

// ListKYC lists submissions by status
// GET /api/v1/admin/kyc
func (h *AdminHandler) ListKYC(c *gin.Context) {
	p := pagination(c)
	items, total, err := h.kyc.List(c.Request.Context(), entities.KYCStatus(c.Query("status")), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, p)
}

// ReviewKYC approves or rejects a user's submission
// PUT /api/v1/admin/kyc/:userId/review
func (h *AdminHandler) ReviewKYC(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}

	var input entities.ReviewKYCInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	sub, err := h.kyc.Review(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, sub)
}

// ListWithdrawals lists payout requests by status
// GET /api/v1/admin/withdrawals
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	p := pagination(c)
	items, total, err := h.withdrawals.List(c.Request.Context(), entities.WithdrawalStatus(c.Query("status")), p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, p)
}

// UpdateWithdrawal reviews a payout request
// PUT /api/v1/admin/withdrawals/:id
func (h *AdminHandler) UpdateWithdrawal(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var input entities.UpdateWithdrawalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	w, err := h.withdrawals.Update(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, w)
}

// ListEmailTemplates lists the templates SendEmail accepts
// GET /api/v1/admin/emails
func (h *AdminHandler) ListEmailTemplates(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"templates": h.notifications.Templates()})
}

// SendEmail renders and sends one template to a recipient
// POST /api/v1/admin/emails/:template
func (h *AdminHandler) SendEmail(c *gin.Context) {
	var input SendEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	kind := strings.TrimSpace(c.Param("template"))
	if input.Data == nil {
		input.Data = map[string]interface{}{}
	}
	if err := h.notifications.Send(c.Request.Context(), kind, input.To, input.Data); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true})
}
