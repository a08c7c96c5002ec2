package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/interfaces/http/middleware"
	"propdesk.backend/internal/interfaces/http/response"
	"propdesk.backend/internal/usecases"
	"propdesk.backend/pkg/utils"
)

type profileService interface {
	EnsureProfile(ctx context.Context, id usecases.Identity, input *entities.EnsureProfileInput) (*entities.User, error)
}

type dashboardService interface {
	ListMine(ctx context.Context, userID uuid.UUID) ([]*entities.TradingAccount, error)
	ListMyPurchases(ctx context.Context, userID uuid.UUID, p utils.PaginationParams) ([]*entities.Purchase, int64, error)
}

type kycService interface {
	Submit(ctx context.Context, userID uuid.UUID, input *entities.SubmitKYCInput) (*entities.KYCSubmission, error)
	GetMine(ctx context.Context, userID uuid.UUID) (*entities.KYCSubmission, error)
}

type payoutService interface {
	Request(ctx context.Context, userID uuid.UUID, input *entities.CreateWithdrawalInput) (*entities.Withdrawal, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]*entities.Withdrawal, error)
}

// ProfileHandler serves the customer dashboard under /me
type ProfileHandler struct {
	profiles    profileService
	accounts    dashboardService
	kyc         kycService
	withdrawals payoutService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(
	profiles *usecases.UserUsecase,
	accounts *usecases.AccountUsecase,
	kyc *usecases.KYCUsecase,
	withdrawals *usecases.WithdrawalUsecase,
) *ProfileHandler {
	return &ProfileHandler{
		profiles:    profiles,
		accounts:    accounts,
		kyc:         kyc,
		withdrawals: withdrawals,
	}
}

// EnsureProfile creates the caller's record on first sign-in
// POST /api/v1/me
func (h *ProfileHandler) EnsureProfile(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	var input entities.EnsureProfileInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BindError(c, err)
			return
		}
	}

	user, err := h.profiles.EnsureProfile(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// GetMe returns the caller's profile
// GET /api/v1/me
func (h *ProfileHandler) GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}
	response.Success(c, http.StatusOK, user)
}

// ListAccounts lists the caller's trading accounts
// GET /api/v1/me/accounts
func (h *ProfileHandler) ListAccounts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	accounts, err := h.accounts.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": accounts})
}

// ListPurchases lists the caller's purchases
// GET /api/v1/me/purchases
func (h *ProfileHandler) ListPurchases(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	p := pagination(c)
	items, total, err := h.accounts.ListMyPurchases(c.Request.Context(), userID, p)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, p)
}

// GetKYC returns the caller's submission
// GET /api/v1/me/kyc
func (h *ProfileHandler) GetKYC(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	sub, err := h.kyc.GetMine(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, sub)
}

// SubmitKYC creates or replaces the caller's submission
// PUT /api/v1/me/kyc
func (h *ProfileHandler) SubmitKYC(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input entities.SubmitKYCInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	sub, err := h.kyc.Submit(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, sub)
}

// ListWithdrawals lists the caller's payout requests
// GET /api/v1/me/withdrawals
func (h *ProfileHandler) ListWithdrawals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, err := h.withdrawals.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items})
}

// RequestWithdrawal files a payout request
// POST /api/v1/me/withdrawals
func (h *ProfileHandler) RequestWithdrawal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input entities.CreateWithdrawalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	w, err := h.withdrawals.Request(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, w)
}
