package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"propdesk.backend/internal/domain/entities"
	"propdesk.backend/internal/interfaces/http/middleware"
	"propdesk.backend/internal/interfaces/http/response"
	"propdesk.backend/internal/usecases"
)

type orderService interface {
	Quote(ctx context.Context, input *entities.CryptoQuoteInput) (*entities.CryptoQuote, error)
	SubmitCryptoOrder(ctx context.Context, userID *uuid.UUID, input *entities.SubmitCryptoOrderInput) (*entities.OrderResult, error)
	SubmitCheckoutOrder(ctx context.Context, userID *uuid.UUID, input *entities.OrderDraft) (*entities.OrderResult, error)
}

// OrderHandler handles order intake endpoints
type OrderHandler struct {
	orderUsecase orderService
	users        middleware.UserLookup
}

// NewOrderHandler creates a new order handler. users links orders placed by
// signed-in customers to their profile and may be nil.
func NewOrderHandler(orderUsecase *usecases.OrderUsecase, users middleware.UserLookup) *OrderHandler {
	return &OrderHandler{orderUsecase: orderUsecase, users: users}
}

// CreateQuote issues a crypto amount, address and verification phrase
// POST /api/v1/orders/crypto/quote
func (h *OrderHandler) CreateQuote(c *gin.Context) {
	var input entities.CryptoQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	quote, err := h.orderUsecase.Quote(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, quote)
}

// SubmitCryptoOrder confirms a quote with its phrase
// POST /api/v1/orders/crypto
func (h *OrderHandler) SubmitCryptoOrder(c *gin.Context) {
	var input entities.SubmitCryptoOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.orderUsecase.SubmitCryptoOrder(c.Request.Context(), h.callerID(c), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// SubmitCheckoutOrder records a pending card order ahead of the processor checkout
// POST /api/v1/orders/checkout
func (h *OrderHandler) SubmitCheckoutOrder(c *gin.Context) {
	var input entities.OrderDraft
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.orderUsecase.SubmitCheckoutOrder(c.Request.Context(), h.callerID(c), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// callerID is the profile id of a signed-in caller. Anonymous callers and
// callers without a profile place unlinked orders.
func (h *OrderHandler) callerID(c *gin.Context) *uuid.UUID {
	id, ok := middleware.GetIdentity(c)
	if !ok || h.users == nil {
		return nil
	}
	user, err := h.users.GetByEmail(c.Request.Context(), id.Email)
	if err != nil {
		return nil
	}
	return &user.ID
}
