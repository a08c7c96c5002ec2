package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/internal/interfaces/http/response"
	"propdesk.backend/internal/usecases"
)

const (
	// SignatureHeader carries the hex HMAC of the raw body.
	SignatureHeader = "whop-signature"
	// SignatureHeaderAlt is the prefixed variant some deliveries use.
	SignatureHeaderAlt = "x-whop-signature"

	maxWebhookBody = 1 << 20
)

type webhookService interface {
	HandleEvent(ctx context.Context, raw []byte, signature string) (*entities.WebhookResult, error)
}

// WebhookHandler receives payment processor deliveries
type WebhookHandler struct {
	webhookUsecase webhookService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookUsecase *usecases.WebhookUsecase) *WebhookHandler {
	return &WebhookHandler{webhookUsecase: webhookUsecase}
}

// HandleWhop reconciles a sale notification
// POST /api/v1/webhooks/whop
func (h *WebhookHandler) HandleWhop(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Failed to read body"))
		return
	}
	if len(raw) > maxWebhookBody {
		response.ErrorWithError(c, http.StatusRequestEntityTooLarge, domainerrors.CodeBadRequest, "Payload too large")
		return
	}

	signature := c.GetHeader(SignatureHeader)
	if signature == "" {
		signature = c.GetHeader(SignatureHeaderAlt)
	}

	result, err := h.webhookUsecase.HandleEvent(c.Request.Context(), raw, signature)
	if err != nil {
		response.Error(c, err)
		return
	}

	body := gin.H{"received": true}
	if result.PurchaseID != nil {
		body["purchaseId"] = result.PurchaseID.String()
	}
	if result.Outcome == entities.WebhookOutcomeDuplicate {
		body["duplicate"] = true
	}
	response.Success(c, http.StatusOK, body)
}
