package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"propdesk.backend/internal/domain/entities"
	"propdesk.backend/internal/interfaces/http/response"
)

type priceService interface {
	GetPrices(ctx context.Context) entities.PriceQuote
}

// PriceHandler serves the price oracle
type PriceHandler struct {
	oracle priceService
}

// NewPriceHandler creates a new price handler
func NewPriceHandler(oracle priceService) *PriceHandler {
	return &PriceHandler{oracle: oracle}
}

// GetPrices returns USD prices. It never fails; degraded answers are flagged.
// GET /api/v1/prices
func (h *PriceHandler) GetPrices(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=60")
	response.Success(c, http.StatusOK, h.oracle.GetPrices(c.Request.Context()))
}
