package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktrail-backend-go/internal/core"
	"stocktrail-backend-go/internal/models"
)

// StockHandler serves the stock mutation and audit trail endpoints.
type StockHandler struct {
	stock core.StockService
}

// NewStockHandler creates a StockHandler.
func NewStockHandler(stock core.StockService) *StockHandler {
	return &StockHandler{stock: stock}
}

// UpdateStock handles PUT /api/v1/products/:productId/stock. Admin only.
// The counter update and its history entry commit atomically; the response
// carries the appended history entry.
func (h *StockHandler) UpdateStock(c *gin.Context) {
	actor, ok := currentUserOr401(c)
	if !ok {
		return
	}
	var req models.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	entry, err := h.stock.UpdateStock(c.Request.Context(), actor,
		c.Param("productId"), *req.NewStock, *req.NewCartons, req.ChangeReason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// History handles GET /api/v1/products/:productId/history, newest first.
func (h *StockHandler) History(c *gin.Context) {
	entries, err := h.stock.HistoryByProduct(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if entries == nil {
		entries = []*models.StockHistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
