package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
	"github.com/tomschnierer025/weedtracker/internal/registry"
	"github.com/tomschnierer025/weedtracker/internal/service/tracker"
)

// ChemicalHandler exposes the stock registry over HTTP.
type ChemicalHandler struct {
	svc    *tracker.Service
	logger *zap.Logger
}

// NewChemicalHandler constructs the HTTP handler adapter.
func NewChemicalHandler(svc *tracker.Service, logger *zap.Logger) *ChemicalHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChemicalHandler{svc: svc, logger: logger}
}

// Upsert creates or replaces a stock record keyed by name.
func (h *ChemicalHandler) Upsert(c *gin.Context) {
	var chemical models.Chemical
	if err := c.ShouldBindJSON(&chemical); err != nil {
		h.logger.Warn("invalid chemical payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if chemical.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if err := h.svc.UpsertChemical(c.Request.Context(), chemical); err != nil {
		h.logger.Error("failed saving chemical", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save chemical"})
		return
	}
	c.JSON(http.StatusOK, chemical)
}

// Delete removes a stock record.
func (h *ChemicalHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteChemical(c.Request.Context(), c.Param("name")); err != nil {
		if errors.Is(err, registry.ErrUnknownChemical) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chemical not found"})
			return
		}
		h.logger.Error("failed deleting chemical", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete chemical"})
		return
	}
	c.Status(http.StatusNoContent)
}

// List returns stock records passing the filter bar.
func (h *ChemicalHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chemicals": h.svc.ListChemicals(queryFromContext(c))})
}

// LowStock returns the procurement advisory view.
func (h *ChemicalHandler) LowStock(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chemicals": h.svc.LowStockChemicals()})
}
