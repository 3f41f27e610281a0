package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
	"github.com/tomschnierer025/weedtracker/internal/ledger"
	"github.com/tomschnierer025/weedtracker/internal/service/tracker"
)

// BatchHandler exposes batch creation and the dump log over HTTP.
type BatchHandler struct {
	svc    *tracker.Service
	logger *zap.Logger
}

// NewBatchHandler constructs the HTTP handler adapter.
func NewBatchHandler(svc *tracker.Service, logger *zap.Logger) *BatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchHandler{svc: svc, logger: logger}
}

type createBatchRequest struct {
	TotalMix       float64                `json:"totalMix"`
	ChemicalUsages []models.ChemicalUsage `json:"chemicalUsages"`
}

type dumpRequest struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// Create registers a new pour.
func (h *BatchHandler) Create(c *gin.Context) {
	var req createBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid batch payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	batch, err := h.svc.CreateBatch(c.Request.Context(), req.TotalMix, req.ChemicalUsages)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "totalMix must not be negative"})
			return
		}
		h.logger.Error("failed creating batch", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create batch"})
		return
	}

	c.JSON(http.StatusCreated, batch)
}

// List returns batches passing the filter bar. ?drained=true narrows the
// result to batches with nothing left.
func (h *BatchHandler) List(c *gin.Context) {
	if c.Query("drained") == "true" {
		c.JSON(http.StatusOK, gin.H{"batches": h.svc.DrainedBatches()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"batches": h.svc.ListBatches(queryFromContext(c))})
}

// Get returns one batch by id.
func (h *BatchHandler) Get(c *gin.Context) {
	batch, err := h.svc.GetBatch(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		return
	}
	c.JSON(http.StatusOK, batch)
}

// Dump records a permanent reduction of a batch's remaining volume.
func (h *BatchHandler) Dump(c *gin.Context) {
	var req dumpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid dump payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	event, err := h.svc.RecordDump(c.Request.Context(), c.Param("id"), req.Amount, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must not be negative"})
		case errors.Is(err, ledger.ErrUnknownBatch):
			c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
		default:
			h.logger.Error("failed recording dump", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record dump"})
		}
		return
	}

	c.JSON(http.StatusCreated, event)
}
