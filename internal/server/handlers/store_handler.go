package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
	"github.com/tomschnierer025/weedtracker/internal/repository/sheets"
	"github.com/tomschnierer025/weedtracker/internal/repository/store"
	"github.com/tomschnierer025/weedtracker/internal/service/tracker"
)

// importBodyLimit guards against pathological import payloads.
const importBodyLimit = 32 << 20

// StoreHandler exposes whole-store export/import, the backup history and the
// spreadsheet export trigger.
type StoreHandler struct {
	svc      *tracker.Service
	exporter sheets.Exporter
	logger   *zap.Logger
}

// NewStoreHandler constructs the HTTP handler adapter. The exporter may be
// nil when sheets export is not configured.
func NewStoreHandler(svc *tracker.Service, exporter sheets.Exporter, logger *zap.Logger) *StoreHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreHandler{svc: svc, exporter: exporter, logger: logger}
}

// Settings returns the operator settings carried in the document.
func (h *StoreHandler) Settings(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Settings())
}

// UpdateSettings replaces the operator settings.
func (h *StoreHandler) UpdateSettings(c *gin.Context) {
	var settings models.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.svc.UpdateSettings(c.Request.Context(), settings); err != nil {
		h.logger.Error("failed saving settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Export streams the whole document as JSON.
func (h *StoreHandler) Export(c *gin.Context) {
	data, err := h.svc.ExportStore()
	if err != nil {
		h.logger.Error("failed exporting store", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export store"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="weedtracker-store.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// Import replaces the whole document with the posted snapshot.
func (h *StoreHandler) Import(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, importBodyLimit))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read payload"})
		return
	}

	if err := h.svc.ImportStore(c.Request.Context(), data); err != nil {
		h.logger.Error("failed importing store", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store snapshot"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Backups lists the snapshot history, most recent first.
func (h *StoreHandler) Backups(c *gin.Context) {
	infos, err := h.svc.ListBackups(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing backups", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list backups"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"backups": infos})
}

// Snapshot pushes the current document onto the backup history.
func (h *StoreHandler) Snapshot(c *gin.Context) {
	info, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("failed taking snapshot", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to take snapshot"})
		return
	}
	c.JSON(http.StatusCreated, info)
}

// Restore replaces the current document with a snapshot from the history.
func (h *StoreHandler) Restore(c *gin.Context) {
	if err := h.svc.RestoreBackup(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, store.ErrUnknownSnapshot) {
			c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
			return
		}
		h.logger.Error("failed restoring snapshot", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to restore snapshot"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportSheets appends the current jobs and batches to the configured
// spreadsheet.
func (h *StoreHandler) ExportSheets(c *gin.Context) {
	if h.exporter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sheets export not configured"})
		return
	}

	ctx := c.Request.Context()
	if err := h.exporter.ExportJobs(ctx, h.svc.ListJobs(queryFromContext(c), true)); err != nil {
		h.logger.Error("failed exporting jobs to sheet", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to export jobs"})
		return
	}
	if err := h.exporter.ExportBatches(ctx, h.svc.ListBatches(queryFromContext(c))); err != nil {
		h.logger.Error("failed exporting batches to sheet", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to export batches"})
		return
	}
	c.Status(http.StatusAccepted)
}
