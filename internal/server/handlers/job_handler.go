package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/domain/models"
	"github.com/tomschnierer025/weedtracker/internal/service/tracker"
)

// JobHandler exposes the job lifecycle over HTTP.
type JobHandler struct {
	svc    *tracker.Service
	logger *zap.Logger
}

// NewJobHandler constructs the HTTP handler adapter.
func NewJobHandler(svc *tracker.Service, logger *zap.Logger) *JobHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobHandler{svc: svc, logger: logger}
}

// Save upserts a job. ?draft=true saves it as a draft instead of marking it
// incomplete.
func (h *JobHandler) Save(c *gin.Context) {
	var draft models.Job
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.logger.Warn("invalid job payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	asDraft := c.Query("draft") == "true"
	job, dropped, err := h.svc.SaveJob(c.Request.Context(), draft, asDraft)
	if err != nil {
		if errors.Is(err, tracker.ErrInvalidJobType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job type"})
			return
		}
		h.logger.Error("failed saving job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"job": job, "droppedBatchIds": dropped})
}

// List returns jobs passing the filter bar. ?archived=true includes archived
// jobs, which default views exclude.
func (h *JobHandler) List(c *gin.Context) {
	jobs := h.svc.ListJobs(queryFromContext(c), c.Query("archived") == "true")
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

// Get returns one job by id.
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.svc.GetJob(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// Archive marks a job archived.
func (h *JobHandler) Archive(c *gin.Context) {
	if err := h.svc.ArchiveJob(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, tracker.ErrUnknownJob) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("failed archiving job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to archive job"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes a job after releasing its ledger contribution.
func (h *JobHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteJob(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, tracker.ErrUnknownJob) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("failed deleting job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete job"})
		return
	}
	c.Status(http.StatusNoContent)
}
