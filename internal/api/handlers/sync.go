package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"podsync/internal/logger"

	"github.com/gin-gonic/gin"
)

type SyncRequester interface {
	RequestSync(ctx context.Context, source string, dryRun bool, productIDs []string) (string, error)
}

type SyncHandler struct {
	requester SyncRequester
	logger    *logger.Logger
}

func NewSyncHandler(requester SyncRequester, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{
		requester: requester,
		logger:    logger,
	}
}

type triggerSyncRequest struct {
	DryRun     bool     `json:"dry_run"`
	ProductIDs []string `json:"product_ids" binding:"omitempty,max=500,dive,required"`
}

// Trigger queues a reconciliation pass for the worker.
func (h *SyncHandler) Trigger(c *gin.Context) {
	var req triggerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requestID, err := h.requester.RequestSync(c.Request.Context(), "api", req.DryRun, req.ProductIDs)
	if err != nil {
		h.logger.Error("Failed to queue sync request: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to queue sync request"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"data": gin.H{
			"request_id": requestID,
			"dry_run":    req.DryRun,
		},
	})
}
