package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"podsync/internal/history"
	"podsync/internal/logger"
	"podsync/internal/models"

	"github.com/gin-gonic/gin"
)

type RunStore interface {
	List(ctx context.Context, page, limit int) ([]models.SyncRun, int64, error)
	Get(ctx context.Context, id string) (*models.SyncRun, error)
}

type RunHandler struct {
	runs   RunStore
	logger *logger.Logger
}

func NewRunHandler(runs RunStore, logger *logger.Logger) *RunHandler {
	return &RunHandler{
		runs:   runs,
		logger: logger,
	}
}

func (h *RunHandler) List(c *gin.Context) {
	// Pagination
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	runs, total, err := h.runs.List(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.Error("Failed to list sync runs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sync runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": runs,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *RunHandler) Get(c *gin.Context) {
	id := c.Param("id")

	run, err := h.runs.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sync run not found"})
			return
		}
		h.logger.Error("Failed to fetch sync run %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sync run"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": run})
}
