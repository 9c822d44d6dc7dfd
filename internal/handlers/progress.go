package handlers

import (
	"net/http"

	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ProgressHandler handles goal progress logging
type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

// CreateEntry handles POST /api/v1/goals/:id/progress
func (h *ProgressHandler) CreateEntry(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	goalID, ok := pathID(c, "goal_id")
	if !ok {
		return
	}

	var req models.CreateProgressEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	resp, err := h.progressService.RecordProgress(c.Request.Context(), userID, goalID, &req)
	if err != nil {
		writeServiceError(c, err, "goal", goalID)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
