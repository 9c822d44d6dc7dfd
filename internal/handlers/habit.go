package handlers

import (
	"net/http"

	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// HabitHandler handles habit check-ins and streak maintenance
type HabitHandler struct {
	habitService service.HabitService
}

// NewHabitHandler creates a new habit handler
func NewHabitHandler(habitService service.HabitService) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
	}
}

// CreateEntry handles POST /api/v1/habits/:id/entries
func (h *HabitHandler) CreateEntry(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	habitID, ok := pathID(c, "habit_id")
	if !ok {
		return
	}

	var req models.CreateHabitEntryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
	}

	resp, err := h.habitService.RecordCheckIn(c.Request.Context(), userID, habitID, &req)
	if err != nil {
		writeServiceError(c, err, "habit", habitID)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// RecomputeStreak handles POST /api/v1/habits/:id/streak/recompute
func (h *HabitHandler) RecomputeStreak(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	habitID, ok := pathID(c, "habit_id")
	if !ok {
		return
	}

	habit, err := h.habitService.RecomputeStreak(c.Request.Context(), userID, habitID)
	if err != nil {
		writeServiceError(c, err, "habit", habitID)
		return
	}

	c.JSON(http.StatusOK, habit)
}
