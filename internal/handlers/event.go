package handlers

import (
	"fmt"
	"net/http"

	"github.com/JonnyWalker81/stride/backend/internal/apierror"
	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	recorder service.EventRecorder
}

// NewEventHandler creates a new event handler
func NewEventHandler(recorder service.EventRecorder) *EventHandler {
	return &EventHandler{
		recorder: recorder,
	}
}

// TrackEvent handles POST /api/v1/events. Recording is best effort, so the
// response is 202 once the request is valid.
func (h *EventHandler) TrackEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	requestID := apierror.GetRequestID(c)
	if !models.IsWellFormedEventType(req.EventType) {
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{{
			Field:   "event_type",
			Message: fmt.Sprintf("must be lowercase letters and underscores, at most %d characters", models.MaxEventTypeLength),
			Code:    "format",
		}}))
		return
	}
	if models.IsReservedEventType(req.EventType) {
		apierror.WriteProblem(c, apierror.NewUnknownEventError(requestID, req.EventType))
		return
	}
	if req.EntityID != nil {
		if err := service.ValidateID(*req.EntityID); err != nil {
			apierror.WriteProblem(c, apierror.NewInvalidUUIDError(requestID, "entity_id", *req.EntityID))
			return
		}
	}

	h.recorder.Track(c.Request.Context(), userID, req.EventType, req.EntityID, req.EntityType, req.Metadata)

	c.JSON(http.StatusAccepted, gin.H{
		"status": "accepted",
	})
}
