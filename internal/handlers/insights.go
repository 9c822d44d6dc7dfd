package handlers

import (
	"net/http"

	"github.com/JonnyWalker81/stride/backend/internal/apierror"
	"github.com/JonnyWalker81/stride/backend/internal/logger"
	"github.com/JonnyWalker81/stride/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// InsightsHandler handles insights-related HTTP requests
type InsightsHandler struct {
	insightService service.InsightService
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(insightService service.InsightService) *InsightsHandler {
	return &InsightsHandler{
		insightService: insightService,
	}
}

// GetInsights returns the live insights for the authenticated user
// GET /api/v1/insights
func (h *InsightsHandler) GetInsights(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	insights, err := h.insightService.GetInsights(c.Request.Context(), userID)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to get insights", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	c.JSON(http.StatusOK, insights)
}

// GenerateInsights recomputes insights. Generation failures are reported in
// the message field and never as an error status.
// POST /api/v1/insights/generate
func (h *InsightsHandler) GenerateInsights(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.insightService.GenerateInsights(c.Request.Context(), userID))
}

// GetRecommendations returns aggregated action items
// GET /api/v1/insights/recommendations
func (h *InsightsHandler) GetRecommendations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	recs, err := h.insightService.GetRecommendations(c.Request.Context(), userID)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to get recommendations", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	c.JSON(http.StatusOK, recs)
}

// GetPatterns returns the latest pattern summaries
// GET /api/v1/patterns
func (h *InsightsHandler) GetPatterns(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	patterns, err := h.insightService.GetPatterns(c.Request.Context(), userID)
	if err != nil {
		logger.Ctx(c.Request.Context()).Error("failed to get patterns", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(apierror.GetRequestID(c)))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"patterns": patterns,
	})
}
