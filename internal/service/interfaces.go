package service

import (
	"context"

	"github.com/JonnyWalker81/stride/backend/internal/models"
)

// EventRecorder appends rows to the analytics event ledger. Tracking is best
// effort: failures are logged and counted, never returned.
type EventRecorder interface {
	Track(ctx context.Context, userID, eventType string, entityID, entityType *string, metadata map[string]interface{})
}

// HabitService defines the interface for habit check-ins and streaks
type HabitService interface {
	RecordCheckIn(ctx context.Context, userID, habitID string, req *models.CreateHabitEntryRequest) (*models.CheckInResponse, error)
	RecomputeStreak(ctx context.Context, userID, habitID string) (*models.Habit, error)
}

// ProgressService defines the interface for goal progress logging
type ProgressService interface {
	RecordProgress(ctx context.Context, userID, goalID string, req *models.CreateProgressEntryRequest) (*models.ProgressResponse, error)
}

// InsightService defines the interface for the insight engine
type InsightService interface {
	// GetInsights returns the user's live insights without recomputing
	GetInsights(ctx context.Context, userID string) (*models.InsightsResponse, error)
	// GenerateInsights recomputes insights. It never fails; errors surface as a message.
	GenerateInsights(ctx context.Context, userID string) *models.InsightsResponse
	// Recompute recomputes insights and returns the live set or the error that stopped the run
	Recompute(ctx context.Context, userID string) ([]models.MlInsight, error)
	GetRecommendations(ctx context.Context, userID string) (*models.RecommendationsResponse, error)
	GetPatterns(ctx context.Context, userID string) ([]models.UserPattern, error)
}
