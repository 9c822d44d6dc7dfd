package repository

import (
	"context"
	"errors"

	"github.com/JonnyWalker81/stride/backend/internal/models"
)

// ErrNotFound is returned when a requested row does not exist or is not owned by the user
var ErrNotFound = errors.New("not found")

// GoalRepository defines the interface for goal data access
type GoalRepository interface {
	GetByID(ctx context.Context, id string) (*models.Goal, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Goal, error)
	UpdateProgress(ctx context.Context, id string, progress int) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	GetByUserID(ctx context.Context, userID string) ([]models.Task, error)
}

// HabitRepository defines the interface for habit data access
type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*models.Habit, error)
	GetByUserID(ctx context.Context, userID string) ([]models.Habit, error)
	// UpdateStreak writes the derived streak fields; nothing else may write them
	UpdateStreak(ctx context.Context, id string, current, longest int) error
}

// HabitEntryRepository defines the interface for habit check-in data access
type HabitEntryRepository interface {
	Create(ctx context.Context, entry *models.HabitEntry) (*models.HabitEntry, error)
	GetByHabitID(ctx context.Context, habitID string) ([]models.HabitEntry, error)
	GetByUserID(ctx context.Context, userID string) ([]models.HabitEntry, error)
}

// ProgressEntryRepository defines the interface for goal progress data access
type ProgressEntryRepository interface {
	Create(ctx context.Context, entry *models.ProgressEntry) (*models.ProgressEntry, error)
	GetByGoalID(ctx context.Context, goalID string) ([]models.ProgressEntry, error)
	GetByUserID(ctx context.Context, userID string) ([]models.ProgressEntry, error)
}

// AnalyticsEventRepository defines the interface for the append-only event ledger
type AnalyticsEventRepository interface {
	Create(ctx context.Context, event *models.AnalyticsEvent) (*models.AnalyticsEvent, error)
	GetByUserID(ctx context.Context, userID string) ([]models.AnalyticsEvent, error)
}

// InsightRepository defines the interface for derived analytics data
type InsightRepository interface {
	GetActiveByUserID(ctx context.Context, userID string) ([]models.MlInsight, error)
	GetPatternsByUserID(ctx context.Context, userID string) ([]models.UserPattern, error)
	GetPrediction(ctx context.Context, userID, modelType string) (*models.PredictionModel, error)
	// ApplyAnalysis writes a whole recompute atomically. Either every part
	// of the batch is stored or none is.
	ApplyAnalysis(ctx context.Context, batch *AnalysisBatch) error
}

// AnalysisBatch is the complete write set of one insight generation run
type AnalysisBatch struct {
	UserID string
	// Patterns replace the stored row for (UserID, PatternType) unless the stored one is newer
	Patterns []models.UserPattern
	// Prediction replaces the stored row for (UserID, ModelType) unless the stored one is newer
	Prediction *models.PredictionModel
	// Deactivate lists insight types whose active insights are retired
	Deactivate []models.InsightType
	Insights   []models.MlInsight
	Event      *models.AnalyticsEvent
}

// Store bundles every repository the analytics backend needs
type Store struct {
	Goals           GoalRepository
	Tasks           TaskRepository
	Habits          HabitRepository
	HabitEntries    HabitEntryRepository
	ProgressEntries ProgressEntryRepository
	Events          AnalyticsEventRepository
	Insights        InsightRepository
	Idempotency     IdempotencyRepository
}
