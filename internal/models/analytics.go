package models

import (
	"encoding/json"
	"time"
)

// Analytics event types
const (
	EventGoalCreated        = "goal_created"
	EventGoalCompleted      = "goal_completed"
	EventTaskCreated        = "task_created"
	EventTaskCompleted      = "task_completed"
	EventHabitCompleted     = "habit_completed"
	EventProgressUpdated    = "progress_updated"
	EventInsightsGenerated  = "insights_generated"
	EntityTypeGoal          = "goal"
	EntityTypeTask          = "task"
	EntityTypeHabit         = "habit"
	EntityTypeProgressEntry = "progress_entry"
)

// MaxEventTypeLength bounds event type names recorded through the public API
const MaxEventTypeLength = 64

// reservedEventTypes are written only by the engine itself
var reservedEventTypes = map[string]bool{
	EventInsightsGenerated: true,
}

// IsReservedEventType reports whether eventType is written only by the engine.
// Event types are otherwise an open set.
func IsReservedEventType(eventType string) bool {
	return reservedEventTypes[eventType]
}

// IsWellFormedEventType reports whether eventType is a non-empty snake_case name
// of at most MaxEventTypeLength bytes
func IsWellFormedEventType(eventType string) bool {
	if eventType == "" || len(eventType) > MaxEventTypeLength {
		return false
	}
	for _, r := range eventType {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}
	return true
}

// InsightType identifies the analysis an insight (or pattern) came from
type InsightType string

const (
	InsightTypeProductivityPattern  InsightType = "productivity_pattern"
	InsightTypeTaskVelocity         InsightType = "task_velocity"
	InsightTypeHabitConsistency     InsightType = "habit_consistency"
	InsightTypeSuccessFactors       InsightType = "success_factors"
	InsightTypeCompletionPrediction InsightType = "completion_prediction"
)

// AllInsightTypes lists every insight type the engine produces, in evaluation order
var AllInsightTypes = []InsightType{
	InsightTypeProductivityPattern,
	InsightTypeTaskVelocity,
	InsightTypeHabitConsistency,
	InsightTypeSuccessFactors,
	InsightTypeCompletionPrediction,
}

// Priority ranks how urgently an insight should be surfaced
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ModelTypeGoalCompletion is the prediction model written by the completion analysis
const ModelTypeGoalCompletion = "goal_completion"

// AnalyticsEvent is an append-only record of a user action
type AnalyticsEvent struct {
	ID         string                 `json:"id"`
	UserID     string                 `json:"user_id"`
	EventType  string                 `json:"event_type"`
	EntityID   *string                `json:"entity_id,omitempty"`
	EntityType *string                `json:"entity_type,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// UserPattern is the latest summary for one (user, pattern type)
type UserPattern struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	PatternType InsightType     `json:"pattern_type"`
	PatternData json.RawMessage `json:"pattern_data"`
	Confidence  int             `json:"confidence"`
	LastUpdated time.Time       `json:"last_updated"`
}

// MlInsight is a point-in-time insight. Rows are never edited apart from deactivation.
type MlInsight struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	InsightType InsightType     `json:"insight_type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Confidence  int             `json:"confidence"`
	Priority    Priority        `json:"priority"`
	ActionItems []string        `json:"action_items"`
	Data        json.RawMessage `json:"data"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
}

// IsLive reports whether the insight is active and not expired at now
func (i MlInsight) IsLive(now time.Time) bool {
	if !i.IsActive {
		return false
	}
	return i.ExpiresAt == nil || i.ExpiresAt.After(now)
}

// PredictionModel is a scalar statistics snapshot for one (user, model type)
type PredictionModel struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	ModelType   string          `json:"model_type"`
	ModelData   json.RawMessage `json:"model_data"`
	Accuracy    int             `json:"accuracy"`
	LastTrained time.Time       `json:"last_trained"`
	Predictions json.RawMessage `json:"predictions"`
}

// InsightsResponse is the API response for insight listing and generation
type InsightsResponse struct {
	Insights    []MlInsight `json:"insights"`
	Message     string      `json:"message,omitempty"`
	GeneratedAt *time.Time  `json:"generated_at,omitempty"`
}

// RecommendationsResponse is the API response for recommendations
type RecommendationsResponse struct {
	Recommendations []string `json:"recommendations"`
	Fallback        bool     `json:"fallback"`
}
