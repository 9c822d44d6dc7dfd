package analytics

import "github.com/JonnyWalker81/stride/backend/internal/models"

// Fixed confidences for the statistical analyses
const (
	ProductivityConfidence = 85
	VelocityConfidence     = 80
	ConsistencyConfidence  = 90
)

// Confidences used when narrative output is missing or unusable
const (
	DefaultPredictionConfidence     = 75
	DefaultSuccessFactorsConfidence = 85
)

// DefaultConfidence returns the confidence an insight type falls back to
func DefaultConfidence(kind models.InsightType) int {
	switch kind {
	case models.InsightTypeProductivityPattern:
		return ProductivityConfidence
	case models.InsightTypeTaskVelocity:
		return VelocityConfidence
	case models.InsightTypeHabitConsistency:
		return ConsistencyConfidence
	case models.InsightTypeCompletionPrediction:
		return DefaultPredictionConfidence
	case models.InsightTypeSuccessFactors:
		return DefaultSuccessFactorsConfidence
	}
	return 0
}

// ClampConfidence bounds a confidence to [0, 100]
func ClampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// PriorityFor maps an insight type and its headline metric to a priority.
// The metric is likelihood for completion_prediction, tasks per week for
// task_velocity and overall rate for habit_consistency; other types ignore it.
func PriorityFor(kind models.InsightType, metric float64) models.Priority {
	switch kind {
	case models.InsightTypeCompletionPrediction:
		if metric < 60 {
			return models.PriorityHigh
		}
		if metric < 80 {
			return models.PriorityMedium
		}
		return models.PriorityLow
	case models.InsightTypeTaskVelocity:
		if metric < 2 {
			return models.PriorityHigh
		}
		if metric > 5 {
			return models.PriorityLow
		}
		return models.PriorityMedium
	case models.InsightTypeHabitConsistency:
		if metric < 50 {
			return models.PriorityHigh
		}
		return models.PriorityMedium
	}
	return models.PriorityMedium
}
