package analytics

import (
	"sort"
	"time"

	"github.com/JonnyWalker81/stride/backend/internal/models"
)

const (
	// MaxRecommendations caps the aggregated recommendation list
	MaxRecommendations = 5

	actionItemsPerInsight = 2
)

// FallbackRecommendations are returned when no high-priority insight is live
func FallbackRecommendations() []string {
	return []string{
		"Set specific daily goals to maintain momentum",
		"Review your progress weekly to stay on track",
		"Break large goals into smaller, manageable tasks",
	}
}

// Recommend aggregates action items from live high-priority insights, highest
// confidence first, then newest, then by ID. fallback reports whether the
// generic list was returned instead.
func Recommend(insights []models.MlInsight, now time.Time) (recommendations []string, fallback bool) {
	high := make([]models.MlInsight, 0, len(insights))
	for _, insight := range insights {
		if insight.Priority == models.PriorityHigh && insight.IsLive(now) {
			high = append(high, insight)
		}
	}
	if len(high) == 0 {
		return FallbackRecommendations(), true
	}

	sort.SliceStable(high, func(i, j int) bool {
		a, b := high[i], high[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	recommendations = make([]string, 0, MaxRecommendations)
	for _, insight := range high {
		items := insight.ActionItems
		if len(items) > actionItemsPerInsight {
			items = items[:actionItemsPerInsight]
		}
		recommendations = append(recommendations, items...)
		if len(recommendations) >= MaxRecommendations {
			break
		}
	}
	if len(recommendations) > MaxRecommendations {
		recommendations = recommendations[:MaxRecommendations]
	}
	return recommendations, false
}
