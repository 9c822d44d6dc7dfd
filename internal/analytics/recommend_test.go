package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/stride/backend/internal/models"
)

func insight(id string, priority models.Priority, confidence int, created time.Time, actions ...string) models.MlInsight {
	return models.MlInsight{
		ID:          id,
		Priority:    priority,
		Confidence:  confidence,
		ActionItems: actions,
		IsActive:    true,
		CreatedAt:   created,
	}
}

func TestRecommend_FallbackWithoutHighPriority(t *testing.T) {
	expired := testNow.Add(-time.Hour)
	stale := insight("1", models.PriorityHigh, 99, testNow, "should not appear")
	stale.ExpiresAt = &expired
	inactive := insight("2", models.PriorityHigh, 99, testNow, "should not appear")
	inactive.IsActive = false

	for _, insights := range [][]models.MlInsight{
		nil,
		{insight("3", models.PriorityMedium, 90, testNow, "a"), insight("4", models.PriorityLow, 80, testNow, "b")},
		{stale, inactive},
	} {
		got, fallback := Recommend(insights, testNow)
		assert.True(t, fallback)
		assert.Len(t, got, 3)
		assert.Equal(t, FallbackRecommendations(), got)
	}
}

func TestRecommend_OrdersAndTruncates(t *testing.T) {
	older := testNow.Add(-2 * time.Hour)
	newer := testNow.Add(-time.Hour)

	insights := []models.MlInsight{
		insight("a", models.PriorityHigh, 70, newer, "a1", "a2", "a3"),
		insight("b", models.PriorityHigh, 90, older, "b1", "b2"),
		insight("c", models.PriorityMedium, 99, newer, "c1"),
		insight("d", models.PriorityHigh, 70, older, "d1", "d2"),
		insight("e", models.PriorityHigh, 90, newer, "e1"),
	}

	got, fallback := Recommend(insights, testNow)
	require.False(t, fallback)
	assert.Equal(t, []string{"e1", "b1", "b2", "a1", "a2"}, got)
}

func TestRecommend_TiesBrokenByID(t *testing.T) {
	insights := []models.MlInsight{
		insight("z", models.PriorityHigh, 80, testNow, "z1"),
		insight("m", models.PriorityHigh, 80, testNow, "m1"),
	}

	got, _ := Recommend(insights, testNow)
	assert.Equal(t, []string{"m1", "z1"}, got)
}

func TestNewInsight(t *testing.T) {
	p := &VelocityPattern{CompletedTasks: 6, VelocityPerWeek: 1.5, OpenTasks: 3}
	d := VelocityInsight(p)

	got, err := NewInsight("user-1", d, testNow, 0)
	require.NoError(t, err)

	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, models.InsightTypeTaskVelocity, got.InsightType)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	assert.Equal(t, VelocityConfidence, got.Confidence)
	assert.True(t, got.IsActive)
	require.NotNil(t, got.ExpiresAt)
	assert.Equal(t, testNow.Add(DefaultInsightTTL), *got.ExpiresAt)
	assert.JSONEq(t, `{"completed_tasks":6,"completed_last_30_days":0,"velocity_per_week":1.5,"open_tasks":3,"undetermined":false}`, string(got.Data))
}
