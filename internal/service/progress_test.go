package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/stride/backend/internal/metrics"
	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/internal/repository"
)

func newTestProgressService(fs *fakeStore) *progressService {
	svc := NewProgressService(fs.Store().Goals, fs.Store().ProgressEntries, NewEventRecorder(fs.Store().Events, metrics.New()), time.UTC).(*progressService)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestRecordProgress_UpdatesGoal(t *testing.T) {
	fs := newFakeStore()
	fs.goals["goal-1"] = &models.Goal{ID: "goal-1", UserID: "user-1", Status: models.GoalStatusActive, Progress: 10}
	svc := newTestProgressService(fs)

	resp, err := svc.RecordProgress(context.Background(), "user-1", "goal-1", &models.CreateProgressEntryRequest{ProgressPercent: 35})
	require.NoError(t, err)

	assert.Equal(t, day(0), resp.Entry.Date)
	assert.Equal(t, 35, resp.Goal.Progress)
	assert.Equal(t, 35, fs.goals["goal-1"].Progress)
	require.Len(t, fs.eventsOfType(models.EventProgressUpdated), 1)
}

func TestRecordProgress_BackfillKeepsNewerProgress(t *testing.T) {
	fs := newFakeStore()
	fs.goals["goal-1"] = &models.Goal{ID: "goal-1", UserID: "user-1", Status: models.GoalStatusActive, Progress: 60}
	fs.progress = append(fs.progress, models.ProgressEntry{
		ID: "p-1", UserID: "user-1", GoalID: "goal-1", Date: day(-1), ProgressPercent: 60, CreatedAt: testNow.Add(-24 * time.Hour),
	})
	svc := newTestProgressService(fs)

	lastWeek := day(-7)
	resp, err := svc.RecordProgress(context.Background(), "user-1", "goal-1", &models.CreateProgressEntryRequest{Date: &lastWeek, ProgressPercent: 20})
	require.NoError(t, err)

	assert.Equal(t, 20, resp.Entry.ProgressPercent)
	assert.Equal(t, 60, resp.Goal.Progress)
	assert.Equal(t, 60, fs.goals["goal-1"].Progress)
}

func TestRecordProgress_Errors(t *testing.T) {
	fs := newFakeStore()
	fs.goals["goal-1"] = &models.Goal{ID: "goal-1", UserID: "user-1", Status: models.GoalStatusActive}
	svc := newTestProgressService(fs)

	_, err := svc.RecordProgress(context.Background(), "user-2", "goal-1", &models.CreateProgressEntryRequest{ProgressPercent: 10})
	assert.True(t, errors.Is(err, repository.ErrNotFound))

	tomorrow := day(1)
	_, err = svc.RecordProgress(context.Background(), "user-1", "goal-1", &models.CreateProgressEntryRequest{Date: &tomorrow, ProgressPercent: 10})
	assert.True(t, errors.Is(err, ErrFutureDate))

	assert.Empty(t, fs.progress)
}
