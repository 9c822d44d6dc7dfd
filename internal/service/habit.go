package service

import (
	"context"
	"fmt"
	"time"

	"github.com/JonnyWalker81/stride/backend/internal/analytics"
	"github.com/JonnyWalker81/stride/backend/internal/logger"
	"github.com/JonnyWalker81/stride/backend/internal/metrics"
	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/internal/repository"
)

type habitService struct {
	habitRepo repository.HabitRepository
	entryRepo repository.HabitEntryRepository
	events    EventRecorder
	metrics   *metrics.Metrics
	loc       *time.Location
	now       func() time.Time
}

// NewHabitService creates a new habit service. loc decides which calendar day a
// check-in without an explicit date belongs to.
func NewHabitService(
	habitRepo repository.HabitRepository,
	entryRepo repository.HabitEntryRepository,
	events EventRecorder,
	m *metrics.Metrics,
	loc *time.Location,
) HabitService {
	if loc == nil {
		loc = time.UTC
	}
	return &habitService{
		habitRepo: habitRepo,
		entryRepo: entryRepo,
		events:    events,
		metrics:   m,
		loc:       loc,
		now:       time.Now,
	}
}

func (s *habitService) RecordCheckIn(ctx context.Context, userID, habitID string, req *models.CreateHabitEntryRequest) (*models.CheckInResponse, error) {
	habit, err := s.ownedHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := analytics.Today(now, s.loc)
	day := today
	if req.Date != nil {
		day = analytics.EntryDay(*req.Date)
		if day.After(today) {
			return nil, ErrFutureDate
		}
	}

	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	entry, err := s.entryRepo.Create(ctx, &models.HabitEntry{
		HabitID:   habitID,
		UserID:    userID,
		Date:      day,
		Completed: completed,
		Value:     req.Value,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create habit entry: %w", err)
	}

	updated, err := s.recompute(ctx, habit, now)
	if err != nil {
		return nil, err
	}

	if completed {
		entityType := models.EntityTypeHabit
		s.events.Track(ctx, userID, models.EventHabitCompleted, &habitID, &entityType, map[string]interface{}{
			"date":           day.Format("2006-01-02"),
			"current_streak": updated.CurrentStreak,
		})
	}

	return &models.CheckInResponse{Entry: *entry, Habit: *updated}, nil
}

func (s *habitService) RecomputeStreak(ctx context.Context, userID, habitID string) (*models.Habit, error) {
	habit, err := s.ownedHabit(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}
	return s.recompute(ctx, habit, s.now())
}

// recompute replays every entry of the habit so backfilled and edited days are
// reflected, then persists the derived fields
func (s *habitService) recompute(ctx context.Context, habit *models.Habit, now time.Time) (*models.Habit, error) {
	ctx = logger.WithFields(ctx, logger.String("habit_id", habit.ID))

	entries, err := s.entryRepo.GetByHabitID(ctx, habit.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get habit entries: %w", err)
	}

	if habit.CurrentStreak < 0 || habit.LongestStreak < 0 {
		logger.Ctx(ctx).Warn("habit has negative stored streak, clamping to zero",
			logger.Int("current_streak", habit.CurrentStreak),
			logger.Int("longest_streak", habit.LongestStreak),
		)
	}

	result := analytics.RecomputeStreak(entries, now, habit.LongestStreak, s.loc)
	if err := s.habitRepo.UpdateStreak(ctx, habit.ID, result.Current, result.Longest); err != nil {
		return nil, fmt.Errorf("failed to update habit streak: %w", err)
	}
	s.metrics.StreakRecomputesTotal.Inc()

	updated := *habit
	updated.CurrentStreak = result.Current
	updated.LongestStreak = result.Longest
	return &updated, nil
}

// ownedHabit loads a habit and hides ones that belong to other users
func (s *habitService) ownedHabit(ctx context.Context, userID, habitID string) (*models.Habit, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, fmt.Errorf("habit %s: %w", habitID, repository.ErrNotFound)
	}
	return habit, nil
}
