package service

import (
	"context"
	"fmt"
	"time"

	"github.com/JonnyWalker81/stride/backend/internal/analytics"
	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/internal/repository"
)

type progressService struct {
	goalRepo  repository.GoalRepository
	entryRepo repository.ProgressEntryRepository
	events    EventRecorder
	loc       *time.Location
	now       func() time.Time
}

// NewProgressService creates a new progress service
func NewProgressService(
	goalRepo repository.GoalRepository,
	entryRepo repository.ProgressEntryRepository,
	events EventRecorder,
	loc *time.Location,
) ProgressService {
	if loc == nil {
		loc = time.UTC
	}
	return &progressService{
		goalRepo:  goalRepo,
		entryRepo: entryRepo,
		events:    events,
		loc:       loc,
		now:       time.Now,
	}
}

// RecordProgress stores a progress entry and sets the goal's progress from the
// latest entry by date, then creation time. A backfilled entry for an earlier
// day does not overwrite newer progress.
func (s *progressService) RecordProgress(ctx context.Context, userID, goalID string, req *models.CreateProgressEntryRequest) (*models.ProgressResponse, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, fmt.Errorf("goal %s: %w", goalID, repository.ErrNotFound)
	}

	today := analytics.Today(s.now(), s.loc)
	day := today
	if req.Date != nil {
		day = analytics.EntryDay(*req.Date)
		if day.After(today) {
			return nil, ErrFutureDate
		}
	}

	entry, err := s.entryRepo.Create(ctx, &models.ProgressEntry{
		UserID:          userID,
		GoalID:          goalID,
		Date:            day,
		ProgressPercent: req.ProgressPercent,
		Mood:            req.Mood,
		Notes:           req.Notes,
		HoursWorked:     req.HoursWorked,
		TasksCompleted:  req.TasksCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create progress entry: %w", err)
	}

	entries, err := s.entryRepo.GetByGoalID(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress entries: %w", err)
	}
	if len(entries) == 0 {
		entries = []models.ProgressEntry{*entry}
	}
	analytics.SortProgressEntries(entries)
	latest := entries[len(entries)-1]

	updated := *goal
	if latest.ProgressPercent != goal.Progress {
		if err := s.goalRepo.UpdateProgress(ctx, goalID, latest.ProgressPercent); err != nil {
			return nil, fmt.Errorf("failed to update goal progress: %w", err)
		}
		updated.Progress = latest.ProgressPercent
	}

	entityType := models.EntityTypeGoal
	s.events.Track(ctx, userID, models.EventProgressUpdated, &goalID, &entityType, map[string]interface{}{
		"progress_entry_id": entry.ID,
		"progress_percent":  entry.ProgressPercent,
		"date":              day.Format("2006-01-02"),
	})

	return &models.ProgressResponse{Entry: *entry, Goal: updated}, nil
}
