package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/pkg/supabase"
)

type progressEntryRepository struct {
	client *supabase.Client
}

// NewProgressEntryRepository creates a new progress entry repository
func NewProgressEntryRepository(client *supabase.Client) ProgressEntryRepository {
	return &progressEntryRepository{client: client}
}

func (r *progressEntryRepository) Create(ctx context.Context, entry *models.ProgressEntry) (*models.ProgressEntry, error) {
	data := map[string]interface{}{
		"user_id":          entry.UserID,
		"goal_id":          entry.GoalID,
		"date":             entry.Date,
		"progress_percent": entry.ProgressPercent,
		"tasks_completed":  entry.TasksCompleted,
	}

	if entry.ID != "" {
		data["id"] = entry.ID
	}
	if entry.Mood != nil {
		data["mood"] = *entry.Mood
	}
	if entry.Notes != nil {
		data["notes"] = *entry.Notes
	}
	if entry.HoursWorked != nil {
		data["hours_worked"] = *entry.HoursWorked
	}

	body, err := r.client.Insert(ctx, "progress_entries", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress entry: %w", err)
	}

	var entries []models.ProgressEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no progress entry returned")
	}

	return &entries[0], nil
}

func (r *progressEntryRepository) GetByGoalID(ctx context.Context, goalID string) ([]models.ProgressEntry, error) {
	return r.list(ctx, map[string]interface{}{
		"goal_id": fmt.Sprintf("eq.%s", goalID),
		"select":  "*",
		"order":   "date.asc,created_at.asc",
	})
}

func (r *progressEntryRepository) GetByUserID(ctx context.Context, userID string) ([]models.ProgressEntry, error) {
	return r.list(ctx, map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
		"order":   "date.asc,created_at.asc",
	})
}

func (r *progressEntryRepository) list(ctx context.Context, query map[string]interface{}) ([]models.ProgressEntry, error) {
	body, err := r.client.Query(ctx, "progress_entries", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress entries: %w", err)
	}

	var entries []models.ProgressEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return entries, nil
}
