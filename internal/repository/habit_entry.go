package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/pkg/supabase"
)

type habitEntryRepository struct {
	client *supabase.Client
}

// NewHabitEntryRepository creates a new habit entry repository
func NewHabitEntryRepository(client *supabase.Client) HabitEntryRepository {
	return &habitEntryRepository{client: client}
}

func (r *habitEntryRepository) Create(ctx context.Context, entry *models.HabitEntry) (*models.HabitEntry, error) {
	data := map[string]interface{}{
		"habit_id":  entry.HabitID,
		"user_id":   entry.UserID,
		"date":      entry.Date,
		"completed": entry.Completed,
	}

	if entry.ID != "" {
		data["id"] = entry.ID
	}
	if entry.Value != nil {
		data["value"] = *entry.Value
	}
	if entry.Notes != nil {
		data["notes"] = *entry.Notes
	}

	body, err := r.client.Insert(ctx, "habit_entries", data)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit entry: %w", err)
	}

	var entries []models.HabitEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no habit entry returned")
	}

	return &entries[0], nil
}

func (r *habitEntryRepository) GetByHabitID(ctx context.Context, habitID string) ([]models.HabitEntry, error) {
	return r.list(ctx, map[string]interface{}{
		"habit_id": fmt.Sprintf("eq.%s", habitID),
		"select":   "*",
		"order":    "date.asc",
	})
}

func (r *habitEntryRepository) GetByUserID(ctx context.Context, userID string) ([]models.HabitEntry, error) {
	return r.list(ctx, map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
		"order":   "date.asc",
	})
}

func (r *habitEntryRepository) list(ctx context.Context, query map[string]interface{}) ([]models.HabitEntry, error) {
	body, err := r.client.Query(ctx, "habit_entries", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get habit entries: %w", err)
	}

	var entries []models.HabitEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return entries, nil
}
