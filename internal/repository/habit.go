package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/pkg/supabase"
)

type habitRepository struct {
	client *supabase.Client
}

// NewHabitRepository creates a new habit repository
func NewHabitRepository(client *supabase.Client) HabitRepository {
	return &habitRepository{client: client}
}

func (r *habitRepository) GetByID(ctx context.Context, id string) (*models.Habit, error) {
	query := map[string]interface{}{
		"id":     fmt.Sprintf("eq.%s", id),
		"select": "*",
	}

	body, err := r.client.Query(ctx, "habits", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	var habits []models.Habit
	if err := json.Unmarshal(body, &habits); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(habits) == 0 {
		return nil, fmt.Errorf("habit %s: %w", id, ErrNotFound)
	}

	return &habits[0], nil
}

func (r *habitRepository) GetByUserID(ctx context.Context, userID string) ([]models.Habit, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
		"order":   "name.asc",
	}

	body, err := r.client.Query(ctx, "habits", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get habits: %w", err)
	}

	var habits []models.Habit
	if err := json.Unmarshal(body, &habits); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return habits, nil
}

func (r *habitRepository) UpdateStreak(ctx context.Context, id string, current, longest int) error {
	query := map[string]interface{}{
		"id": fmt.Sprintf("eq.%s", id),
	}
	data := map[string]interface{}{
		"current_streak": current,
		"longest_streak": longest,
		"updated_at":     time.Now().UTC(),
	}

	if _, err := r.client.UpdateWhere(ctx, "habits", query, data); err != nil {
		return fmt.Errorf("failed to update habit streak: %w", err)
	}

	return nil
}
