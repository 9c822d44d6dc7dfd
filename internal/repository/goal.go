package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/pkg/supabase"
)

type goalRepository struct {
	client *supabase.Client
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(client *supabase.Client) GoalRepository {
	return &goalRepository{client: client}
}

func (r *goalRepository) GetByID(ctx context.Context, id string) (*models.Goal, error) {
	query := map[string]interface{}{
		"id":     fmt.Sprintf("eq.%s", id),
		"select": "*",
	}

	body, err := r.client.Query(ctx, "goals", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	var goals []models.Goal
	if err := json.Unmarshal(body, &goals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(goals) == 0 {
		return nil, fmt.Errorf("goal %s: %w", id, ErrNotFound)
	}

	return &goals[0], nil
}

func (r *goalRepository) GetByUserID(ctx context.Context, userID string) ([]models.Goal, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
		"order":   "created_at.asc",
	}

	body, err := r.client.Query(ctx, "goals", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get goals: %w", err)
	}

	var goals []models.Goal
	if err := json.Unmarshal(body, &goals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return goals, nil
}

func (r *goalRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	query := map[string]interface{}{
		"id": fmt.Sprintf("eq.%s", id),
	}
	data := map[string]interface{}{
		"progress":   progress,
		"updated_at": time.Now().UTC(),
	}

	if _, err := r.client.UpdateWhere(ctx, "goals", query, data); err != nil {
		return fmt.Errorf("failed to update goal progress: %w", err)
	}

	return nil
}
