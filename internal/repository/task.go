package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/pkg/supabase"
)

type taskRepository struct {
	client *supabase.Client
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(client *supabase.Client) TaskRepository {
	return &taskRepository{client: client}
}

func (r *taskRepository) GetByUserID(ctx context.Context, userID string) ([]models.Task, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
		"order":   "created_at.asc",
	}

	body, err := r.client.Query(ctx, "tasks", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}

	var tasks []models.Task
	if err := json.Unmarshal(body, &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return tasks, nil
}
