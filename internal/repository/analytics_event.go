package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/pkg/supabase"
)

type analyticsEventRepository struct {
	client *supabase.Client
}

// NewAnalyticsEventRepository creates a new analytics event repository
func NewAnalyticsEventRepository(client *supabase.Client) AnalyticsEventRepository {
	return &analyticsEventRepository{client: client}
}

func (r *analyticsEventRepository) Create(ctx context.Context, event *models.AnalyticsEvent) (*models.AnalyticsEvent, error) {
	body, err := r.client.Insert(ctx, "analytics_events", eventRow(event))
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics event: %w", err)
	}

	var events []models.AnalyticsEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("no analytics event returned")
	}

	return &events[0], nil
}

func (r *analyticsEventRepository) GetByUserID(ctx context.Context, userID string) ([]models.AnalyticsEvent, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
		"order":   "timestamp.asc",
	}

	body, err := r.client.Query(ctx, "analytics_events", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get analytics events: %w", err)
	}

	var events []models.AnalyticsEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return events, nil
}

// eventRow builds the insert payload. Metadata has a NOT NULL constraint, so an
// empty object is sent when there is none.
func eventRow(event *models.AnalyticsEvent) map[string]interface{} {
	data := map[string]interface{}{
		"user_id":     event.UserID,
		"event_type":  event.EventType,
		"entity_id":   event.EntityID,
		"entity_type": event.EntityType,
		"timestamp":   event.Timestamp,
	}

	if event.ID != "" {
		data["id"] = event.ID
	}
	if len(event.Metadata) > 0 {
		data["metadata"] = event.Metadata
	} else {
		data["metadata"] = map[string]interface{}{}
	}

	return data
}
