package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/pkg/supabase"
)

// applyAnalysisFunction is the Postgres function that writes an AnalysisBatch in
// one transaction (see supabase/migrations)
const applyAnalysisFunction = "apply_analysis_batch"

type insightRepository struct {
	client *supabase.Client
}

// NewInsightRepository creates a new insight repository
func NewInsightRepository(client *supabase.Client) InsightRepository {
	return &insightRepository{client: client}
}

func (r *insightRepository) GetActiveByUserID(ctx context.Context, userID string) ([]models.MlInsight, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	query := map[string]interface{}{
		"user_id":   fmt.Sprintf("eq.%s", userID),
		"is_active": "eq.true",
		"or":        fmt.Sprintf("(expires_at.is.null,expires_at.gt.%s)", now),
		"select":    "*",
		"order":     "created_at.desc",
	}

	body, err := r.client.Query(ctx, "ml_insights", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get insights: %w", err)
	}

	var insights []models.MlInsight
	if err := json.Unmarshal(body, &insights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return insights, nil
}

func (r *insightRepository) GetPatternsByUserID(ctx context.Context, userID string) ([]models.UserPattern, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"select":  "*",
		"order":   "pattern_type.asc",
	}

	body, err := r.client.Query(ctx, "user_patterns", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get patterns: %w", err)
	}

	var patterns []models.UserPattern
	if err := json.Unmarshal(body, &patterns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return patterns, nil
}

func (r *insightRepository) GetPrediction(ctx context.Context, userID, modelType string) (*models.PredictionModel, error) {
	query := map[string]interface{}{
		"user_id":    fmt.Sprintf("eq.%s", userID),
		"model_type": fmt.Sprintf("eq.%s", modelType),
		"select":     "*",
	}

	body, err := r.client.Query(ctx, "prediction_models", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction model: %w", err)
	}

	var predictions []models.PredictionModel
	if err := json.Unmarshal(body, &predictions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(predictions) == 0 {
		return nil, fmt.Errorf("prediction model %s: %w", modelType, ErrNotFound)
	}

	return &predictions[0], nil
}

func (r *insightRepository) ApplyAnalysis(ctx context.Context, batch *AnalysisBatch) error {
	deactivate := make([]string, 0, len(batch.Deactivate))
	for _, t := range batch.Deactivate {
		deactivate = append(deactivate, string(t))
	}

	// PostgREST requires all objects to have the same keys for bulk insert
	insights := make([]map[string]interface{}, 0, len(batch.Insights))
	for _, insight := range batch.Insights {
		insights = append(insights, map[string]interface{}{
			"insight_type": insight.InsightType,
			"title":        insight.Title,
			"description":  insight.Description,
			"confidence":   insight.Confidence,
			"priority":     insight.Priority,
			"action_items": insight.ActionItems,
			"data":         insight.Data,
			"is_active":    insight.IsActive,
			"created_at":   insight.CreatedAt,
			"expires_at":   insight.ExpiresAt,
		})
	}

	patterns := make([]map[string]interface{}, 0, len(batch.Patterns))
	for _, p := range batch.Patterns {
		patterns = append(patterns, map[string]interface{}{
			"pattern_type": p.PatternType,
			"pattern_data": p.PatternData,
			"confidence":   p.Confidence,
			"last_updated": p.LastUpdated,
		})
	}

	args := map[string]interface{}{
		"p_user_id":    batch.UserID,
		"p_patterns":   patterns,
		"p_prediction": nil,
		"p_deactivate": deactivate,
		"p_insights":   insights,
		"p_event":      nil,
	}
	if batch.Prediction != nil {
		args["p_prediction"] = map[string]interface{}{
			"model_type":   batch.Prediction.ModelType,
			"model_data":   batch.Prediction.ModelData,
			"accuracy":     batch.Prediction.Accuracy,
			"last_trained": batch.Prediction.LastTrained,
			"predictions":  batch.Prediction.Predictions,
		}
	}
	if batch.Event != nil {
		args["p_event"] = eventRow(batch.Event)
	}

	if _, err := r.client.RPC(ctx, applyAnalysisFunction, args); err != nil {
		return fmt.Errorf("failed to apply analysis batch: %w", err)
	}

	return nil
}
