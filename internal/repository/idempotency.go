package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/pkg/supabase"
)

// IdempotencyWindow is how long a stored response is replayed. A key seen again
// after the window is treated as a new request.
const IdempotencyWindow = 24 * time.Hour

// IdempotencyRepository stores responses of check-in and progress requests so
// client retries replay instead of logging the same day twice
type IdempotencyRepository interface {
	// Get returns the record stored for key within IdempotencyWindow, or nil
	Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error)

	// Store saves a response. A live record for the key wins over the new one;
	// an expired record is replaced.
	Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error
}

const idempotencyTable = "idempotency_keys"

type idempotencyRepository struct {
	client *supabase.Client
	now    func() time.Time
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(client *supabase.Client) IdempotencyRepository {
	return &idempotencyRepository{client: client, now: time.Now}
}

func keyFilter(key, route, userID string) map[string]interface{} {
	return map[string]interface{}{
		"key":     "eq." + key,
		"route":   "eq." + route,
		"user_id": "eq." + userID,
	}
}

func (r *idempotencyRepository) cutoff() string {
	return r.now().Add(-IdempotencyWindow).UTC().Format(time.RFC3339Nano)
}

func (r *idempotencyRepository) Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error) {
	query := keyFilter(key, route, userID)
	query["created_at"] = "gte." + r.cutoff()
	query["limit"] = "1"

	body, err := r.client.Query(ctx, idempotencyTable, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query idempotency key: %w", err)
	}

	var keys []models.IdempotencyKey
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, fmt.Errorf("failed to unmarshal idempotency keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	return &keys[0], nil
}

func (r *idempotencyRepository) Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error {
	expired := keyFilter(key, route, userID)
	expired["created_at"] = "lt." + r.cutoff()
	if err := r.client.DeleteWhere(ctx, idempotencyTable, expired); err != nil {
		return fmt.Errorf("failed to clear expired idempotency key: %w", err)
	}

	_, err := r.client.Insert(ctx, idempotencyTable, map[string]interface{}{
		"key":           key,
		"route":         route,
		"user_id":       userID,
		"response_body": json.RawMessage(responseBody),
		"status_code":   statusCode,
		"created_at":    r.now().UTC(),
	})

	// A concurrent retry stored the key first; its response stands
	var apiErr *supabase.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}
