package service

import (
	"context"
	"time"

	"github.com/JonnyWalker81/stride/backend/internal/logger"
	"github.com/JonnyWalker81/stride/backend/internal/metrics"
	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/internal/repository"
)

type eventRecorder struct {
	eventRepo repository.AnalyticsEventRepository
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewEventRecorder creates a new event recorder
func NewEventRecorder(eventRepo repository.AnalyticsEventRepository, m *metrics.Metrics) EventRecorder {
	return &eventRecorder{
		eventRepo: eventRepo,
		metrics:   m,
		now:       time.Now,
	}
}

func (r *eventRecorder) Track(ctx context.Context, userID, eventType string, entityID, entityType *string, metadata map[string]interface{}) {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	event := &models.AnalyticsEvent{
		UserID:     userID,
		EventType:  eventType,
		EntityID:   entityID,
		EntityType: entityType,
		Metadata:   metadata,
		Timestamp:  r.now().UTC(),
	}

	if _, err := r.eventRepo.Create(ctx, event); err != nil {
		r.metrics.EventTrackFailures.Inc()
		logger.Ctx(ctx).Warn("failed to track analytics event",
			logger.String("event_type", eventType),
			logger.Err(err),
		)
		return
	}

	r.metrics.EventsTrackedTotal.WithLabelValues(eventType).Inc()
}
