package gormstore

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/JonnyWalker81/stride/backend/internal/models"
)

type goalRow struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	UserID      string `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	Category    string
	Status      string `gorm:"not null;default:active"`
	Progress    int    `gorm:"not null;default:0"`
	TargetDate  *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (goalRow) TableName() string { return "goals" }

func (r goalRow) toModel() models.Goal {
	return models.Goal{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Category:    r.Category,
		Status:      models.GoalStatus(r.Status),
		Progress:    r.Progress,
		TargetDate:  utcPtr(r.TargetDate),
		CompletedAt: utcPtr(r.CompletedAt),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type taskRow struct {
	ID          string  `gorm:"primaryKey;type:varchar(36)"`
	UserID      string  `gorm:"index;not null"`
	GoalID      *string `gorm:"index"`
	Title       string  `gorm:"not null"`
	Status      string  `gorm:"not null;default:todo"`
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (taskRow) TableName() string { return "tasks" }

func (r taskRow) toModel() models.Task {
	return models.Task{
		ID:          r.ID,
		UserID:      r.UserID,
		GoalID:      r.GoalID,
		Title:       r.Title,
		Status:      models.TaskStatus(r.Status),
		CompletedAt: utcPtr(r.CompletedAt),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type habitRow struct {
	ID            string  `gorm:"primaryKey;type:varchar(36)"`
	UserID        string  `gorm:"index;not null"`
	GoalID        *string `gorm:"index"`
	Name          string  `gorm:"not null"`
	Frequency     string  `gorm:"not null;default:daily"`
	Target        int     `gorm:"not null;default:1"`
	CurrentStreak int     `gorm:"not null;default:0"`
	LongestStreak int     `gorm:"not null;default:0"`
	IsActive      bool    `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (habitRow) TableName() string { return "habits" }

func (r habitRow) toModel() models.Habit {
	return models.Habit{
		ID:            r.ID,
		UserID:        r.UserID,
		GoalID:        r.GoalID,
		Name:          r.Name,
		Frequency:     models.HabitFrequency(r.Frequency),
		Target:        r.Target,
		CurrentStreak: r.CurrentStreak,
		LongestStreak: r.LongestStreak,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

type habitEntryRow struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	HabitID   string    `gorm:"index;not null"`
	UserID    string    `gorm:"index;not null"`
	Date      time.Time `gorm:"not null"`
	Completed bool      `gorm:"not null"`
	Value     *float64
	Notes     *string
	CreatedAt time.Time
}

func (habitEntryRow) TableName() string { return "habit_entries" }

func newHabitEntryRow(e *models.HabitEntry) habitEntryRow {
	return habitEntryRow{
		ID:        newID(e.ID),
		HabitID:   e.HabitID,
		UserID:    e.UserID,
		Date:      e.Date.UTC(),
		Completed: e.Completed,
		Value:     e.Value,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt.UTC(),
	}
}

func (r habitEntryRow) toModel() models.HabitEntry {
	return models.HabitEntry{
		ID:        r.ID,
		HabitID:   r.HabitID,
		UserID:    r.UserID,
		Date:      r.Date.UTC(),
		Completed: r.Completed,
		Value:     r.Value,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type progressEntryRow struct {
	ID              string    `gorm:"primaryKey;type:varchar(36)"`
	UserID          string    `gorm:"index;not null"`
	GoalID          string    `gorm:"index;not null"`
	Date            time.Time `gorm:"not null"`
	ProgressPercent int       `gorm:"not null"`
	Mood            *int
	Notes           *string
	HoursWorked     *float64
	TasksCompleted  int `gorm:"not null;default:0"`
	CreatedAt       time.Time
}

func (progressEntryRow) TableName() string { return "progress_entries" }

func newProgressEntryRow(e *models.ProgressEntry) progressEntryRow {
	return progressEntryRow{
		ID:              newID(e.ID),
		UserID:          e.UserID,
		GoalID:          e.GoalID,
		Date:            e.Date.UTC(),
		ProgressPercent: e.ProgressPercent,
		Mood:            e.Mood,
		Notes:           e.Notes,
		HoursWorked:     e.HoursWorked,
		TasksCompleted:  e.TasksCompleted,
		CreatedAt:       e.CreatedAt.UTC(),
	}
}

func (r progressEntryRow) toModel() models.ProgressEntry {
	return models.ProgressEntry{
		ID:              r.ID,
		UserID:          r.UserID,
		GoalID:          r.GoalID,
		Date:            r.Date.UTC(),
		ProgressPercent: r.ProgressPercent,
		Mood:            r.Mood,
		Notes:           r.Notes,
		HoursWorked:     r.HoursWorked,
		TasksCompleted:  r.TasksCompleted,
		CreatedAt:       r.CreatedAt.UTC(),
	}
}

type eventRow struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	UserID     string `gorm:"index:idx_analytics_events_user_ts,priority:1;not null"`
	EventType  string `gorm:"not null"`
	EntityID   *string
	EntityType *string
	Metadata   datatypes.JSONMap
	Timestamp  time.Time `gorm:"index:idx_analytics_events_user_ts,priority:2;not null"`
}

func (eventRow) TableName() string { return "analytics_events" }

func newEventRow(e *models.AnalyticsEvent) eventRow {
	metadata := datatypes.JSONMap{}
	for k, v := range e.Metadata {
		metadata[k] = v
	}
	return eventRow{
		ID:         newID(e.ID),
		UserID:     e.UserID,
		EventType:  e.EventType,
		EntityID:   e.EntityID,
		EntityType: e.EntityType,
		Metadata:   metadata,
		Timestamp:  e.Timestamp.UTC(),
	}
}

func (r eventRow) toModel() models.AnalyticsEvent {
	return models.AnalyticsEvent{
		ID:         r.ID,
		UserID:     r.UserID,
		EventType:  r.EventType,
		EntityID:   r.EntityID,
		EntityType: r.EntityType,
		Metadata:   map[string]interface{}(r.Metadata),
		Timestamp:  r.Timestamp.UTC(),
	}
}

type patternRow struct {
	ID          string         `gorm:"primaryKey;type:varchar(36)"`
	UserID      string         `gorm:"uniqueIndex:idx_user_patterns_user_type,priority:1;not null"`
	PatternType string         `gorm:"uniqueIndex:idx_user_patterns_user_type,priority:2;not null"`
	PatternData datatypes.JSON `gorm:"not null"`
	Confidence  int            `gorm:"not null"`
	LastUpdated time.Time      `gorm:"not null"`
}

func (patternRow) TableName() string { return "user_patterns" }

func newPatternRow(p models.UserPattern) patternRow {
	return patternRow{
		ID:          newID(p.ID),
		UserID:      p.UserID,
		PatternType: string(p.PatternType),
		PatternData: datatypes.JSON(p.PatternData),
		Confidence:  p.Confidence,
		LastUpdated: p.LastUpdated.UTC(),
	}
}

func (r patternRow) toModel() models.UserPattern {
	return models.UserPattern{
		ID:          r.ID,
		UserID:      r.UserID,
		PatternType: models.InsightType(r.PatternType),
		PatternData: json.RawMessage(r.PatternData),
		Confidence:  r.Confidence,
		LastUpdated: r.LastUpdated.UTC(),
	}
}

type insightRow struct {
	ID          string         `gorm:"primaryKey;type:varchar(36)"`
	UserID      string         `gorm:"index:idx_ml_insights_user_active,priority:1;not null"`
	InsightType string         `gorm:"not null"`
	Title       string         `gorm:"not null"`
	Description string         `gorm:"not null"`
	Confidence  int            `gorm:"not null"`
	Priority    string         `gorm:"not null"`
	ActionItems datatypes.JSON `gorm:"not null"`
	Data        datatypes.JSON `gorm:"not null"`
	IsActive    bool           `gorm:"index:idx_ml_insights_user_active,priority:2;not null"`
	CreatedAt   time.Time
	ExpiresAt   *time.Time
}

func (insightRow) TableName() string { return "ml_insights" }

func newInsightRow(i models.MlInsight) (insightRow, error) {
	actions := i.ActionItems
	if actions == nil {
		actions = []string{}
	}
	actionJSON, err := json.Marshal(actions)
	if err != nil {
		return insightRow{}, err
	}
	return insightRow{
		ID:          newID(i.ID),
		UserID:      i.UserID,
		InsightType: string(i.InsightType),
		Title:       i.Title,
		Description: i.Description,
		Confidence:  i.Confidence,
		Priority:    string(i.Priority),
		ActionItems: datatypes.JSON(actionJSON),
		Data:        datatypes.JSON(i.Data),
		IsActive:    i.IsActive,
		CreatedAt:   i.CreatedAt.UTC(),
		ExpiresAt:   utcPtr(i.ExpiresAt),
	}, nil
}

func (r insightRow) toModel() (models.MlInsight, error) {
	var actions []string
	if len(r.ActionItems) > 0 {
		if err := json.Unmarshal(r.ActionItems, &actions); err != nil {
			return models.MlInsight{}, err
		}
	}
	if actions == nil {
		actions = []string{}
	}
	return models.MlInsight{
		ID:          r.ID,
		UserID:      r.UserID,
		InsightType: models.InsightType(r.InsightType),
		Title:       r.Title,
		Description: r.Description,
		Confidence:  r.Confidence,
		Priority:    models.Priority(r.Priority),
		ActionItems: actions,
		Data:        json.RawMessage(r.Data),
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt.UTC(),
		ExpiresAt:   utcPtr(r.ExpiresAt),
	}, nil
}

type predictionRow struct {
	ID          string         `gorm:"primaryKey;type:varchar(36)"`
	UserID      string         `gorm:"uniqueIndex:idx_prediction_models_user_type,priority:1;not null"`
	ModelType   string         `gorm:"uniqueIndex:idx_prediction_models_user_type,priority:2;not null"`
	ModelData   datatypes.JSON `gorm:"not null"`
	Accuracy    int            `gorm:"not null"`
	LastTrained time.Time      `gorm:"not null"`
	Predictions datatypes.JSON `gorm:"not null"`
}

func (predictionRow) TableName() string { return "prediction_models" }

func newPredictionRow(p *models.PredictionModel) predictionRow {
	return predictionRow{
		ID:          newID(p.ID),
		UserID:      p.UserID,
		ModelType:   p.ModelType,
		ModelData:   datatypes.JSON(p.ModelData),
		Accuracy:    p.Accuracy,
		LastTrained: p.LastTrained.UTC(),
		Predictions: datatypes.JSON(p.Predictions),
	}
}

func (r predictionRow) toModel() models.PredictionModel {
	return models.PredictionModel{
		ID:          r.ID,
		UserID:      r.UserID,
		ModelType:   r.ModelType,
		ModelData:   json.RawMessage(r.ModelData),
		Accuracy:    r.Accuracy,
		LastTrained: r.LastTrained.UTC(),
		Predictions: json.RawMessage(r.Predictions),
	}
}

type idempotencyRow struct {
	Key          string         `gorm:"primaryKey"`
	Route        string         `gorm:"primaryKey"`
	UserID       string         `gorm:"primaryKey"`
	ResponseBody datatypes.JSON `gorm:"not null"`
	StatusCode   int            `gorm:"not null"`
	CreatedAt    time.Time
}

func (idempotencyRow) TableName() string { return "idempotency_keys" }

func (r idempotencyRow) toModel() models.IdempotencyKey {
	return models.IdempotencyKey{
		Key:          r.Key,
		Route:        r.Route,
		UserID:       r.UserID,
		ResponseBody: json.RawMessage(r.ResponseBody),
		StatusCode:   r.StatusCode,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// allRows lists every table the store owns, in migration order
func allRows() []interface{} {
	return []interface{}{
		&goalRow{},
		&taskRow{},
		&habitRow{},
		&habitEntryRow{},
		&progressEntryRow{},
		&eventRow{},
		&patternRow{},
		&insightRow{},
		&predictionRow{},
		&idempotencyRow{},
	}
}
