// Package gormstore implements the repository interfaces on gorm, for
// self-hosted Postgres and for SQLite.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/internal/repository"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the database for driver and dsn
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	return db, nil
}

// Migrate creates or updates every table the store uses
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allRows()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// NewStore wires every repository to db
func NewStore(db *gorm.DB) *repository.Store {
	return &repository.Store{
		Goals:           &goalRepository{db: db},
		Tasks:           &taskRepository{db: db},
		Habits:          &habitRepository{db: db},
		HabitEntries:    &habitEntryRepository{db: db},
		ProgressEntries: &progressEntryRepository{db: db},
		Events:          &eventRepository{db: db},
		Insights:        &insightRepository{db: db},
		Idempotency:     &idempotencyRepository{db: db, now: time.Now},
	}
}

func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, repository.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

type goalRepository struct {
	db *gorm.DB
}

func (r *goalRepository) GetByID(ctx context.Context, id string) (*models.Goal, error) {
	var row goalRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err, "goal", id)
	}
	goal := row.toModel()
	return &goal, nil
}

func (r *goalRepository) GetByUserID(ctx context.Context, userID string) ([]models.Goal, error) {
	var rows []goalRow
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get goals: %w", err)
	}
	goals := make([]models.Goal, 0, len(rows))
	for _, row := range rows {
		goals = append(goals, row.toModel())
	}
	return goals, nil
}

func (r *goalRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	res := r.db.WithContext(ctx).Model(&goalRow{}).Where("id = ?", id).Updates(map[string]interface{}{
		"progress":   progress,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update goal progress: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("goal %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

type taskRepository struct {
	db *gorm.DB
}

func (r *taskRepository) GetByUserID(ctx context.Context, userID string) ([]models.Task, error) {
	var rows []taskRow
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toModel())
	}
	return tasks, nil
}

type habitRepository struct {
	db *gorm.DB
}

func (r *habitRepository) GetByID(ctx context.Context, id string) (*models.Habit, error) {
	var row habitRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err, "habit", id)
	}
	habit := row.toModel()
	return &habit, nil
}

func (r *habitRepository) GetByUserID(ctx context.Context, userID string) ([]models.Habit, error) {
	var rows []habitRow
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get habits: %w", err)
	}
	habits := make([]models.Habit, 0, len(rows))
	for _, row := range rows {
		habits = append(habits, row.toModel())
	}
	return habits, nil
}

func (r *habitRepository) UpdateStreak(ctx context.Context, id string, current, longest int) error {
	res := r.db.WithContext(ctx).Model(&habitRow{}).Where("id = ?", id).Updates(map[string]interface{}{
		"current_streak": current,
		"longest_streak": longest,
		"updated_at":     time.Now().UTC(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update habit streak: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("habit %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

type habitEntryRepository struct {
	db *gorm.DB
}

func (r *habitEntryRepository) Create(ctx context.Context, entry *models.HabitEntry) (*models.HabitEntry, error) {
	row := newHabitEntryRow(entry)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create habit entry: %w", err)
	}
	created := row.toModel()
	return &created, nil
}

func (r *habitEntryRepository) GetByHabitID(ctx context.Context, habitID string) ([]models.HabitEntry, error) {
	return r.list(ctx, "habit_id = ?", habitID)
}

func (r *habitEntryRepository) GetByUserID(ctx context.Context, userID string) ([]models.HabitEntry, error) {
	return r.list(ctx, "user_id = ?", userID)
}

func (r *habitEntryRepository) list(ctx context.Context, where string, arg string) ([]models.HabitEntry, error) {
	var rows []habitEntryRow
	if err := r.db.WithContext(ctx).Where(where, arg).Order("date asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get habit entries: %w", err)
	}
	entries := make([]models.HabitEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toModel())
	}
	return entries, nil
}

type progressEntryRepository struct {
	db *gorm.DB
}

func (r *progressEntryRepository) Create(ctx context.Context, entry *models.ProgressEntry) (*models.ProgressEntry, error) {
	row := newProgressEntryRow(entry)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create progress entry: %w", err)
	}
	created := row.toModel()
	return &created, nil
}

func (r *progressEntryRepository) GetByGoalID(ctx context.Context, goalID string) ([]models.ProgressEntry, error) {
	return r.list(ctx, "goal_id = ?", goalID)
}

func (r *progressEntryRepository) GetByUserID(ctx context.Context, userID string) ([]models.ProgressEntry, error) {
	return r.list(ctx, "user_id = ?", userID)
}

func (r *progressEntryRepository) list(ctx context.Context, where string, arg string) ([]models.ProgressEntry, error) {
	var rows []progressEntryRow
	if err := r.db.WithContext(ctx).Where(where, arg).Order("date asc, created_at asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get progress entries: %w", err)
	}
	entries := make([]models.ProgressEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toModel())
	}
	return entries, nil
}

type eventRepository struct {
	db *gorm.DB
}

func (r *eventRepository) Create(ctx context.Context, event *models.AnalyticsEvent) (*models.AnalyticsEvent, error) {
	row := newEventRow(event)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create analytics event: %w", err)
	}
	created := row.toModel()
	return &created, nil
}

func (r *eventRepository) GetByUserID(ctx context.Context, userID string) ([]models.AnalyticsEvent, error) {
	var rows []eventRow
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get analytics events: %w", err)
	}
	events := make([]models.AnalyticsEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.toModel())
	}
	return events, nil
}

type insightRepository struct {
	db *gorm.DB
}

func (r *insightRepository) GetActiveByUserID(ctx context.Context, userID string) ([]models.MlInsight, error) {
	var rows []insightRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Where("(expires_at IS NULL OR expires_at > ?)", time.Now().UTC()).
		Order("created_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get insights: %w", err)
	}

	insights := make([]models.MlInsight, 0, len(rows))
	for _, row := range rows {
		insight, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("failed to decode insight %s: %w", row.ID, err)
		}
		insights = append(insights, insight)
	}
	return insights, nil
}

func (r *insightRepository) GetPatternsByUserID(ctx context.Context, userID string) ([]models.UserPattern, error) {
	var rows []patternRow
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("pattern_type asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get patterns: %w", err)
	}
	patterns := make([]models.UserPattern, 0, len(rows))
	for _, row := range rows {
		patterns = append(patterns, row.toModel())
	}
	return patterns, nil
}

func (r *insightRepository) GetPrediction(ctx context.Context, userID, modelType string) (*models.PredictionModel, error) {
	var row predictionRow
	err := r.db.WithContext(ctx).Where("user_id = ? AND model_type = ?", userID, modelType).First(&row).Error
	if err != nil {
		return nil, notFound(err, "prediction model", modelType)
	}
	model := row.toModel()
	return &model, nil
}

// ApplyAnalysis writes the batch in one transaction. Pattern and prediction
// upserts only overwrite rows that are not newer than the incoming data.
func (r *insightRepository) ApplyAnalysis(ctx context.Context, batch *repository.AnalysisBatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range batch.Patterns {
			row := newPatternRow(p)
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "pattern_type"}},
				DoUpdates: clause.AssignmentColumns([]string{"pattern_data", "confidence", "last_updated"}),
				Where: clause.Where{Exprs: []clause.Expression{
					clause.Expr{SQL: "excluded.last_updated >= user_patterns.last_updated"},
				}},
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("failed to upsert pattern %s: %w", p.PatternType, err)
			}
		}

		if batch.Prediction != nil {
			row := newPredictionRow(batch.Prediction)
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "model_type"}},
				DoUpdates: clause.AssignmentColumns([]string{"model_data", "accuracy", "last_trained", "predictions"}),
				Where: clause.Where{Exprs: []clause.Expression{
					clause.Expr{SQL: "excluded.last_trained >= prediction_models.last_trained"},
				}},
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("failed to upsert prediction model: %w", err)
			}
		}

		if len(batch.Deactivate) > 0 {
			types := make([]string, 0, len(batch.Deactivate))
			for _, t := range batch.Deactivate {
				types = append(types, string(t))
			}
			err := tx.Model(&insightRow{}).
				Where("user_id = ? AND is_active = ? AND insight_type IN ?", batch.UserID, true, types).
				Update("is_active", false).Error
			if err != nil {
				return fmt.Errorf("failed to deactivate insights: %w", err)
			}
		}

		if len(batch.Insights) > 0 {
			rows := make([]insightRow, 0, len(batch.Insights))
			for _, insight := range batch.Insights {
				row, err := newInsightRow(insight)
				if err != nil {
					return fmt.Errorf("failed to encode insight: %w", err)
				}
				rows = append(rows, row)
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("failed to insert insights: %w", err)
			}
		}

		if batch.Event != nil {
			row := newEventRow(batch.Event)
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to record event: %w", err)
			}
		}

		return nil
	})
}

type idempotencyRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func (r *idempotencyRepository) cutoff() time.Time {
	return r.now().Add(-repository.IdempotencyWindow).UTC()
}

func (r *idempotencyRepository) Get(ctx context.Context, key, route, userID string) (*models.IdempotencyKey, error) {
	var row idempotencyRow
	err := r.db.WithContext(ctx).
		Where("key = ? AND route = ? AND user_id = ? AND created_at >= ?", key, route, userID, r.cutoff()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query idempotency key: %w", err)
	}
	k := row.toModel()
	return &k, nil
}

func (r *idempotencyRepository) Store(ctx context.Context, key, route, userID string, responseBody []byte, statusCode int) error {
	row := idempotencyRow{
		Key:          key,
		Route:        route,
		UserID:       userID,
		ResponseBody: responseBody,
		StatusCode:   statusCode,
		CreatedAt:    r.now().UTC(),
	}

	// Only an expired record is overwritten
	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}, {Name: "route"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"response_body", "status_code", "created_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "idempotency_keys.created_at < ?", Vars: []interface{}{r.cutoff()}},
		}},
	}
	if err := r.db.WithContext(ctx).Clauses(onConflict).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}
	return nil
}
