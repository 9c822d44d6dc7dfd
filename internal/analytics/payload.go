// Package analytics holds the pure computations of the insight engine: streaks,
// pattern analysis, priority rules, narrative output validation and
// recommendation ranking. Nothing in this package performs I/O.
package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JonnyWalker81/stride/backend/internal/models"
)

// ErrUnknownPayload is returned when stored data carries a type the engine does not know
var ErrUnknownPayload = errors.New("unknown analytics payload type")

// Payload is the typed body of a UserPattern or MlInsight
type Payload interface {
	Kind() models.InsightType
}

// WeekCount is the number of events in one ISO week
type WeekCount struct {
	Week  string `json:"week"`
	Count int    `json:"count"`
}

// ProductivityPattern summarizes when the user is active
type ProductivityPattern struct {
	EventCount       int         `json:"event_count"`
	HourDistribution []int       `json:"hour_distribution"`
	DayDistribution  []int       `json:"day_distribution"`
	PeakHour         int         `json:"peak_hour"`
	PeakHourLabel    string      `json:"peak_hour_label"`
	PeakDay          int         `json:"peak_day"`
	PeakDayLabel     string      `json:"peak_day_label"`
	WeeklyActivity   []WeekCount `json:"weekly_activity"`
	Trend            string      `json:"trend"`
	AverageMood      *float64    `json:"average_mood,omitempty"`
	TotalHoursWorked float64     `json:"total_hours_worked"`
}

func (ProductivityPattern) Kind() models.InsightType { return models.InsightTypeProductivityPattern }

// VelocityPattern summarizes task throughput
type VelocityPattern struct {
	CompletedTasks      int      `json:"completed_tasks"`
	CompletedLast30Days int      `json:"completed_last_30_days"`
	VelocityPerWeek     float64  `json:"velocity_per_week"`
	OpenTasks           int      `json:"open_tasks"`
	WeeksToClear        *float64 `json:"weeks_to_clear,omitempty"`
	Undetermined        bool     `json:"undetermined"`
}

func (VelocityPattern) Kind() models.InsightType { return models.InsightTypeTaskVelocity }

// HabitConsistency is the 30-day completion rate of one habit
type HabitConsistency struct {
	HabitID       string  `json:"habit_id"`
	Name          string  `json:"name"`
	Rate          float64 `json:"rate"`
	SatisfiedDays int     `json:"satisfied_days"`
	LoggedDays    int     `json:"logged_days"`
	Strength      string  `json:"strength"`
}

// ConsistencyPattern summarizes habit completion across active habits
type ConsistencyPattern struct {
	Overall float64            `json:"overall"`
	Habits  []HabitConsistency `json:"habits"`
	Strong  []string           `json:"strong"`
	Weak    []string           `json:"weak"`
}

func (ConsistencyPattern) Kind() models.InsightType { return models.InsightTypeHabitConsistency }

// CategoryCount is the number of completed goals in a category
type CategoryCount struct {
	Category  string `json:"category"`
	Completed int    `json:"completed"`
}

// SuccessFactorsPattern aggregates what completed goals have in common
type SuccessFactorsPattern struct {
	TotalGoals            int             `json:"total_goals"`
	CompletedGoals        int             `json:"completed_goals"`
	GoalCompletionRate    float64         `json:"goal_completion_rate"`
	TaskCompletionRate    float64         `json:"task_completion_rate"`
	TopCategories         []CategoryCount `json:"top_categories"`
	AverageCompletionDays float64         `json:"average_completion_days"`
	ActiveHabits          int             `json:"active_habits"`
	BestStreak            int             `json:"best_streak"`
	Factors               []string        `json:"factors"`
	Risks                 []string        `json:"risks"`
}

func (SuccessFactorsPattern) Kind() models.InsightType { return models.InsightTypeSuccessFactors }

// GoalProjection is the linear completion projection of one active goal
type GoalProjection struct {
	GoalID              string     `json:"goal_id"`
	Title               string     `json:"title"`
	Progress            int        `json:"progress"`
	DailyRate           float64    `json:"daily_rate"`
	DaysRemaining       *int       `json:"days_remaining,omitempty"`
	ProjectedCompletion *time.Time `json:"projected_completion,omitempty"`
	TargetDate          *time.Time `json:"target_date,omitempty"`
	OnTrack             *bool      `json:"on_track,omitempty"`
}

// CompletionPrediction estimates how likely active goals are to be finished
type CompletionPrediction struct {
	Goals              []GoalProjection `json:"goals"`
	BaselineLikelihood int              `json:"baseline_likelihood"`
	Likelihood         int              `json:"likelihood"`
	Factors            []string         `json:"factors"`
	Risks              []string         `json:"risks"`
}

func (CompletionPrediction) Kind() models.InsightType { return models.InsightTypeCompletionPrediction }

// EncodePayload serializes a payload for storage
func EncodePayload(p Payload) (json.RawMessage, error) {
	if p == nil {
		return nil, fmt.Errorf("nil payload")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", p.Kind(), err)
	}
	return data, nil
}

// DecodePayload parses stored data according to its type
func DecodePayload(kind models.InsightType, data json.RawMessage) (Payload, error) {
	var (
		p   Payload
		err error
	)
	switch kind {
	case models.InsightTypeProductivityPattern:
		var v ProductivityPattern
		err = json.Unmarshal(data, &v)
		p = &v
	case models.InsightTypeTaskVelocity:
		var v VelocityPattern
		err = json.Unmarshal(data, &v)
		p = &v
	case models.InsightTypeHabitConsistency:
		var v ConsistencyPattern
		err = json.Unmarshal(data, &v)
		p = &v
	case models.InsightTypeSuccessFactors:
		var v SuccessFactorsPattern
		err = json.Unmarshal(data, &v)
		p = &v
	case models.InsightTypeCompletionPrediction:
		var v CompletionPrediction
		err = json.Unmarshal(data, &v)
		p = &v
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPayload, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", kind, err)
	}
	return p, nil
}
