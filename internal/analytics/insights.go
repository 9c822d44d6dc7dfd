package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/JonnyWalker81/stride/backend/internal/models"
)

// DefaultInsightTTL is how long a generated insight stays live
const DefaultInsightTTL = 7 * 24 * time.Hour

// Draft is an insight before it is bound to a user and a point in time
type Draft struct {
	Kind        models.InsightType
	Title       string
	Description string
	Confidence  int
	Priority    models.Priority
	ActionItems []string
	Payload     Payload
}

// ProductivityInsight describes when the user gets things done
func ProductivityInsight(p *ProductivityPattern) Draft {
	description := fmt.Sprintf("You're most active around %s and on %ss (%d events analyzed).",
		p.PeakHourLabel, p.PeakDayLabel, p.EventCount)
	switch p.Trend {
	case TrendIncreasing:
		description += " Your activity has been rising over the last four weeks."
	case TrendDecreasing:
		description += " Your activity has dropped over the last four weeks."
	}

	actions := []string{
		fmt.Sprintf("Schedule your most important work around %s", p.PeakHourLabel),
		fmt.Sprintf("Plan demanding tasks for %ss", p.PeakDayLabel),
	}
	if p.Trend == TrendDecreasing {
		actions = append(actions, "Pick one small task each day to rebuild momentum")
	}

	return Draft{
		Kind:        models.InsightTypeProductivityPattern,
		Title:       "Your Peak Productivity Window",
		Description: description,
		Confidence:  ProductivityConfidence,
		Priority:    PriorityFor(models.InsightTypeProductivityPattern, 0),
		ActionItems: actions,
		Payload:     p,
	}
}

// VelocityInsight describes task throughput against the open backlog
func VelocityInsight(p *VelocityPattern) Draft {
	var description string
	if p.WeeksToClear != nil {
		description = fmt.Sprintf("You're completing %.1f tasks per week. At this pace your %d open tasks will take about %.1f weeks.",
			p.VelocityPerWeek, p.OpenTasks, *p.WeeksToClear)
	} else {
		description = fmt.Sprintf("You haven't completed any tasks in the last 30 days and have %d open tasks.", p.OpenTasks)
	}

	priority := PriorityFor(models.InsightTypeTaskVelocity, p.VelocityPerWeek)
	var actions []string
	switch priority {
	case models.PriorityHigh:
		actions = []string{
			"Break large tasks into smaller steps you can finish in a day",
			"Commit to completing at least one task every weekday",
			"Archive tasks that no longer matter",
		}
	case models.PriorityLow:
		actions = []string{
			"Keep your current pace and protect your focus time",
			"Consider taking on a new stretch goal",
		}
	default:
		actions = []string{
			"Set a weekly task target slightly above your current pace",
			"Review open tasks and prioritize the top three",
		}
	}

	return Draft{
		Kind:        models.InsightTypeTaskVelocity,
		Title:       "Task Completion Velocity",
		Description: description,
		Confidence:  VelocityConfidence,
		Priority:    priority,
		ActionItems: actions,
		Payload:     p,
	}
}

// ConsistencyInsight describes habit completion over the last 30 days
func ConsistencyInsight(p *ConsistencyPattern) Draft {
	description := fmt.Sprintf("Your habits were completed on %.0f%% of logged days over the last 30 days.", p.Overall)
	if len(p.Strong) > 0 {
		description += fmt.Sprintf(" Strongest: %s.", strings.Join(p.Strong, ", "))
	}
	if len(p.Weak) > 0 {
		description += fmt.Sprintf(" Needs attention: %s.", strings.Join(p.Weak, ", "))
	}

	priority := PriorityFor(models.InsightTypeHabitConsistency, p.Overall)
	actions := make([]string, 0, 3)
	for _, name := range p.Weak {
		actions = append(actions, fmt.Sprintf("Attach %s to an existing daily routine", name))
	}
	if priority == models.PriorityHigh {
		actions = append(actions, "Focus on one habit at a time until it sticks")
	}
	actions = append(actions, "Check in every day, even on days you miss")

	return Draft{
		Kind:        models.InsightTypeHabitConsistency,
		Title:       "Habit Consistency",
		Description: description,
		Confidence:  ConsistencyConfidence,
		Priority:    priority,
		ActionItems: actions,
		Payload:     p,
	}
}

// SuccessFactorsInsight merges narrative output into the success factors summary
func SuccessFactorsInsight(p *SuccessFactorsPattern, a Analysis) Draft {
	p.Factors = a.Factors
	p.Risks = a.Risks

	description := fmt.Sprintf("You've completed %d of %d goals (%.0f%%).",
		p.CompletedGoals, p.TotalGoals, p.GoalCompletionRate)
	if len(p.TopCategories) > 0 {
		description += fmt.Sprintf(" You finish %s goals most often.", p.TopCategories[0].Category)
	}
	if len(a.Factors) > 0 {
		description += " " + a.Factors[0]
	}

	actions := a.Recommendations
	if len(actions) == 0 {
		actions = []string{"Repeat the habits and routines behind your completed goals"}
		if p.AverageCompletionDays > 0 {
			actions = append(actions, fmt.Sprintf("Plan new goals around your %.0f-day average completion time", p.AverageCompletionDays))
		}
	}

	return Draft{
		Kind:        models.InsightTypeSuccessFactors,
		Title:       "What Drives Your Success",
		Description: description,
		Confidence:  a.Confidence,
		Priority:    PriorityFor(models.InsightTypeSuccessFactors, 0),
		ActionItems: actions,
		Payload:     p,
	}
}

// PredictionInsight merges narrative output into the completion projection.
// The narrative confidence becomes the likelihood that drives priority.
func PredictionInsight(p *CompletionPrediction, a Analysis) Draft {
	p.Likelihood = a.Confidence
	p.Factors = a.Factors
	p.Risks = a.Risks

	description := fmt.Sprintf("Based on your recent progress, you have a %d%% likelihood of completing your active goals on time.", p.Likelihood)
	if len(a.Risks) > 0 {
		description += " Main risk: " + a.Risks[0]
	}

	priority := PriorityFor(models.InsightTypeCompletionPrediction, float64(p.Likelihood))
	actions := a.Recommendations
	if len(actions) == 0 {
		actions = []string{"Log progress on each active goal at least twice a week"}
		if priority == models.PriorityHigh {
			actions = append(actions, "Revisit target dates for goals that are falling behind")
		}
	}

	return Draft{
		Kind:        models.InsightTypeCompletionPrediction,
		Title:       "Goal Completion Forecast",
		Description: description,
		Confidence:  a.Confidence,
		Priority:    priority,
		ActionItems: actions,
		Payload:     p,
	}
}

// NewInsight binds a draft to a user. The ID is left for the store to assign.
func NewInsight(userID string, d Draft, now time.Time, ttl time.Duration) (models.MlInsight, error) {
	data, err := EncodePayload(d.Payload)
	if err != nil {
		return models.MlInsight{}, err
	}
	if ttl <= 0 {
		ttl = DefaultInsightTTL
	}
	expires := now.Add(ttl)
	actions := d.ActionItems
	if actions == nil {
		actions = []string{}
	}

	return models.MlInsight{
		UserID:      userID,
		InsightType: d.Kind,
		Title:       d.Title,
		Description: d.Description,
		Confidence:  ClampConfidence(d.Confidence),
		Priority:    d.Priority,
		ActionItems: actions,
		Data:        data,
		IsActive:    true,
		CreatedAt:   now,
		ExpiresAt:   &expires,
	}, nil
}

// NewPattern builds the pattern row stored alongside an insight
func NewPattern(userID string, p Payload, confidence int, now time.Time) (models.UserPattern, error) {
	data, err := EncodePayload(p)
	if err != nil {
		return models.UserPattern{}, err
	}
	return models.UserPattern{
		UserID:      userID,
		PatternType: p.Kind(),
		PatternData: data,
		Confidence:  ClampConfidence(confidence),
		LastUpdated: now,
	}, nil
}

// NewPredictionModel builds the goal completion model row from a prediction
func NewPredictionModel(userID string, p *CompletionPrediction, accuracy int, now time.Time) (models.PredictionModel, error) {
	data, err := EncodePayload(p)
	if err != nil {
		return models.PredictionModel{}, err
	}
	model, err := EncodePayload(modelStats{
		GoalCount:          len(p.Goals),
		BaselineLikelihood: p.BaselineLikelihood,
	})
	if err != nil {
		return models.PredictionModel{}, err
	}
	return models.PredictionModel{
		UserID:      userID,
		ModelType:   models.ModelTypeGoalCompletion,
		ModelData:   model,
		Accuracy:    ClampConfidence(accuracy),
		LastTrained: now,
		Predictions: data,
	}, nil
}

// modelStats is the scalar summary stored as ModelData
type modelStats struct {
	GoalCount          int `json:"goal_count"`
	BaselineLikelihood int `json:"baseline_likelihood"`
}

func (modelStats) Kind() models.InsightType { return models.InsightTypeCompletionPrediction }
