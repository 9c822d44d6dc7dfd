package models

import (
	"encoding/json"
	"time"
)

// GoalStatus is the lifecycle state of a goal
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
)

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// HabitFrequency describes how often a habit is expected
type HabitFrequency string

const (
	HabitFrequencyDaily   HabitFrequency = "daily"
	HabitFrequencyWeekly  HabitFrequency = "weekly"
	HabitFrequencyMonthly HabitFrequency = "monthly"
)

// Goal represents a user goal
type Goal struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Status      GoalStatus `json:"status"`
	Progress    int        `json:"progress"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsCompleted reports whether the goal has been completed
func (g Goal) IsCompleted() bool {
	return g.Status == GoalStatusCompleted
}

// Task represents a unit of work, optionally attached to a goal
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	GoalID      *string    `json:"goal_id,omitempty"`
	Title       string     `json:"title"`
	Status      TaskStatus `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsCompleted reports whether the task has been completed
func (t Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// Habit represents a recurring behavior the user checks in against.
// CurrentStreak and LongestStreak are derived and only written by the streak calculator.
type Habit struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	GoalID        *string        `json:"goal_id,omitempty"`
	Name          string         `json:"name"`
	Frequency     HabitFrequency `json:"frequency"`
	Target        int            `json:"target"`
	CurrentStreak int            `json:"current_streak"`
	LongestStreak int            `json:"longest_streak"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// HabitEntry is a single check-in for a habit on a given day.
// Several entries may exist for the same day; the day counts if any is completed.
type HabitEntry struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	UserID    string    `json:"user_id"`
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
	Value     *float64  `json:"value,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProgressEntry records progress against a goal at a point in time
type ProgressEntry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	GoalID          string    `json:"goal_id"`
	Date            time.Time `json:"date"`
	ProgressPercent int       `json:"progress_percent"`
	Mood            *int      `json:"mood,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	HoursWorked     *float64  `json:"hours_worked,omitempty"`
	TasksCompleted  int       `json:"tasks_completed"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateHabitEntryRequest represents the request to check in a habit
type CreateHabitEntryRequest struct {
	Date      *time.Time `json:"date"`
	Completed *bool      `json:"completed"`
	Value     *float64   `json:"value"`
	Notes     *string    `json:"notes"`
}

// CreateProgressEntryRequest represents the request to log goal progress
type CreateProgressEntryRequest struct {
	Date            *time.Time `json:"date"`
	ProgressPercent int        `json:"progress_percent" binding:"min=0,max=100"`
	Mood            *int       `json:"mood" binding:"omitempty,min=1,max=10"`
	Notes           *string    `json:"notes"`
	HoursWorked     *float64   `json:"hours_worked" binding:"omitempty,min=0"`
	TasksCompleted  int        `json:"tasks_completed" binding:"min=0"`
}

// TrackEventRequest represents the request to append an analytics event
type TrackEventRequest struct {
	EventType  string                 `json:"event_type" binding:"required"`
	EntityID   *string                `json:"entity_id"`
	EntityType *string                `json:"entity_type"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// CheckInResponse is returned after a habit check-in
type CheckInResponse struct {
	Entry HabitEntry `json:"entry"`
	Habit Habit      `json:"habit"`
}

// ProgressResponse is returned after logging goal progress
type ProgressResponse struct {
	Entry ProgressEntry `json:"entry"`
	Goal  Goal          `json:"goal"`
}

// IdempotencyKey is a stored response for a replayable mutating request
type IdempotencyKey struct {
	Key          string          `json:"key"`
	Route        string          `json:"route"`
	UserID       string          `json:"user_id"`
	ResponseBody json.RawMessage `json:"response_body"`
	StatusCode   int             `json:"status_code"`
	CreatedAt    time.Time       `json:"created_at"`
}
