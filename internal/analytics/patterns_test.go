package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonnyWalker81/stride/backend/internal/models"
)

// Thursday
var testNow = time.Date(2026, time.March, 19, 12, 0, 0, 0, time.UTC)

func event(eventType string, ts time.Time) models.AnalyticsEvent {
	return models.AnalyticsEvent{UserID: "user-1", EventType: eventType, Timestamp: ts}
}

func repeatEvents(n int, eventType string, ts time.Time) []models.AnalyticsEvent {
	events := make([]models.AnalyticsEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, event(eventType, ts))
	}
	return events
}

func tasks(completed, open int) []models.Task {
	out := make([]models.Task, 0, completed+open)
	for i := 0; i < completed; i++ {
		out = append(out, models.Task{ID: "done", Status: models.TaskStatusCompleted})
	}
	for i := 0; i < open; i++ {
		out = append(out, models.Task{ID: "open", Status: models.TaskStatusTodo})
	}
	return out
}

func TestProductivity_InsufficientEvents(t *testing.T) {
	events := repeatEvents(MinEventsForProductivity-1, models.EventTaskCompleted, testNow)
	assert.Nil(t, Productivity(events, nil, testNow, time.UTC))
}

func TestProductivity_IgnoresEngineEvents(t *testing.T) {
	events := append(repeatEvents(9, models.EventTaskCompleted, testNow),
		repeatEvents(3, models.EventInsightsGenerated, testNow)...)
	assert.Nil(t, Productivity(events, nil, testNow, time.UTC))
}

func TestProductivity(t *testing.T) {
	monday := time.Date(2026, time.March, 16, 9, 30, 0, 0, time.UTC)
	tuesday := time.Date(2026, time.February, 24, 14, 0, 0, 0, time.UTC)

	events := append(repeatEvents(6, models.EventTaskCompleted, monday), repeatEvents(4, models.EventGoalCreated, tuesday)...)
	mood := 7
	hours := 1.5
	progress := []models.ProgressEntry{
		{Mood: &mood, HoursWorked: &hours},
		{HoursWorked: &hours},
	}

	p := Productivity(events, progress, testNow, time.UTC)
	require.NotNil(t, p)

	assert.Equal(t, 10, p.EventCount)
	assert.Equal(t, 9, p.PeakHour)
	assert.Equal(t, "9 AM", p.PeakHourLabel)
	assert.Equal(t, 1, p.PeakDay)
	assert.Equal(t, "Monday", p.PeakDayLabel)
	assert.Equal(t, []WeekCount{
		{Week: "2026-W09", Count: 4},
		{Week: "2026-W10", Count: 0},
		{Week: "2026-W11", Count: 0},
		{Week: "2026-W12", Count: 6},
	}, p.WeeklyActivity)
	assert.Equal(t, TrendIncreasing, p.Trend)
	require.NotNil(t, p.AverageMood)
	assert.Equal(t, 7.0, *p.AverageMood)
	assert.Equal(t, 3.0, p.TotalHoursWorked)
}

func TestProductivity_TiesGoToLowestIndex(t *testing.T) {
	early := time.Date(2026, time.March, 17, 3, 0, 0, 0, time.UTC)
	late := time.Date(2026, time.March, 18, 5, 0, 0, 0, time.UTC)
	events := append(repeatEvents(5, models.EventTaskCompleted, late), repeatEvents(5, models.EventTaskCompleted, early)...)

	p := Productivity(events, nil, testNow, time.UTC)
	require.NotNil(t, p)

	assert.Equal(t, 3, p.PeakHour)
	assert.Equal(t, 2, p.PeakDay, "Tuesday and Wednesday tie, Tuesday wins")
	assert.Equal(t, TrendIncreasing, p.Trend)
	assert.Nil(t, p.AverageMood)
}

func TestProductivity_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2026, time.March, 16, 23, 0, 0, 0, time.UTC)

	p := Productivity(repeatEvents(10, models.EventTaskCompleted, ts), nil, testNow, loc)
	require.NotNil(t, p)

	assert.Equal(t, 1, p.PeakHour)
	assert.Equal(t, "Tuesday", p.PeakDayLabel)
}

func TestVelocity(t *testing.T) {
	recent := testNow.AddDate(0, 0, -3)
	old := testNow.AddDate(0, 0, -45)

	tests := []struct {
		name         string
		tasks        []models.Task
		events       []models.AnalyticsEvent
		wantNil      bool
		wantVelocity float64
		wantWeeks    *float64
		wantPriority models.Priority
	}{
		{
			name:    "too few completed tasks",
			tasks:   tasks(MinCompletedTasksForVelocity-1, 10),
			events:  repeatEvents(12, models.EventTaskCompleted, recent),
			wantNil: true,
		},
		{
			name:         "twelve completions and twenty open tasks",
			tasks:        tasks(12, 20),
			events:       repeatEvents(12, models.EventTaskCompleted, recent),
			wantVelocity: 3,
			wantWeeks:    floatPtr(6.67),
			wantPriority: models.PriorityMedium,
		},
		{
			name:         "slow pace",
			tasks:        tasks(6, 3),
			events:       append(repeatEvents(6, models.EventTaskCompleted, recent), repeatEvents(20, models.EventTaskCompleted, old)...),
			wantVelocity: 1.5,
			wantWeeks:    floatPtr(2),
			wantPriority: models.PriorityHigh,
		},
		{
			name:         "fast pace",
			tasks:        tasks(30, 0),
			events:       repeatEvents(24, models.EventTaskCompleted, recent),
			wantVelocity: 6,
			wantWeeks:    floatPtr(0),
			wantPriority: models.PriorityLow,
		},
		{
			name:         "no recent completions is undetermined",
			tasks:        tasks(5, 4),
			events:       append(repeatEvents(5, models.EventTaskCompleted, old), repeatEvents(3, models.EventTaskCreated, recent)...),
			wantVelocity: 0,
			wantPriority: models.PriorityHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Velocity(tt.tasks, tt.events, testNow)
			if tt.wantNil {
				assert.Nil(t, p)
				return
			}
			require.NotNil(t, p)

			assert.Equal(t, tt.wantVelocity, p.VelocityPerWeek)
			if tt.wantWeeks == nil {
				assert.Nil(t, p.WeeksToClear)
				assert.True(t, p.Undetermined)
			} else {
				require.NotNil(t, p.WeeksToClear)
				assert.Equal(t, *tt.wantWeeks, *p.WeeksToClear)
				assert.False(t, p.Undetermined)
			}
			assert.Equal(t, tt.wantPriority, VelocityInsight(p).Priority)
		})
	}
}

func TestConsistency(t *testing.T) {
	today := civilDay(testNow)
	var entries []models.HabitEntry
	for i := 0; i < 10; i++ {
		entries = append(entries, models.HabitEntry{HabitID: "read", Date: today.AddDate(0, 0, -i), Completed: i != 4})
	}
	for i := 0; i < 4; i++ {
		entries = append(entries, models.HabitEntry{HabitID: "run", Date: today.AddDate(0, 0, -i), Completed: i == 0})
	}
	// outside the window
	entries = append(entries, models.HabitEntry{HabitID: "run", Date: today.AddDate(0, 0, -ConsistencyWindowDays), Completed: true})

	habits := []models.Habit{
		{ID: "run", Name: "Run", IsActive: true},
		{ID: "read", Name: "Read", IsActive: true},
		{ID: "meditate", Name: "Meditate", IsActive: false},
	}

	p := Consistency(habits, entries, testNow, time.UTC)
	require.NotNil(t, p)

	require.Len(t, p.Habits, 2)
	assert.Equal(t, "Read", p.Habits[0].Name)
	assert.Equal(t, 90.0, p.Habits[0].Rate)
	assert.Equal(t, StrengthStrong, p.Habits[0].Strength)
	assert.Equal(t, "Run", p.Habits[1].Name)
	assert.Equal(t, 25.0, p.Habits[1].Rate)
	assert.Equal(t, 4, p.Habits[1].LoggedDays)
	assert.Equal(t, StrengthWeak, p.Habits[1].Strength)

	assert.Equal(t, 57.5, p.Overall)
	assert.Equal(t, []string{"Read"}, p.Strong)
	assert.Equal(t, []string{"Run"}, p.Weak)
	assert.Equal(t, models.PriorityMedium, ConsistencyInsight(p).Priority)
}

func TestConsistency_NoActiveHabits(t *testing.T) {
	habits := []models.Habit{{ID: "h", Name: "Old", IsActive: false}}
	assert.Nil(t, Consistency(habits, nil, testNow, time.UTC))
}

func TestConsistency_HabitWithoutEntriesScoresZero(t *testing.T) {
	p := Consistency([]models.Habit{{ID: "h", Name: "New", IsActive: true}}, nil, testNow, time.UTC)
	require.NotNil(t, p)

	assert.Equal(t, 0.0, p.Overall)
	assert.Equal(t, models.PriorityHigh, ConsistencyInsight(p).Priority)
}

func TestSuccessFactors(t *testing.T) {
	created := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	at := func(days int) *time.Time {
		ts := created.AddDate(0, 0, days)
		return &ts
	}

	goals := []models.Goal{
		{ID: "g1", Category: "fitness", Status: models.GoalStatusCompleted, CreatedAt: created, CompletedAt: at(10)},
		{ID: "g2", Category: "career", Status: models.GoalStatusCompleted, CreatedAt: created, CompletedAt: at(20)},
		{ID: "g3", Category: "fitness", Status: models.GoalStatusCompleted, CreatedAt: created, CompletedAt: at(30)},
		{ID: "g4", Category: "", Status: models.GoalStatusCompleted, CreatedAt: created},
		{ID: "g5", Category: "learning", Status: models.GoalStatusCompleted, CreatedAt: created, CompletedAt: at(20)},
		{ID: "g6", Category: "career", Status: models.GoalStatusActive, CreatedAt: created},
	}
	habits := []models.Habit{
		{ID: "h1", IsActive: true, LongestStreak: 12},
		{ID: "h2", IsActive: false, LongestStreak: 30},
	}

	p := SuccessFactors(goals, tasks(3, 1), habits)
	require.NotNil(t, p)

	assert.Equal(t, 6, p.TotalGoals)
	assert.Equal(t, 5, p.CompletedGoals)
	assert.Equal(t, 83.33, p.GoalCompletionRate)
	assert.Equal(t, 75.0, p.TaskCompletionRate)
	assert.Equal(t, []CategoryCount{
		{Category: "fitness", Completed: 2},
		{Category: "career", Completed: 1},
		{Category: "learning", Completed: 1},
	}, p.TopCategories)
	assert.Equal(t, 20.0, p.AverageCompletionDays)
	assert.Equal(t, 1, p.ActiveHabits)
	assert.Equal(t, 30, p.BestStreak)
}

func TestSuccessFactors_InsufficientGoals(t *testing.T) {
	goals := []models.Goal{
		{ID: "g1", Status: models.GoalStatusCompleted},
		{ID: "g2", Status: models.GoalStatusActive},
	}
	assert.Nil(t, SuccessFactors(goals, nil, nil))
}

func TestCompletionBaseline(t *testing.T) {
	onTime := time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC)
	tooSoon := time.Date(2026, time.March, 25, 0, 0, 0, 0, time.UTC)

	goals := []models.Goal{
		{ID: "g2", Title: "Ship", Status: models.GoalStatusActive, TargetDate: &tooSoon},
		{ID: "g1", Title: "Marathon", Status: models.GoalStatusActive, TargetDate: &onTime},
		{ID: "g3", Title: "Done", Status: models.GoalStatusCompleted},
		{ID: "g4", Title: "Fresh", Status: models.GoalStatusActive},
	}
	progress := []models.ProgressEntry{
		{GoalID: "g1", Date: day(11), ProgressPercent: 40},
		{GoalID: "g1", Date: day(1), ProgressPercent: 20},
		{GoalID: "g2", Date: day(1), ProgressPercent: 10},
		{GoalID: "g2", Date: day(11), ProgressPercent: 20},
		{GoalID: "g3", Date: day(1), ProgressPercent: 10},
		{GoalID: "g3", Date: day(2), ProgressPercent: 100},
		{GoalID: "g4", Date: day(2), ProgressPercent: 5},
	}

	p := CompletionBaseline(goals, progress, testNow, time.UTC)
	require.NotNil(t, p)
	require.Len(t, p.Goals, 2)

	marathon := p.Goals[0]
	assert.Equal(t, "g1", marathon.GoalID)
	assert.Equal(t, 40, marathon.Progress)
	assert.Equal(t, 2.0, marathon.DailyRate)
	require.NotNil(t, marathon.DaysRemaining)
	assert.Equal(t, 30, *marathon.DaysRemaining)
	assert.Equal(t, time.Date(2026, time.April, 18, 0, 0, 0, 0, time.UTC), *marathon.ProjectedCompletion)
	require.NotNil(t, marathon.OnTrack)
	assert.True(t, *marathon.OnTrack)

	ship := p.Goals[1]
	assert.Equal(t, 1.0, ship.DailyRate)
	assert.Equal(t, 80, *ship.DaysRemaining)
	assert.False(t, *ship.OnTrack)

	assert.Equal(t, 50, p.BaselineLikelihood)
	assert.Equal(t, p.BaselineLikelihood, p.Likelihood)
}

func TestCompletionBaseline_CountsFromLocalToday(t *testing.T) {
	target := time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC)
	goals := []models.Goal{{ID: "g1", Status: models.GoalStatusActive, TargetDate: &target}}
	progress := []models.ProgressEntry{
		{GoalID: "g1", Date: day(1), ProgressPercent: 20},
		{GoalID: "g1", Date: day(11), ProgressPercent: 40},
	}

	// 20:00 UTC on March 19 is already March 20 ten hours east
	lateEvening := time.Date(2026, time.March, 19, 20, 0, 0, 0, time.UTC)
	east := time.FixedZone("UTC+10", 10*60*60)

	utc := CompletionBaseline(goals, progress, lateEvening, time.UTC)
	require.NotNil(t, utc)
	assert.Equal(t, time.Date(2026, time.April, 18, 0, 0, 0, 0, time.UTC), *utc.Goals[0].ProjectedCompletion)

	local := CompletionBaseline(goals, progress, lateEvening, east)
	require.NotNil(t, local)
	assert.Equal(t, time.Date(2026, time.April, 19, 0, 0, 0, 0, time.UTC), *local.Goals[0].ProjectedCompletion)
}

func TestCompletionBaseline_NoTargets(t *testing.T) {
	goals := []models.Goal{
		{ID: "g1", Status: models.GoalStatusActive},
		{ID: "g2", Status: models.GoalStatusActive},
	}
	moving := []models.ProgressEntry{
		{GoalID: "g1", Date: day(1), ProgressPercent: 10},
		{GoalID: "g1", Date: day(5), ProgressPercent: 30},
	}
	stalled := []models.ProgressEntry{
		{GoalID: "g2", Date: day(1), ProgressPercent: 50},
		{GoalID: "g2", Date: day(5), ProgressPercent: 50},
	}

	p := CompletionBaseline(goals, moving, testNow, time.UTC)
	require.NotNil(t, p)
	assert.Equal(t, 70, p.BaselineLikelihood)

	p = CompletionBaseline(goals, append(moving, stalled...), testNow, time.UTC)
	require.NotNil(t, p)
	assert.Equal(t, 40, p.BaselineLikelihood)
	assert.Nil(t, p.Goals[1].ProjectedCompletion)
}

func TestCompletionBaseline_NothingQualifies(t *testing.T) {
	goals := []models.Goal{{ID: "g1", Status: models.GoalStatusActive}}
	progress := []models.ProgressEntry{{GoalID: "g1", Date: day(1), ProgressPercent: 10}}
	assert.Nil(t, CompletionBaseline(goals, progress, testNow, time.UTC))
}

func TestPatternEncodingIsReproducible(t *testing.T) {
	habits := []models.Habit{
		{ID: "b", Name: "Stretch", IsActive: true},
		{ID: "a", Name: "Journal", IsActive: true},
		{ID: "c", Name: "Walk", IsActive: true},
	}
	entries := []models.HabitEntry{
		{HabitID: "a", Date: civilDay(testNow), Completed: true},
		{HabitID: "b", Date: civilDay(testNow), Completed: false},
		{HabitID: "c", Date: civilDay(testNow).AddDate(0, 0, -1), Completed: true},
	}
	events := repeatEvents(12, models.EventTaskCompleted, testNow.Add(-time.Hour))

	encode := func() ([]byte, []byte) {
		c, err := EncodePayload(Consistency(habits, entries, testNow, time.UTC))
		require.NoError(t, err)
		p, err := EncodePayload(Productivity(events, nil, testNow, time.UTC))
		require.NoError(t, err)
		return c, p
	}

	c1, p1 := encode()
	for i := 0; i < 5; i++ {
		c2, p2 := encode()
		assert.Equal(t, string(c1), string(c2))
		assert.Equal(t, string(p1), string(p2))
	}
}

func TestDecodePayload(t *testing.T) {
	weeks := 2.5
	data, err := EncodePayload(&VelocityPattern{CompletedTasks: 8, VelocityPerWeek: 2, OpenTasks: 5, WeeksToClear: &weeks})
	require.NoError(t, err)

	p, err := DecodePayload(models.InsightTypeTaskVelocity, data)
	require.NoError(t, err)
	v, ok := p.(*VelocityPattern)
	require.True(t, ok)
	assert.Equal(t, 8, v.CompletedTasks)

	_, err = DecodePayload(models.InsightType("mood_swings"), data)
	assert.ErrorIs(t, err, ErrUnknownPayload)

	_, err = DecodePayload(models.InsightTypeTaskVelocity, []byte("not json"))
	assert.Error(t, err)
}

func floatPtr(v float64) *float64 {
	return &v
}
