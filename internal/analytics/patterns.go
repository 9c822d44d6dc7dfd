package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/JonnyWalker81/stride/backend/internal/models"
)

const (
	// MinEventsForProductivity is the event count needed before peak times mean anything
	MinEventsForProductivity = 10

	// MinCompletedTasksForVelocity is the completed task count needed for velocity
	MinCompletedTasksForVelocity = 5

	// MinCompletedGoalsForSuccessFactors is the completed goal count needed for success factors
	MinCompletedGoalsForSuccessFactors = 2

	// MinProgressEntriesForProjection is the per-goal entry count needed to project completion
	MinProgressEntriesForProjection = 2

	// VelocityWindowDays is the trailing window used for task velocity
	VelocityWindowDays = 30

	velocityWindowWeeks = 4

	// ConsistencyWindowDays is the trailing window used for habit consistency
	ConsistencyWindowDays = 30

	// Habit strength thresholds, in percent
	StrongHabitThreshold = 80.0
	WeakHabitThreshold   = 50.0

	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"

	StrengthStrong   = "strong"
	StrengthModerate = "moderate"
	StrengthWeak     = "weak"

	uncategorized = "uncategorized"
)

// Productivity buckets events by local hour and weekday and compares activity
// across the last four ISO weeks. Returns nil with fewer than
// MinEventsForProductivity events.
func Productivity(events []models.AnalyticsEvent, progress []models.ProgressEntry, now time.Time, loc *time.Location) *ProductivityPattern {
	events = userActivity(events)
	if len(events) < MinEventsForProductivity {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	hours := make([]int, 24)
	weekdays := make([]int, 7)

	currentWeek := weekStart(localDay(now, loc))
	firstWeek := currentWeek.AddDate(0, 0, -21)
	weekly := make([]WeekCount, 4)
	for i := range weekly {
		weekly[i].Week = isoWeekLabel(firstWeek.AddDate(0, 0, 7*i))
	}

	for _, e := range events {
		local := e.Timestamp.In(loc)
		hours[local.Hour()]++
		weekdays[int(local.Weekday())]++

		day := civilDay(local)
		if day.Before(firstWeek) {
			continue
		}
		idx := int(day.Sub(firstWeek).Hours()/24) / 7
		if idx < len(weekly) {
			weekly[idx].Count++
		}
	}

	peakHour := peakIndex(hours)
	peakDay := peakIndex(weekdays)

	trend := TrendStable
	if weekly[3].Count > weekly[0].Count {
		trend = TrendIncreasing
	} else if weekly[3].Count < weekly[0].Count {
		trend = TrendDecreasing
	}

	pattern := &ProductivityPattern{
		EventCount:       len(events),
		HourDistribution: hours,
		DayDistribution:  weekdays,
		PeakHour:         peakHour,
		PeakHourLabel:    formatHour(peakHour),
		PeakDay:          peakDay,
		PeakDayLabel:     dayNames[peakDay],
		WeeklyActivity:   weekly,
		Trend:            trend,
	}

	var moodSum float64
	var moodCount int
	for _, p := range progress {
		if p.Mood != nil {
			moodSum += float64(*p.Mood)
			moodCount++
		}
		if p.HoursWorked != nil {
			pattern.TotalHoursWorked += *p.HoursWorked
		}
	}
	pattern.TotalHoursWorked = round2(pattern.TotalHoursWorked)
	if moodCount > 0 {
		avg := round2(moodSum / float64(moodCount))
		pattern.AverageMood = &avg
	}

	return pattern
}

// userActivity drops events the engine writes about itself
func userActivity(events []models.AnalyticsEvent) []models.AnalyticsEvent {
	out := make([]models.AnalyticsEvent, 0, len(events))
	for _, e := range events {
		if e.EventType != models.EventInsightsGenerated {
			out = append(out, e)
		}
	}
	return out
}

// peakIndex returns the index of the largest bucket, lowest index on ties
func peakIndex(buckets []int) int {
	peak := 0
	for i, count := range buckets {
		if count > buckets[peak] {
			peak = i
		}
	}
	return peak
}

// Velocity measures completed tasks per week over the trailing 30 days and how
// long the open backlog would take at that pace. Returns nil with fewer than
// MinCompletedTasksForVelocity completed tasks.
func Velocity(tasks []models.Task, events []models.AnalyticsEvent, now time.Time) *VelocityPattern {
	completed := 0
	for _, t := range tasks {
		if t.IsCompleted() {
			completed++
		}
	}
	if completed < MinCompletedTasksForVelocity {
		return nil
	}

	windowStart := now.AddDate(0, 0, -VelocityWindowDays)
	recent := 0
	for _, e := range events {
		if e.EventType != models.EventTaskCompleted {
			continue
		}
		if e.Timestamp.Before(windowStart) || e.Timestamp.After(now) {
			continue
		}
		recent++
	}

	velocity := float64(recent) / velocityWindowWeeks
	open := len(tasks) - completed

	pattern := &VelocityPattern{
		CompletedTasks:      completed,
		CompletedLast30Days: recent,
		VelocityPerWeek:     round2(velocity),
		OpenTasks:           open,
	}
	if velocity == 0 {
		pattern.Undetermined = true
	} else {
		weeks := round2(float64(open) / velocity)
		pattern.WeeksToClear = &weeks
	}
	return pattern
}

// Consistency computes each active habit's completion rate over the trailing 30
// days (satisfied days divided by logged days) and their mean. Returns nil when
// the user has no active habits.
func Consistency(habits []models.Habit, entries []models.HabitEntry, now time.Time, loc *time.Location) *ConsistencyPattern {
	active := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if h.IsActive {
			active = append(active, h)
		}
	}
	if len(active) == 0 {
		return nil
	}

	today := localDay(now, loc)
	windowStart := today.AddDate(0, 0, -(ConsistencyWindowDays - 1))

	byHabit := make(map[string]map[time.Time]bool, len(active))
	for _, e := range entries {
		day := civilDay(e.Date)
		if day.Before(windowStart) || day.After(today) {
			continue
		}
		days, ok := byHabit[e.HabitID]
		if !ok {
			days = make(map[time.Time]bool)
			byHabit[e.HabitID] = days
		}
		days[day] = days[day] || e.Completed
	}

	sort.Slice(active, func(i, j int) bool {
		if active[i].Name != active[j].Name {
			return active[i].Name < active[j].Name
		}
		return active[i].ID < active[j].ID
	})

	pattern := &ConsistencyPattern{
		Habits: make([]HabitConsistency, 0, len(active)),
		Strong: []string{},
		Weak:   []string{},
	}

	var total float64
	for _, h := range active {
		days := byHabit[h.ID]
		satisfied := 0
		for _, ok := range days {
			if ok {
				satisfied++
			}
		}
		rate := 0.0
		if len(days) > 0 {
			rate = float64(satisfied) / float64(len(days)) * 100
		}
		total += rate

		strength := StrengthModerate
		switch {
		case rate > StrongHabitThreshold:
			strength = StrengthStrong
			pattern.Strong = append(pattern.Strong, h.Name)
		case rate < WeakHabitThreshold:
			strength = StrengthWeak
			pattern.Weak = append(pattern.Weak, h.Name)
		}

		pattern.Habits = append(pattern.Habits, HabitConsistency{
			HabitID:       h.ID,
			Name:          h.Name,
			Rate:          round2(rate),
			SatisfiedDays: satisfied,
			LoggedDays:    len(days),
			Strength:      strength,
		})
	}

	pattern.Overall = round2(total / float64(len(active)))
	return pattern
}

// SuccessFactors aggregates goal, task and habit outcomes. Returns nil with fewer
// than MinCompletedGoalsForSuccessFactors completed goals.
func SuccessFactors(goals []models.Goal, tasks []models.Task, habits []models.Habit) *SuccessFactorsPattern {
	completed := make([]models.Goal, 0, len(goals))
	for _, g := range goals {
		if g.IsCompleted() {
			completed = append(completed, g)
		}
	}
	if len(completed) < MinCompletedGoalsForSuccessFactors {
		return nil
	}

	pattern := &SuccessFactorsPattern{
		TotalGoals:         len(goals),
		CompletedGoals:     len(completed),
		GoalCompletionRate: round2(float64(len(completed)) / float64(len(goals)) * 100),
		Factors:            []string{},
		Risks:              []string{},
	}

	if len(tasks) > 0 {
		done := 0
		for _, t := range tasks {
			if t.IsCompleted() {
				done++
			}
		}
		pattern.TaskCompletionRate = round2(float64(done) / float64(len(tasks)) * 100)
	}

	categories := make(map[string]int)
	var durationDays float64
	var timed int
	for _, g := range completed {
		category := g.Category
		if category == "" {
			category = uncategorized
		}
		categories[category]++
		if g.CompletedAt != nil && !g.CompletedAt.Before(g.CreatedAt) {
			durationDays += g.CompletedAt.Sub(g.CreatedAt).Hours() / 24
			timed++
		}
	}
	if timed > 0 {
		pattern.AverageCompletionDays = round2(durationDays / float64(timed))
	}

	ranked := make([]CategoryCount, 0, len(categories))
	for name, count := range categories {
		ranked = append(ranked, CategoryCount{Category: name, Completed: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Completed != ranked[j].Completed {
			return ranked[i].Completed > ranked[j].Completed
		}
		return ranked[i].Category < ranked[j].Category
	})
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	pattern.TopCategories = ranked

	for _, h := range habits {
		if h.IsActive {
			pattern.ActiveHabits++
		}
		if h.LongestStreak > pattern.BestStreak {
			pattern.BestStreak = h.LongestStreak
		}
	}

	return pattern
}

// CompletionBaseline projects each active goal's completion date from the
// straight-line rate between its first and newest progress entries, counting
// days from today in loc. Returns nil when no active goal has enough entries.
func CompletionBaseline(goals []models.Goal, progress []models.ProgressEntry, now time.Time, loc *time.Location) *CompletionPrediction {
	byGoal := make(map[string][]models.ProgressEntry)
	for _, p := range progress {
		byGoal[p.GoalID] = append(byGoal[p.GoalID], p)
	}

	active := make([]models.Goal, 0, len(goals))
	for _, g := range goals {
		if g.Status == models.GoalStatusActive && len(byGoal[g.ID]) >= MinProgressEntriesForProjection {
			active = append(active, g)
		}
	}
	if len(active) == 0 {
		return nil
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })

	today := localDay(now, loc)
	prediction := &CompletionPrediction{
		Goals:   make([]GoalProjection, 0, len(active)),
		Factors: []string{},
		Risks:   []string{},
	}

	withTarget, onTrack, moving := 0, 0, 0
	for _, g := range active {
		entries := byGoal[g.ID]
		SortProgressEntries(entries)
		first, last := entries[0], entries[len(entries)-1]

		projection := GoalProjection{
			GoalID:     g.ID,
			Title:      g.Title,
			Progress:   last.ProgressPercent,
			TargetDate: g.TargetDate,
		}

		span := civilDay(last.Date).Sub(civilDay(first.Date)).Hours() / 24
		if span > 0 {
			projection.DailyRate = round2(float64(last.ProgressPercent-first.ProgressPercent) / span)
		}

		if projection.DailyRate > 0 {
			moving++
			days := int(math.Ceil(float64(100-projection.Progress) / projection.DailyRate))
			if days < 0 {
				days = 0
			}
			finish := today.AddDate(0, 0, days)
			projection.DaysRemaining = &days
			projection.ProjectedCompletion = &finish
		}

		if g.TargetDate != nil {
			withTarget++
			ok := projection.ProjectedCompletion != nil && !projection.ProjectedCompletion.After(civilDay(*g.TargetDate))
			if projection.Progress >= 100 {
				ok = true
			}
			if ok {
				onTrack++
			}
			projection.OnTrack = &ok
		}

		prediction.Goals = append(prediction.Goals, projection)
	}

	switch {
	case withTarget > 0:
		prediction.BaselineLikelihood = int(math.Round(float64(onTrack) / float64(withTarget) * 100))
	case moving == len(active):
		prediction.BaselineLikelihood = 70
	default:
		prediction.BaselineLikelihood = 40
	}
	prediction.Likelihood = prediction.BaselineLikelihood

	return prediction
}

// SortProgressEntries orders entries oldest first by date, then creation time
func SortProgressEntries(entries []models.ProgressEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}
