package analytics

import (
	"sort"
	"time"

	"github.com/JonnyWalker81/stride/backend/internal/models"
)

// StreakResult holds the derived streak fields of a habit
type StreakResult struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// RecomputeStreak derives current and longest consecutive-day streaks from every
// entry of a habit. reference bounds the walk: entries after its calendar day (in
// loc) are ignored. previousLongest is the stored value; the result never drops
// below it, so Current <= Longest always holds. Calling it twice with the same
// inputs returns the same result.
func RecomputeStreak(entries []models.HabitEntry, reference time.Time, previousLongest int, loc *time.Location) StreakResult {
	if previousLongest < 0 {
		previousLongest = 0
	}

	today := localDay(reference, loc)
	satisfied := collapseEntries(entries, today)
	if len(satisfied) == 0 {
		return StreakResult{Current: 0, Longest: previousLongest}
	}

	current := 0
	for day := today; satisfied[day]; day = day.AddDate(0, 0, -1) {
		current++
	}

	days := make([]time.Time, 0, len(satisfied))
	for day := range satisfied {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 0, 0
	for day := days[0]; !day.After(today); day = day.AddDate(0, 0, 1) {
		if satisfied[day] {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	if previousLongest > longest {
		longest = previousLongest
	}
	if current > longest {
		longest = current
	}

	return StreakResult{Current: current, Longest: longest}
}

// collapseEntries maps each day up to and including today to whether any entry
// for it was completed
func collapseEntries(entries []models.HabitEntry, today time.Time) map[time.Time]bool {
	days := make(map[time.Time]bool, len(entries))
	for _, e := range entries {
		day := civilDay(e.Date)
		if day.After(today) {
			continue
		}
		days[day] = days[day] || e.Completed
	}
	return days
}
