package analytics

import (
	"fmt"
	"math"
	"time"
)

var dayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// civilDay returns midnight UTC of t's calendar date in t's own location.
// Entry dates are day-granular already, so they are taken at face value.
func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// localDay returns the calendar day of t as observed in loc
func localDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return civilDay(t.In(loc))
}

// weekStart returns the Monday that begins t's ISO week, as a civil day
func weekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func isoWeekLabel(day time.Time) string {
	year, week := day.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// formatHour formats an hour (0-23) as a readable string
func formatHour(hour int) string {
	if hour == 0 {
		return "12 AM"
	} else if hour < 12 {
		return fmt.Sprintf("%d AM", hour)
	} else if hour == 12 {
		return "12 PM"
	}
	return fmt.Sprintf("%d PM", hour-12)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Today returns now's calendar day in loc, in the UTC-midnight form dates are stored in
func Today(now time.Time, loc *time.Location) time.Time {
	return localDay(now, loc)
}

// EntryDay normalises a client-supplied date to its stored UTC-midnight form
func EntryDay(t time.Time) time.Time {
	return civilDay(t)
}
