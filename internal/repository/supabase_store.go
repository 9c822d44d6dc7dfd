package repository

import "github.com/JonnyWalker81/stride/backend/pkg/supabase"

// NewSupabaseStore wires every repository to one PostgREST client
func NewSupabaseStore(client *supabase.Client) *Store {
	return &Store{
		Goals:           NewGoalRepository(client),
		Tasks:           NewTaskRepository(client),
		Habits:          NewHabitRepository(client),
		HabitEntries:    NewHabitEntryRepository(client),
		ProgressEntries: NewProgressEntryRepository(client),
		Events:          NewAnalyticsEventRepository(client),
		Insights:        NewInsightRepository(client),
		Idempotency:     NewIdempotencyRepository(client),
	}
}
