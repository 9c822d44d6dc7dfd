package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/internal/repository"
)

// fakeStore is an in-memory repository.Store for service tests. Every repository
// shares one mutex so ApplyAnalysis is atomic like the real stores.
type fakeStore struct {
	mu sync.Mutex

	goals        map[string]*models.Goal
	tasks        []models.Task
	habits       map[string]*models.Habit
	habitEntries []models.HabitEntry
	progress     []models.ProgressEntry
	events       []models.AnalyticsEvent
	insights     []models.MlInsight
	patterns     map[models.InsightType]models.UserPattern
	predictions  map[string]models.PredictionModel

	nextID     int
	readErr    error
	eventErr   error
	applyErr   error
	applyCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		goals:       make(map[string]*models.Goal),
		habits:      make(map[string]*models.Habit),
		patterns:    make(map[models.InsightType]models.UserPattern),
		predictions: make(map[string]models.PredictionModel),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) Store() *repository.Store {
	return &repository.Store{
		Goals:           fakeGoals{f},
		Tasks:           fakeTasks{f},
		Habits:          fakeHabits{f},
		HabitEntries:    fakeHabitEntries{f},
		ProgressEntries: fakeProgress{f},
		Events:          fakeEvents{f},
		Insights:        fakeInsights{f},
	}
}

func (f *fakeStore) activeInsights(kind models.InsightType) []models.MlInsight {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MlInsight
	for _, i := range f.insights {
		if i.IsActive && i.InsightType == kind {
			out = append(out, i)
		}
	}
	return out
}

func (f *fakeStore) eventsOfType(eventType string) []models.AnalyticsEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AnalyticsEvent
	for _, e := range f.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeGoals struct{ f *fakeStore }

func (r fakeGoals) GetByID(ctx context.Context, id string) (*models.Goal, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	g, ok := r.f.goals[id]
	if !ok {
		return nil, fmt.Errorf("goal %s: %w", id, repository.ErrNotFound)
	}
	cp := *g
	return &cp, nil
}

func (r fakeGoals) GetByUserID(ctx context.Context, userID string) ([]models.Goal, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.readErr != nil {
		return nil, r.f.readErr
	}
	var out []models.Goal
	for _, g := range r.f.goals {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r fakeGoals) UpdateProgress(ctx context.Context, id string, progress int) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	g, ok := r.f.goals[id]
	if !ok {
		return repository.ErrNotFound
	}
	g.Progress = progress
	return nil
}

type fakeTasks struct{ f *fakeStore }

func (r fakeTasks) GetByUserID(ctx context.Context, userID string) ([]models.Task, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []models.Task
	for _, t := range r.f.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeHabits struct{ f *fakeStore }

func (r fakeHabits) GetByID(ctx context.Context, id string) (*models.Habit, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	h, ok := r.f.habits[id]
	if !ok {
		return nil, fmt.Errorf("habit %s: %w", id, repository.ErrNotFound)
	}
	cp := *h
	return &cp, nil
}

func (r fakeHabits) GetByUserID(ctx context.Context, userID string) ([]models.Habit, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []models.Habit
	for _, h := range r.f.habits {
		if h.UserID == userID {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (r fakeHabits) UpdateStreak(ctx context.Context, id string, current, longest int) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	h, ok := r.f.habits[id]
	if !ok {
		return repository.ErrNotFound
	}
	h.CurrentStreak = current
	h.LongestStreak = longest
	return nil
}

type fakeHabitEntries struct{ f *fakeStore }

func (r fakeHabitEntries) Create(ctx context.Context, entry *models.HabitEntry) (*models.HabitEntry, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	cp := *entry
	cp.ID = r.f.id("entry")
	cp.CreatedAt = time.Now()
	r.f.habitEntries = append(r.f.habitEntries, cp)
	return &cp, nil
}

func (r fakeHabitEntries) GetByHabitID(ctx context.Context, habitID string) ([]models.HabitEntry, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []models.HabitEntry
	for _, e := range r.f.habitEntries {
		if e.HabitID == habitID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r fakeHabitEntries) GetByUserID(ctx context.Context, userID string) ([]models.HabitEntry, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []models.HabitEntry
	for _, e := range r.f.habitEntries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeProgress struct{ f *fakeStore }

func (r fakeProgress) Create(ctx context.Context, entry *models.ProgressEntry) (*models.ProgressEntry, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	cp := *entry
	cp.ID = r.f.id("progress")
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.f.progress = append(r.f.progress, cp)
	return &cp, nil
}

func (r fakeProgress) GetByGoalID(ctx context.Context, goalID string) ([]models.ProgressEntry, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []models.ProgressEntry
	for _, e := range r.f.progress {
		if e.GoalID == goalID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r fakeProgress) GetByUserID(ctx context.Context, userID string) ([]models.ProgressEntry, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []models.ProgressEntry
	for _, e := range r.f.progress {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeEvents struct{ f *fakeStore }

func (r fakeEvents) Create(ctx context.Context, event *models.AnalyticsEvent) (*models.AnalyticsEvent, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.eventErr != nil {
		return nil, r.f.eventErr
	}
	cp := *event
	cp.ID = r.f.id("event")
	r.f.events = append(r.f.events, cp)
	return &cp, nil
}

func (r fakeEvents) GetByUserID(ctx context.Context, userID string) ([]models.AnalyticsEvent, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []models.AnalyticsEvent
	for _, e := range r.f.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeInsights struct{ f *fakeStore }

func (r fakeInsights) GetActiveByUserID(ctx context.Context, userID string) ([]models.MlInsight, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.readErr != nil {
		return nil, r.f.readErr
	}
	var out []models.MlInsight
	for _, i := range r.f.insights {
		if i.UserID == userID && i.IsActive {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r fakeInsights) GetPatternsByUserID(ctx context.Context, userID string) ([]models.UserPattern, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []models.UserPattern
	for _, p := range r.f.patterns {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fakeInsights) GetPrediction(ctx context.Context, userID, modelType string) (*models.PredictionModel, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m, ok := r.f.predictions[userID+"/"+modelType]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r fakeInsights) ApplyAnalysis(ctx context.Context, batch *repository.AnalysisBatch) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.applyCalls++
	if r.f.applyErr != nil {
		return r.f.applyErr
	}

	for _, p := range batch.Patterns {
		if existing, ok := r.f.patterns[p.PatternType]; ok && existing.LastUpdated.After(p.LastUpdated) {
			continue
		}
		p.ID = r.f.id("pattern")
		r.f.patterns[p.PatternType] = p
	}
	if batch.Prediction != nil {
		key := batch.UserID + "/" + batch.Prediction.ModelType
		if existing, ok := r.f.predictions[key]; !ok || !existing.LastTrained.After(batch.Prediction.LastTrained) {
			r.f.predictions[key] = *batch.Prediction
		}
	}

	retire := make(map[models.InsightType]bool, len(batch.Deactivate))
	for _, kind := range batch.Deactivate {
		retire[kind] = true
	}
	for i := range r.f.insights {
		if r.f.insights[i].UserID == batch.UserID && retire[r.f.insights[i].InsightType] {
			r.f.insights[i].IsActive = false
		}
	}
	for _, insight := range batch.Insights {
		insight.ID = r.f.id("insight")
		r.f.insights = append(r.f.insights, insight)
	}
	if batch.Event != nil {
		ev := *batch.Event
		ev.ID = r.f.id("event")
		r.f.events = append(r.f.events, ev)
	}
	return nil
}
