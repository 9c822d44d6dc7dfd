package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/JonnyWalker81/stride/backend/internal/analytics"
	"github.com/JonnyWalker81/stride/backend/internal/lock"
	"github.com/JonnyWalker81/stride/backend/internal/logger"
	"github.com/JonnyWalker81/stride/backend/internal/metrics"
	"github.com/JonnyWalker81/stride/backend/internal/models"
	"github.com/JonnyWalker81/stride/backend/internal/repository"
)

// User-facing messages for insight responses
const (
	MessageGenerationFailed = "We couldn't generate new insights right now. Please try again in a few minutes."
	MessageNeedMoreData     = "Keep logging your activity to unlock personalized insights."
)

// DefaultRecomputeTimeout bounds one shared insight generation run
const DefaultRecomputeTimeout = 2 * time.Minute

// InsightOptions tunes the insight service
type InsightOptions struct {
	// Location decides calendar days for day-based analyses
	Location *time.Location
	// TTL is how long a generated insight stays live
	TTL time.Duration
	// Timeout bounds a generation run. Runs are shared between callers and do
	// not end when one caller goes away.
	Timeout time.Duration
	// Now overrides the clock, for tests
	Now func() time.Time
}

type insightService struct {
	store     *repository.Store
	narrative analytics.NarrativeGenerator
	locker    lock.Locker
	metrics   *metrics.Metrics
	loc       *time.Location
	ttl       time.Duration
	timeout   time.Duration
	now       func() time.Time
	inflight  singleflight.Group
}

// NewInsightService creates a new insight service
func NewInsightService(
	store *repository.Store,
	narrative analytics.NarrativeGenerator,
	locker lock.Locker,
	m *metrics.Metrics,
	opts InsightOptions,
) InsightService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.TTL <= 0 {
		opts.TTL = analytics.DefaultInsightTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRecomputeTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &insightService{
		store:     store,
		narrative: narrative,
		locker:    locker,
		metrics:   m,
		loc:       opts.Location,
		ttl:       opts.TTL,
		timeout:   opts.Timeout,
		now:       opts.Now,
	}
}

// GetInsights returns live insights, most urgent first
func (s *insightService) GetInsights(ctx context.Context, userID string) (*models.InsightsResponse, error) {
	insights, err := s.liveInsights(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &models.InsightsResponse{Insights: insights}
	if len(insights) == 0 {
		resp.Message = MessageNeedMoreData
	}
	return resp, nil
}

func (s *insightService) GenerateInsights(ctx context.Context, userID string) *models.InsightsResponse {
	insights, err := s.Recompute(ctx, userID)
	if err != nil {
		logger.Ctx(ctx).Error("insight generation failed", logger.Err(err))
		return &models.InsightsResponse{
			Insights: []models.MlInsight{},
			Message:  MessageGenerationFailed,
		}
	}

	generatedAt := s.now().UTC()
	resp := &models.InsightsResponse{Insights: insights, GeneratedAt: &generatedAt}
	if len(insights) == 0 {
		resp.Message = MessageNeedMoreData
	}
	return resp
}

// Recompute runs one generation for the user. Concurrent calls for the same
// user share a single run, which keeps going if the caller that started it
// stops waiting.
func (s *insightService) Recompute(ctx context.Context, userID string) ([]models.MlInsight, error) {
	ch := s.inflight.DoChan(userID, func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.recompute(runCtx, userID)
	})

	select {
	case res := <-ch:
		if res.Shared {
			logger.Ctx(ctx).Debug("joined in-flight insight generation")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.MlInsight), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to wait for insight generation: %w", ctx.Err())
	}
}

func (s *insightService) GetRecommendations(ctx context.Context, userID string) (*models.RecommendationsResponse, error) {
	insights, err := s.store.Insights.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active insights: %w", err)
	}

	recommendations, fallback := analytics.Recommend(insights, s.now())
	return &models.RecommendationsResponse{
		Recommendations: recommendations,
		Fallback:        fallback,
	}, nil
}

func (s *insightService) GetPatterns(ctx context.Context, userID string) ([]models.UserPattern, error) {
	patterns, err := s.store.Insights.GetPatternsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get patterns: %w", err)
	}
	sort.Slice(patterns, func(i, j int) bool { return patterns[i].PatternType < patterns[j].PatternType })
	return patterns, nil
}

// snapshot is one consistent read of everything the analyses look at
type snapshot struct {
	goals        []models.Goal
	tasks        []models.Task
	habits       []models.Habit
	habitEntries []models.HabitEntry
	progress     []models.ProgressEntry
	events       []models.AnalyticsEvent
}

// outcome is the result of one analysis
type outcome struct {
	kind models.InsightType
	// draft is nil when the analysis produced nothing
	draft *analytics.Draft
	// unmet means the data no longer supports this insight type
	unmet bool
	// prediction is set by the completion analysis
	prediction *analytics.CompletionPrediction
}

func (s *insightService) recompute(ctx context.Context, userID string) ([]models.MlInsight, error) {
	start := time.Now()
	defer func() { s.metrics.RecomputeDuration.Observe(time.Since(start).Seconds()) }()

	now := s.now().UTC()
	ctx = logger.WithUserID(ctx, userID)
	log := logger.Ctx(ctx)

	snap, err := s.load(ctx, userID)
	if err != nil {
		s.metrics.RecomputesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	outcomes := s.analyze(ctx, snap, now)

	batch, err := s.buildBatch(userID, outcomes, now)
	if err != nil {
		s.metrics.RecomputesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, lock.UserKey(userID))
	if err != nil {
		s.metrics.RecomputesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("failed to acquire analytics lock: %w", err)
	}
	err = s.store.Insights.ApplyAnalysis(ctx, batch)
	unlock()
	if err != nil {
		s.metrics.RecomputesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("failed to apply analysis: %w", err)
	}

	for _, insight := range batch.Insights {
		s.metrics.InsightsGenerated.WithLabelValues(string(insight.InsightType)).Inc()
	}
	s.metrics.RecomputesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info("insights generated",
		logger.Int("generated", len(batch.Insights)),
		logger.Int("deactivated_types", len(batch.Deactivate)),
		logger.Duration("duration", time.Since(start)),
	)

	return s.liveInsights(ctx, userID)
}

// load reads the user's data concurrently. Any read error aborts the run.
func (s *insightService) load(ctx context.Context, userID string) (*snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		if snap.goals, err = s.store.Goals.GetByUserID(gctx, userID); err != nil {
			return fmt.Errorf("failed to get goals: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if snap.tasks, err = s.store.Tasks.GetByUserID(gctx, userID); err != nil {
			return fmt.Errorf("failed to get tasks: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if snap.habits, err = s.store.Habits.GetByUserID(gctx, userID); err != nil {
			return fmt.Errorf("failed to get habits: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if snap.habitEntries, err = s.store.HabitEntries.GetByUserID(gctx, userID); err != nil {
			return fmt.Errorf("failed to get habit entries: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if snap.progress, err = s.store.ProgressEntries.GetByUserID(gctx, userID); err != nil {
			return fmt.Errorf("failed to get progress entries: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if snap.events, err = s.store.Events.GetByUserID(gctx, userID); err != nil {
			return fmt.Errorf("failed to get analytics events: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// analyze runs every analysis over the snapshot. Results come back in
// models.AllInsightTypes order regardless of completion order.
func (s *insightService) analyze(ctx context.Context, snap *snapshot, now time.Time) []outcome {
	outcomes := make([]outcome, len(models.AllInsightTypes))
	var g errgroup.Group

	for i, kind := range models.AllInsightTypes {
		i, kind := i, kind
		g.Go(func() error {
			outcomes[i] = s.analyzeOne(ctx, kind, snap, now)
			return nil
		})
	}
	g.Wait()

	return outcomes
}

func (s *insightService) analyzeOne(ctx context.Context, kind models.InsightType, snap *snapshot, now time.Time) outcome {
	out := outcome{kind: kind}

	switch kind {
	case models.InsightTypeProductivityPattern:
		p := analytics.Productivity(snap.events, snap.progress, now, s.loc)
		if p == nil {
			out.unmet = true
			return out
		}
		d := analytics.ProductivityInsight(p)
		out.draft = &d

	case models.InsightTypeTaskVelocity:
		p := analytics.Velocity(snap.tasks, snap.events, now)
		if p == nil {
			out.unmet = true
			return out
		}
		d := analytics.VelocityInsight(p)
		out.draft = &d

	case models.InsightTypeHabitConsistency:
		p := analytics.Consistency(snap.habits, snap.habitEntries, now, s.loc)
		if p == nil {
			out.unmet = true
			return out
		}
		d := analytics.ConsistencyInsight(p)
		out.draft = &d

	case models.InsightTypeSuccessFactors:
		p := analytics.SuccessFactors(snap.goals, snap.tasks, snap.habits)
		if p == nil {
			out.unmet = true
			return out
		}
		a, ok := s.enrich(ctx, kind, p)
		if !ok {
			return out
		}
		d := analytics.SuccessFactorsInsight(p, a)
		out.draft = &d

	case models.InsightTypeCompletionPrediction:
		p := analytics.CompletionBaseline(snap.goals, snap.progress, now, s.loc)
		if p == nil {
			out.unmet = true
			return out
		}
		a, ok := s.enrich(ctx, kind, p)
		if !ok {
			return out
		}
		d := analytics.PredictionInsight(p, a)
		out.draft = &d
		out.prediction = p
	}

	return out
}

// enrich asks the narrative generator about a summary. ok is false when the
// call itself failed, in which case the insight type is skipped for this run.
// Malformed output still succeeds with default values.
func (s *insightService) enrich(ctx context.Context, kind models.InsightType, summary analytics.Payload) (analysis analytics.Analysis, ok bool) {
	log := logger.Ctx(ctx).With(logger.String("insight_type", string(kind)))

	start := time.Now()
	raw, err := s.narrative.Analyze(ctx, analytics.PromptContext{Kind: kind, Summary: summary})
	s.metrics.NarrativeCallDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.NarrativeCallsTotal.WithLabelValues(string(kind), metrics.OutcomeError).Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn("narrative generation timed out, skipping insight", logger.Err(err))
		} else {
			log.Warn("narrative generation failed, skipping insight", logger.Err(err))
		}
		return analytics.Analysis{}, false
	}
	s.metrics.NarrativeCallsTotal.WithLabelValues(string(kind), metrics.OutcomeSuccess).Inc()

	analysis, malformed := analytics.ParseAnalysis(raw, analytics.DefaultConfidence(kind))
	if malformed {
		s.metrics.NarrativeMalformed.WithLabelValues(string(kind)).Inc()
		log.Warn("narrative output was not valid JSON, using defaults",
			logger.Int("length", len(raw)),
		)
	}
	return analysis, true
}

// buildBatch turns analysis outcomes into one atomic write set. Types that were
// produced or whose data no longer qualifies are retired; types skipped after a
// narrative failure keep their previous insight.
func (s *insightService) buildBatch(userID string, outcomes []outcome, now time.Time) (*repository.AnalysisBatch, error) {
	batch := &repository.AnalysisBatch{
		UserID:     userID,
		Patterns:   []models.UserPattern{},
		Deactivate: []models.InsightType{},
		Insights:   []models.MlInsight{},
	}

	var produced, skipped []string
	for _, o := range outcomes {
		if o.unmet {
			batch.Deactivate = append(batch.Deactivate, o.kind)
			continue
		}
		if o.draft == nil {
			skipped = append(skipped, string(o.kind))
			continue
		}

		batch.Deactivate = append(batch.Deactivate, o.kind)
		produced = append(produced, string(o.kind))

		insight, err := analytics.NewInsight(userID, *o.draft, now, s.ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s insight: %w", o.kind, err)
		}
		batch.Insights = append(batch.Insights, insight)

		if o.prediction != nil {
			model, err := analytics.NewPredictionModel(userID, o.prediction, o.draft.Confidence, now)
			if err != nil {
				return nil, fmt.Errorf("failed to build prediction model: %w", err)
			}
			batch.Prediction = &model
			continue
		}

		pattern, err := analytics.NewPattern(userID, o.draft.Payload, o.draft.Confidence, now)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s pattern: %w", o.kind, err)
		}
		batch.Patterns = append(batch.Patterns, pattern)
	}

	if produced == nil {
		produced = []string{}
	}
	if skipped == nil {
		skipped = []string{}
	}
	batch.Event = &models.AnalyticsEvent{
		UserID:    userID,
		EventType: models.EventInsightsGenerated,
		Metadata: map[string]interface{}{
			"count":   len(batch.Insights),
			"types":   produced,
			"skipped": skipped,
		},
		Timestamp: now,
	}

	return batch, nil
}

// liveInsights returns active unexpired insights sorted by priority, then confidence
func (s *insightService) liveInsights(ctx context.Context, userID string) ([]models.MlInsight, error) {
	insights, err := s.store.Insights.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active insights: %w", err)
	}

	now := s.now()
	live := make([]models.MlInsight, 0, len(insights))
	for _, insight := range insights {
		if insight.IsLive(now) {
			live = append(live, insight)
		}
	}

	sort.SliceStable(live, func(i, j int) bool {
		pi, pj := priorityRank(live[i].Priority), priorityRank(live[j].Priority)
		if pi != pj {
			return pi < pj
		}
		if live[i].Confidence != live[j].Confidence {
			return live[i].Confidence > live[j].Confidence
		}
		return live[i].CreatedAt.After(live[j].CreatedAt)
	})
	return live, nil
}

func priorityRank(p models.Priority) int {
	switch p {
	case models.PriorityHigh:
		return 0
	case models.PriorityMedium:
		return 1
	default:
		return 2
	}
}
