package main

import (
	"context"
	"fmt"
	"time"

	"github.com/JonnyWalker81/stride/backend/internal/analytics"
	"github.com/JonnyWalker81/stride/backend/internal/config"
	"github.com/JonnyWalker81/stride/backend/internal/lock"
	"github.com/JonnyWalker81/stride/backend/internal/logger"
	"github.com/JonnyWalker81/stride/backend/internal/metrics"
	"github.com/JonnyWalker81/stride/backend/internal/narrative"
	"github.com/JonnyWalker81/stride/backend/internal/repository"
	"github.com/JonnyWalker81/stride/backend/internal/repository/gormstore"
	"github.com/JonnyWalker81/stride/backend/internal/service"
	"github.com/JonnyWalker81/stride/backend/pkg/supabase"
)

// app holds the wired components shared by every subcommand
type app struct {
	cfg      *config.Config
	log      logger.Logger
	supabase *supabase.Client
	store    *repository.Store
	metrics  *metrics.Metrics

	events   service.EventRecorder
	habits   service.HabitService
	progress service.ProgressService
	insights service.InsightService

	closers []func() error
}

func setupLogger(cfg *config.Config) logger.Logger {
	log := logger.New(logger.Config{
		Level:   logger.ParseLevel(cfg.Logging.Level),
		Format:  cfg.Logging.Format,
		Backend: cfg.Logging.Backend,
	})
	logger.SetDefault(log)
	return log
}

func openStore(cfg *config.Config, client *supabase.Client) (*repository.Store, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres, config.StoreSQLite:
		db, err := gormstore.Open(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		return gormstore.NewStore(db), nil
	default:
		return repository.NewSupabaseStore(client), nil
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := setupLogger(cfg)

	loc, err := cfg.Analytics.Location()
	if err != nil {
		return nil, err
	}

	client := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)

	store, err := openStore(cfg, client)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		supabase: client,
		store:    store,
		metrics:  metrics.New(),
	}

	var locker lock.Locker = lock.NewLocal()
	if cfg.Redis.Addr != "" {
		redisLock, err := lock.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, redisLock.Close)
		locker = redisLock
		log.Info("using redis recompute lock", logger.String("addr", cfg.Redis.Addr))
	}

	var generator analytics.NarrativeGenerator = narrative.Offline{}
	if cfg.Narrative.APIKey != "" {
		nc, err := narrative.New(narrative.Config{
			APIKey:        cfg.Narrative.APIKey,
			BaseURL:       cfg.Narrative.BaseURL,
			Model:         cfg.Narrative.Model,
			Timeout:       cfg.Narrative.Timeout,
			RatePerMinute: cfg.Narrative.RatePerMinute,
			MaxRetries:    cfg.Narrative.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create narrative client: %w", err)
		}
		generator = nc
		log.Info("using narrative model", logger.String("model", cfg.Narrative.Model))
	} else {
		log.Warn("no narrative API key configured, using offline narratives")
	}

	a.events = service.NewEventRecorder(store.Events, a.metrics)
	a.habits = service.NewHabitService(store.Habits, store.HabitEntries, a.events, a.metrics, loc)
	a.progress = service.NewProgressService(store.Goals, store.ProgressEntries, a.events, loc)
	a.insights = service.NewInsightService(store, generator, locker, a.metrics, service.InsightOptions{
		Location: loc,
		TTL:      cfg.Analytics.InsightTTL,
		Timeout:  cfg.Analytics.RecomputeTimeout,
	})

	return a, nil
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.log.Warn("failed to close resource", logger.Err(err))
		}
	}
}

// shutdownTimeout bounds graceful shutdown of the HTTP server
const shutdownTimeout = 10 * time.Second
