package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/stride/backend/internal/config"
	"github.com/JonnyWalker81/stride/backend/internal/handlers"
	"github.com/JonnyWalker81/stride/backend/internal/logger"
	"github.com/JonnyWalker81/stride/backend/internal/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var (
	port string
)

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override port from flag if provided
	if port != "" {
		cfg.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.log.Info("starting stride API server",
		logger.String("env", cfg.Server.Env),
		logger.String("store", cfg.Store.Driver),
	)

	// Set Gin mode based on environment
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: newRouter(a),
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", logger.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func newRouter(a *app) *gin.Engine {
	cfg := a.cfg

	// Initialize handlers
	insightsHandler := handlers.NewInsightsHandler(a.insights)
	eventHandler := handlers.NewEventHandler(a.events)
	habitHandler := handlers.NewHabitHandler(a.habits)
	progressHandler := handlers.NewProgressHandler(a.progress)

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(a.log))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.SecurityHeaders(cfg.Server.Env))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"env":    cfg.Server.Env,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(a.supabase))
	v1.Use(middleware.RateLimit(cfg.Server.RateLimit))
	{
		idempotent := middleware.Idempotency(a.store.Idempotency)

		// Insight routes
		v1.GET("/insights", insightsHandler.GetInsights)
		v1.POST("/insights/generate", middleware.RateLimitGenerate(), insightsHandler.GenerateInsights)
		v1.GET("/insights/recommendations", insightsHandler.GetRecommendations)
		v1.GET("/patterns", insightsHandler.GetPatterns)

		// Event ledger
		v1.POST("/events", eventHandler.TrackEvent)

		// Check-ins and progress
		v1.POST("/habits/:id/entries", idempotent, habitHandler.CreateEntry)
		v1.POST("/habits/:id/streak/recompute", habitHandler.RecomputeStreak)
		v1.POST("/goals/:id/progress", idempotent, progressHandler.CreateEntry)
	}

	return router
}
