package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/stride/backend/internal/config"
	"github.com/JonnyWalker81/stride/backend/internal/logger"
	"github.com/JonnyWalker81/stride/backend/internal/service"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute streaks and insights for a user",
	Long: `Rebuild every habit streak for a user from their check-ins, then run
insight generation once. Useful after importing or repairing data.`,
	RunE: runRecompute,
}

var (
	recomputeUserID string
	skipStreaks     bool
	skipInsights    bool
)

func init() {
	recomputeCmd.Flags().StringVarP(&recomputeUserID, "user", "u", "", "User ID to recompute (required)")
	recomputeCmd.Flags().BoolVar(&skipStreaks, "skip-streaks", false, "Do not rebuild habit streaks")
	recomputeCmd.Flags().BoolVar(&skipInsights, "skip-insights", false, "Do not regenerate insights")
	_ = recomputeCmd.MarkFlagRequired("user")
}

func runRecompute(cmd *cobra.Command, args []string) error {
	if err := service.ValidateID(recomputeUserID); err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := logger.WithUserID(cmd.Context(), recomputeUserID)
	ctx = logger.WithFields(ctx, logger.String("command", "recompute"))
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx = logger.WithLogger(ctx, a.log)
	log := logger.Ctx(ctx)

	if !skipStreaks {
		habits, err := a.store.Habits.GetByUserID(ctx, recomputeUserID)
		if err != nil {
			return fmt.Errorf("failed to load habits: %w", err)
		}
		for _, h := range habits {
			updated, err := a.habits.RecomputeStreak(ctx, recomputeUserID, h.ID)
			if err != nil {
				return fmt.Errorf("failed to recompute streak for habit %s: %w", h.ID, err)
			}
			log.Info("streak recomputed",
				logger.String("habit_id", h.ID),
				logger.Int("current_streak", updated.CurrentStreak),
				logger.Int("longest_streak", updated.LongestStreak),
			)
		}
	}

	if !skipInsights {
		insights, err := a.insights.Recompute(ctx, recomputeUserID)
		if err != nil {
			return fmt.Errorf("failed to recompute insights: %w", err)
		}
		log.Info("insights recomputed", logger.Int("count", len(insights)))
	}

	return nil
}
