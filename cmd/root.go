package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "trip-planner",
	Short: "Deterministic travel itinerary engine",
	Long:  "Builds, validates, and repairs multi-day city itineraries from curated POI data: clustering, day balancing, route ordering, scheduling, and budget estimation.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
