package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var planRequestPath string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a single trip from a request file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cons, err := loadConstraints(planRequestPath)
		if err != nil {
			return err
		}

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		run, outcome, err := planAndStore(ctx, e, cons)
		if err != nil {
			return err
		}

		if outcome.Itinerary != nil {
			zap.L().Info("itinerary ready",
				zap.Int("days", len(outcome.Itinerary.Days)),
				zap.Float64("total_cost", outcome.Itinerary.TotalCost),
				zap.Float64("confidence", outcome.Itinerary.Confidence),
			)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func init() {
	planCmd.Flags().StringVar(&planRequestPath, "request", "", "path to a trip request JSON file (required)")
	_ = planCmd.MarkFlagRequired("request")
	rootCmd.AddCommand(planCmd)
}
