package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a stored itinerary to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		runID := args[0]

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(ctx, runID)
		if err != nil {
			return eris.Wrapf(err, "load run %s", runID)
		}
		if run.Itinerary == nil {
			return eris.Errorf("run %s has no itinerary (status %s)", runID, run.Status)
		}

		out := exportOut
		if out == "" {
			out = filepath.Join(cfg.Export.OutputDir, runID+".xlsx")
		}
		if dir := filepath.Dir(out); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return eris.Wrapf(err, "create output dir %s", dir)
			}
		}

		if err := export.WriteItinerary(run.Itinerary, out); err != nil {
			return err
		}

		zap.L().Info("itinerary exported",
			zap.String("run_id", runID),
			zap.String("path", out),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default <export.output_dir>/<run-id>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
