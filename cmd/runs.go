package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect planning run history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List planning runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		status, _ := cmd.Flags().GetString("status")
		destination, _ := cmd.Flags().GetString("destination")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status:      model.RunStatus(status),
			Destination: destination,
			Limit:       limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "load run %s", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

func formatRunsList(w io.Writer, runs []model.PlanRun) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDESTINATION\tDAYS\tSTATUS\tCONFIDENCE\tCREATED")
	for _, run := range runs {
		confidence := "-"
		if run.Itinerary != nil {
			confidence = fmt.Sprintf("%.2f", run.Itinerary.Confidence)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			run.ID,
			run.Constraints.Destination,
			run.Constraints.Days,
			run.Status,
			confidence,
			run.CreatedAt.Format(time.RFC3339),
		)
	}
	tw.Flush()
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status")
	runsListCmd.Flags().String("destination", "", "filter by destination city")
	runsListCmd.Flags().Int("limit", 50, "max rows")
	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
