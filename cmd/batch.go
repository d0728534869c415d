package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/trip-planner/internal/model"
)

var batchRequestsPath string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Plan many trips from a request list",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		requests, err := loadBatchRequests(batchRequestsPath)
		if err != nil {
			return err
		}
		if len(requests) == 0 {
			zap.L().Info("no requests in batch file")
			return nil
		}

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		return processBatch(ctx, e, requests, cfg.Batch.MaxConcurrentRuns)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchRequestsPath, "requests", "", "path to a JSON array of trip requests (required)")
	_ = batchCmd.MarkFlagRequired("requests")
	rootCmd.AddCommand(batchCmd)
}

func loadBatchRequests(path string) ([]model.TripConstraints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read requests %s", path)
	}
	var requests []model.TripConstraints
	if err := json.Unmarshal(data, &requests); err != nil {
		return nil, eris.Wrapf(err, "parse requests %s", path)
	}
	for i, cons := range requests {
		if err := validate.Struct(cons); err != nil {
			return nil, eris.Wrapf(err, "request %d invalid", i)
		}
	}
	return requests, nil
}

// processBatch plans requests concurrently. Each run is synchronous inside;
// the group only bounds how many runs are in flight at once.
func processBatch(ctx context.Context, e *env, requests []model.TripConstraints, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("requests", len(requests)),
		zap.Int("concurrency", concurrency),
	)

	var complete, degraded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, cons := range requests {
		g.Go(func() error {
			run, _, err := planAndStore(gctx, e, cons)
			if err != nil {
				failed.Add(1)
				zap.L().Error("batch run failed",
					zap.String("destination", cons.Destination),
					zap.Error(err),
				)
				return nil // one bad run never aborts the batch
			}
			switch run.Status {
			case model.RunStatusComplete:
				complete.Add(1)
			case model.RunStatusDegraded:
				degraded.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch")
	}

	zap.L().Info("batch finished",
		zap.Int64("complete", complete.Load()),
		zap.Int64("degraded", degraded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
