package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/persona"
	"github.com/sells-group/trip-planner/internal/planner"
	"github.com/sells-group/trip-planner/internal/routing"
	"github.com/sells-group/trip-planner/internal/schedule"
	"github.com/sells-group/trip-planner/internal/store"
	"github.com/sells-group/trip-planner/pkg/poisource"
)

var validate = validator.New()

// env bundles the long-lived collaborators a planning command needs.
type env struct {
	Store   store.Store
	Source  poisource.Source
	Planner *planner.Planner
}

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func initEnv(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	provider, err := buildProvider()
	if err != nil {
		st.Close()
		return nil, err
	}

	personas, err := persona.Load()
	if err != nil {
		st.Close()
		return nil, eris.Wrap(err, "load personas")
	}

	p := planner.New(personas, provider, planner.Options{
		MaxRepairAttempts:  cfg.Engine.MaxRepairAttempts,
		ClusterThresholdKm: cfg.Engine.ClusterThresholdKm,
		MaxClustersPerDay:  cfg.Engine.MaxClustersPerDay,
		Sched:              schedule.Config{DayEndHour: cfg.Engine.DayEndHour},
	})

	var opts []poisource.Option
	if cfg.POISource.FixtureDir != "" {
		opts = append(opts, poisource.WithFixtureDir(cfg.POISource.FixtureDir))
	}

	return &env{Store: st, Source: poisource.New(opts...), Planner: p}, nil
}

func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}

func buildProvider() (routing.Provider, error) {
	fixture, err := routing.LoadFixtureProvider()
	if err != nil {
		return nil, eris.Wrap(err, "load route fixtures")
	}
	if cfg.Routing.Provider != "real" {
		return fixture, nil
	}
	tool := routing.NewHTTPRouteTool(cfg.Routing.BaseURL,
		routing.WithAPIKey(cfg.Routing.Key),
		routing.WithTimeout(time.Duration(cfg.Routing.TimeoutSecs)*time.Second),
	)
	return routing.NewRealProvider(tool, fixture), nil
}

func loadConstraints(path string) (model.TripConstraints, error) {
	var cons model.TripConstraints
	data, err := os.ReadFile(path)
	if err != nil {
		return cons, eris.Wrapf(err, "read request %s", path)
	}
	if err := json.Unmarshal(data, &cons); err != nil {
		return cons, eris.Wrapf(err, "parse request %s", path)
	}
	if err := validate.Struct(cons); err != nil {
		return cons, eris.Wrap(err, "invalid request")
	}
	return cons, nil
}

// planAndStore runs one full planning invocation: create the run record,
// fetch candidates, plan, and persist the outcome.
func planAndStore(ctx context.Context, e *env, cons model.TripConstraints) (*model.PlanRun, *planner.Outcome, error) {
	run, err := e.Store.CreateRun(ctx, cons)
	if err != nil {
		return nil, nil, eris.Wrap(err, "create run")
	}

	if err := e.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusPlanning); err != nil {
		return nil, nil, eris.Wrap(err, "mark planning")
	}

	candidates, err := e.Source.POIs(ctx, cons.Destination)
	if err != nil {
		_ = e.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
		return nil, nil, eris.Wrapf(err, "fetch candidates for %s", cons.Destination)
	}

	cal, err := e.Source.Calendar(ctx, cons.Destination)
	if err != nil {
		// Planning proceeds without crowd context rather than failing the run.
		zap.L().Warn("calendar unavailable",
			zap.String("destination", cons.Destination),
			zap.Error(err),
		)
		cal = nil
	}

	outcome := e.Planner.Plan(candidates, cons, cal)
	if err := e.Store.SaveItinerary(ctx, run.ID, outcome.Status, outcome.Itinerary); err != nil {
		return nil, nil, eris.Wrap(err, "save itinerary")
	}

	run.Status = outcome.Status
	run.Itinerary = outcome.Itinerary
	zap.L().Info("planning run finished",
		zap.String("run_id", run.ID),
		zap.String("destination", cons.Destination),
		zap.String("status", string(outcome.Status)),
		zap.Int("repair_attempts", outcome.RepairAttempts),
	)
	return run, &outcome, nil
}
