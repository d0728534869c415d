package store

import (
	"context"

	"github.com/sells-group/trip-planner/internal/model"
)

// RunFilter specifies criteria for listing planning runs.
type RunFilter struct {
	Status      model.RunStatus `json:"status,omitempty"`
	Destination string          `json:"destination,omitempty"`
	Limit       int             `json:"limit,omitempty"`
	Offset      int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for planning runs.
type Store interface {
	CreateRun(ctx context.Context, constraints model.TripConstraints) (*model.PlanRun, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	SaveItinerary(ctx context.Context, runID string, status model.RunStatus, it *model.Itinerary) error
	GetRun(ctx context.Context, runID string) (*model.PlanRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.PlanRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
