package model

import "time"

// RunStatus represents the current state of a planning run.
type RunStatus string

const (
	RunStatusQueued       RunStatus = "queued"
	RunStatusPlanning     RunStatus = "planning"
	RunStatusRepairing    RunStatus = "repairing"
	RunStatusComplete     RunStatus = "complete"
	RunStatusDegraded     RunStatus = "degraded"
	RunStatusNoCandidates RunStatus = "no_candidates"
	RunStatusFailed       RunStatus = "failed"
)

// PlanRun is one persisted planning invocation: the request that started it
// and, once finished, the itinerary it produced.
type PlanRun struct {
	ID          string          `json:"id"`
	Constraints TripConstraints `json:"constraints"`
	Status      RunStatus       `json:"status"`
	Itinerary   *Itinerary      `json:"itinerary,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
