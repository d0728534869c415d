// Package routing supplies travel times between POI pairs. A Provider
// answers with minutes, a confidence score, and the source of the number, so
// downstream confidence scoring can tell a real route from a fixture guess.
package routing

import (
	"time"

	"github.com/sells-group/trip-planner/internal/model"
)

// Query is one travel-time request between two POIs.
type Query struct {
	From      model.POI
	To        model.POI
	Mode      model.TransportMode
	Departure time.Time
}

// FallbackEvent records one degraded routing call.
type FallbackEvent struct {
	From   string              `json:"from"`
	To     string              `json:"to"`
	Mode   model.TransportMode `json:"mode"`
	Reason string              `json:"reason"`
}

// Diagnostics summarizes how often a provider had to degrade.
type Diagnostics struct {
	FallbackCount int             `json:"fallback_count"`
	Events        []FallbackEvent `json:"events,omitempty"`
}

// Provider is the routing capability the scheduler consumes.
type Provider interface {
	// TravelTime returns the travel minutes between the query's POIs.
	TravelTime(q Query) int
	// Confidence returns how trustworthy the travel time is, in [0,1].
	Confidence(q Query) float64
	// RouteSource reports which computation path produced the number.
	RouteSource(q Query) model.RouteSource
	// Diagnostics reports fallback events accumulated so far.
	Diagnostics() Diagnostics
}

// RouteTool is the injected external routing call the real provider wraps.
// Implementations own their own timeout and retry policy.
type RouteTool interface {
	Route(q Query) (minutes int, err error)
}

// leg is a resolved query: the cached unit both providers memoize.
type leg struct {
	minutes    int
	confidence float64
	source     model.RouteSource
}
