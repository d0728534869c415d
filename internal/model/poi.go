package model

import (
	"time"

	"github.com/twpayne/go-geom"
)

// FactSource labels the provenance of a critical POI fact.
type FactSource string

const (
	FactVerified  FactSource = "verified"
	FactCurated   FactSource = "curated"
	FactHeuristic FactSource = "heuristic"
	FactFallback  FactSource = "fallback"
	FactUnknown   FactSource = "unknown"
)

// ValidFactSource reports whether s is one of the closed fact-source labels.
func ValidFactSource(s FactSource) bool {
	switch s {
	case FactVerified, FactCurated, FactHeuristic, FactFallback, FactUnknown:
		return true
	}
	return false
}

// SemanticType classifies a POI as a visitable experience or supporting
// infrastructure (stations, parking, restrooms) that never belongs in a plan.
type SemanticType string

const (
	SemanticExperience     SemanticType = "experience"
	SemanticInfrastructure SemanticType = "infrastructure"
	SemanticUnknown        SemanticType = "unknown"
)

// CrowdLevel is a categorical estimate of expected visitor density.
type CrowdLevel string

const (
	CrowdNormal   CrowdLevel = "normal"
	CrowdHigh     CrowdLevel = "high"
	CrowdVeryHigh CrowdLevel = "very_high"
)

// Critical fact field names used as keys of POI.FactSources.
const (
	FactFieldTicketPrice = "ticket_price"
	FactFieldReservation = "reservation_required"
	FactFieldOpenHours   = "open_hours"
	FactFieldClosedDays  = "closed_weekdays"
)

// CriticalFactFields lists the fact fields that feed the trust model, in a
// stable order.
var CriticalFactFields = []string{
	FactFieldTicketPrice,
	FactFieldReservation,
	FactFieldOpenHours,
	FactFieldClosedDays,
}

// POI is a single visitable point of interest. The engine never mutates a
// POI it was handed; annotation steps work on a Clone.
type POI struct {
	ID                  string                `json:"id"`
	Name                string                `json:"name"`
	City                string                `json:"city"`
	Lat                 float64               `json:"lat"`
	Lng                 float64               `json:"lng"`
	Category            string                `json:"category,omitempty"`
	Description         string                `json:"description,omitempty"`
	Themes              []string              `json:"themes,omitempty"`
	DurationMin         int                   `json:"duration_min,omitempty"`
	TicketPrice         float64               `json:"ticket_price"`
	Indoor              bool                  `json:"indoor,omitempty"`
	OpenHours           string                `json:"open_hours,omitempty"`
	ReservationRequired bool                  `json:"reservation_required,omitempty"`
	ReservationLeadDays int                   `json:"reservation_lead_days,omitempty"`
	ClosedWeekdays      []time.Weekday        `json:"closed_weekdays,omitempty"`
	ClusterHint         string                `json:"cluster_hint,omitempty"`
	Semantic            SemanticType          `json:"semantic,omitempty"`
	SemanticConfidence  float64               `json:"semantic_confidence,omitempty"`
	FactSources         map[string]FactSource `json:"fact_sources,omitempty"`
}

// Coord returns the POI position as a go-geom coordinate (lng, lat order).
func (p POI) Coord() geom.Coord {
	return geom.Coord{p.Lng, p.Lat}
}

// Clone returns a deep copy of the POI. Slices and the fact-source map are
// copied so annotating the clone never aliases the original.
func (p POI) Clone() POI {
	out := p
	if p.Themes != nil {
		out.Themes = append([]string(nil), p.Themes...)
	}
	if p.ClosedWeekdays != nil {
		out.ClosedWeekdays = append([]time.Weekday(nil), p.ClosedWeekdays...)
	}
	if p.FactSources != nil {
		out.FactSources = make(map[string]FactSource, len(p.FactSources))
		for k, v := range p.FactSources {
			out.FactSources[k] = v
		}
	}
	return out
}

// FactSourceFor returns the provenance label recorded for a critical fact
// field, or FactUnknown when the field carries no hint.
func (p POI) FactSourceFor(field string) FactSource {
	if p.FactSources == nil {
		return FactUnknown
	}
	src, ok := p.FactSources[field]
	if !ok || !ValidFactSource(src) {
		return FactUnknown
	}
	return src
}

// ClosedOn reports whether the POI is closed on the given weekday.
func (p POI) ClosedOn(day time.Weekday) bool {
	for _, d := range p.ClosedWeekdays {
		if d == day {
			return true
		}
	}
	return false
}
