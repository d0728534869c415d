// Package budget resolves ticket prices with provenance, aggregates the trip
// budget breakdown, and scores how much of the final plan rests on verified
// facts versus guesses.
package budget

import (
	"fmt"
	"sort"

	"github.com/sells-group/trip-planner/internal/model"
)

// FieldSource classifies one critical fact field. A fallback label always
// wins so tool failures stay visible; a missing or placeholder value without
// a label is unknown.
func FieldSource(p model.POI, field string) model.FactSource {
	declared := p.FactSourceFor(field)
	if declared == model.FactFallback {
		return model.FactFallback
	}
	if !fieldHasValue(p, field) {
		return model.FactUnknown
	}
	return declared
}

func fieldHasValue(p model.POI, field string) bool {
	switch field {
	case model.FactFieldTicketPrice:
		return p.TicketPrice > 0
	case model.FactFieldReservation:
		return p.ReservationRequired
	case model.FactFieldOpenHours:
		return p.OpenHours != ""
	case model.FactFieldClosedDays:
		return len(p.ClosedWeekdays) > 0
	}
	return false
}

// VerifiedFactRatio is the fraction of critical fact fields across the POIs
// classified verified or curated. An empty input scores zero.
func VerifiedFactRatio(pois []model.POI) float64 {
	if len(pois) == 0 {
		return 0
	}
	total := len(pois) * len(model.CriticalFactFields)
	trusted := 0
	for _, p := range pois {
		for _, field := range model.CriticalFactFields {
			switch FieldSource(p, field) {
			case model.FactVerified, model.FactCurated:
				trusted++
			}
		}
	}
	return float64(trusted) / float64(total)
}

// UnknownFields lists every "name/field" pair whose fact source resolves to
// unknown, sorted for stable output.
func UnknownFields(pois []model.POI) []string {
	var out []string
	for _, p := range pois {
		for _, field := range model.CriticalFactFields {
			if FieldSource(p, field) == model.FactUnknown {
				out = append(out, fmt.Sprintf("%s/%s", p.Name, field))
			}
		}
	}
	sort.Strings(out)
	return out
}

// SanitizeFacts zeroes every hard fact the source system explicitly labeled
// unknown, so a fabricated value never survives into a plan. It returns a
// clone and the names of the fields it cleared.
func SanitizeFacts(p model.POI) (model.POI, []string) {
	out := p.Clone()
	var cleared []string
	for _, field := range model.CriticalFactFields {
		if p.FactSourceFor(field) != model.FactUnknown || p.FactSources == nil {
			continue
		}
		if _, declared := p.FactSources[field]; !declared {
			continue // undeclared fields are classified, not cleared
		}
		switch field {
		case model.FactFieldTicketPrice:
			if out.TicketPrice != 0 {
				out.TicketPrice = 0
				cleared = append(cleared, field)
			}
		case model.FactFieldReservation:
			if out.ReservationRequired {
				out.ReservationRequired = false
				cleared = append(cleared, field)
			}
		case model.FactFieldOpenHours:
			if out.OpenHours != "" {
				out.OpenHours = ""
				cleared = append(cleared, field)
			}
		case model.FactFieldClosedDays:
			if len(out.ClosedWeekdays) > 0 {
				out.ClosedWeekdays = nil
				cleared = append(cleared, field)
			}
		}
	}
	return out, cleared
}
