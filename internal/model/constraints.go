package model

import "time"

// Pace controls how many stops a day carries.
type Pace string

const (
	PaceRelaxed   Pace = "relaxed"
	PaceModerate  Pace = "moderate"
	PaceIntensive Pace = "intensive"
)

// POIsPerDay returns the default stop count for the pace.
func (p Pace) POIsPerDay() int {
	switch p {
	case PaceRelaxed:
		return 2
	case PaceIntensive:
		return 4
	default:
		return 3
	}
}

// TransportMode is the traveler's primary way of moving between stops.
type TransportMode string

const (
	TransportWalk    TransportMode = "walk"
	TransportTransit TransportMode = "transit"
	TransportCar     TransportMode = "car"
	TransportBike    TransportMode = "bike"
)

// TripConstraints carries everything the traveler told us: destination,
// dates, budget, movement, pace, and hard preference lists. Validation tags
// are enforced at the request boundary, never inside the engine.
type TripConstraints struct {
	Destination  string        `json:"destination" validate:"required"`
	Days         int           `json:"days" validate:"required,min=1,max=14"`
	StartDate    time.Time     `json:"start_date"`
	Budget       float64       `json:"budget" validate:"min=0"`
	BudgetPerDay bool          `json:"budget_per_day,omitempty"`
	Transport    TransportMode `json:"transport,omitempty" validate:"omitempty,oneof=walk transit car bike"`
	Pace         Pace          `json:"pace,omitempty" validate:"omitempty,oneof=relaxed moderate intensive"`
	Travelers    int           `json:"travelers,omitempty" validate:"omitempty,min=1"`
	TravelerType string        `json:"traveler_type,omitempty"`
	MustVisit    []string      `json:"must_visit,omitempty"`
	Avoid        []string      `json:"avoid,omitempty"`
	FreeOnly     bool          `json:"free_only,omitempty"`
	Themes       []string      `json:"themes,omitempty"`
	FoodPrefs    []string      `json:"food_prefs,omitempty"`
}

// BudgetLimit resolves the total budget for the whole trip. A per-day budget
// is multiplied out; zero means no limit was given.
func (c TripConstraints) BudgetLimit() float64 {
	if c.Budget <= 0 {
		return 0
	}
	if c.BudgetPerDay {
		return c.Budget * float64(c.Days)
	}
	return c.Budget
}

// TravelerCount returns the traveler count, defaulting to one.
func (c TripConstraints) TravelerCount() int {
	if c.Travelers < 1 {
		return 1
	}
	return c.Travelers
}

// EffectivePace returns the pace, defaulting to moderate.
func (c TripConstraints) EffectivePace() Pace {
	switch c.Pace {
	case PaceRelaxed, PaceModerate, PaceIntensive:
		return c.Pace
	default:
		return PaceModerate
	}
}
