package model

import "time"

// TimeSlot buckets a schedule item into the part of day it occupies.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
)

// RouteSource identifies which travel-time computation path produced a number.
type RouteSource string

const (
	RouteSourceReal            RouteSource = "real"
	RouteSourceFixture         RouteSource = "fixture"
	RouteSourceFallbackFixture RouteSource = "fallback_fixture"
)

// DegradeLevel summarizes how much the final plan relied on unverified or
// fallback data. L0 is fully verified/real, L3 errored/unresolved.
type DegradeLevel string

const (
	DegradeL0 DegradeLevel = "L0"
	DegradeL1 DegradeLevel = "L1"
	DegradeL2 DegradeLevel = "L2"
	DegradeL3 DegradeLevel = "L3"
)

// ScheduleItem is one stop in a day's plan. StartMin/EndMin are minutes from
// midnight and are the fields the engine computes with; Start/End are the
// rendered clock times the presentation layer shows.
type ScheduleItem struct {
	POI       POI      `json:"poi"`
	Slot      TimeSlot `json:"slot"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	StartMin  int      `json:"start_min"`
	EndMin    int      `json:"end_min"`
	TravelMin int      `json:"travel_min"`
	BufferMin int      `json:"buffer_min"`
	Notes     []string `json:"notes,omitempty"`
	IsBackup  bool     `json:"is_backup,omitempty"`
}

// Clone returns a deep copy of the item.
func (s ScheduleItem) Clone() ScheduleItem {
	out := s
	out.POI = s.POI.Clone()
	if s.Notes != nil {
		out.Notes = append([]string(nil), s.Notes...)
	}
	return out
}

// StayMin returns the minutes spent at the stop itself, excluding travel
// and buffer.
func (s ScheduleItem) StayMin() int {
	return s.EndMin - s.StartMin
}

// MealWindow is a reserved meal break within a day.
type MealWindow struct {
	Name     string `json:"name"`
	Start    string `json:"start"`
	End      string `json:"end"`
	StartMin int    `json:"start_min"`
	EndMin   int    `json:"end_min"`
}

// ItineraryDay is one planned day: an ordered main schedule plus backups.
type ItineraryDay struct {
	Day            int            `json:"day"`
	Date           time.Time      `json:"date"`
	Schedule       []ScheduleItem `json:"schedule"`
	Backups        []ScheduleItem `json:"backups,omitempty"`
	Summary        string         `json:"summary,omitempty"`
	EstimatedCost  float64        `json:"estimated_cost"`
	TotalTravelMin int            `json:"total_travel_min"`
	Meals          []MealWindow   `json:"meals,omitempty"`
}

// Clone returns a deep copy of the day.
func (d ItineraryDay) Clone() ItineraryDay {
	out := d
	out.Schedule = make([]ScheduleItem, len(d.Schedule))
	for i, it := range d.Schedule {
		out.Schedule[i] = it.Clone()
	}
	out.Backups = make([]ScheduleItem, len(d.Backups))
	for i, it := range d.Backups {
		out.Backups[i] = it.Clone()
	}
	if d.Meals != nil {
		out.Meals = append([]MealWindow(nil), d.Meals...)
	}
	return out
}

// POIIDs returns the main-schedule POI ids in order.
func (d ItineraryDay) POIIDs() []string {
	ids := make([]string, 0, len(d.Schedule))
	for _, it := range d.Schedule {
		ids = append(ids, it.POI.ID)
	}
	return ids
}

// BudgetBreakdown splits the trip budget into its components.
type BudgetBreakdown struct {
	Tickets        float64 `json:"tickets"`
	LocalTransport float64 `json:"local_transport"`
	FoodMin        float64 `json:"food_min"`
}

// BudgetReport is the budget section of a final itinerary, with per-component
// provenance and confidence.
type BudgetReport struct {
	Total                 float64               `json:"total"`
	Breakdown             BudgetBreakdown       `json:"breakdown"`
	SourceByComponent     map[string]FactSource `json:"source_by_component,omitempty"`
	ConfidenceByComponent map[string]float64    `json:"confidence_by_component,omitempty"`
	Confidence            float64               `json:"confidence"`
	AsOf                  time.Time             `json:"as_of"`
	MinFeasible           float64               `json:"min_feasible"`
	Warning               string                `json:"warning,omitempty"`
}

// Itinerary is the engine's final product.
type Itinerary struct {
	City          string            `json:"city"`
	Days          []ItineraryDay    `json:"days"`
	TotalCost     float64           `json:"total_cost"`
	Budget        BudgetReport      `json:"budget"`
	Assumptions   []string          `json:"assumptions,omitempty"`
	Summary       string            `json:"summary,omitempty"`
	UnknownFields []string          `json:"unknown_fields,omitempty"`
	Confidence    float64           `json:"confidence"`
	Degrade       DegradeLevel      `json:"degrade"`
	Violations    []ValidationIssue `json:"violations,omitempty"`
	RepairLog     []string          `json:"repair_log,omitempty"`
}

// Clone returns a deep copy of the itinerary. Repair always works on a clone
// so a failed attempt never corrupts the prior state.
func (it Itinerary) Clone() Itinerary {
	out := it
	out.Days = make([]ItineraryDay, len(it.Days))
	for i, d := range it.Days {
		out.Days[i] = d.Clone()
	}
	if it.Assumptions != nil {
		out.Assumptions = append([]string(nil), it.Assumptions...)
	}
	if it.UnknownFields != nil {
		out.UnknownFields = append([]string(nil), it.UnknownFields...)
	}
	if it.Violations != nil {
		out.Violations = append([]ValidationIssue(nil), it.Violations...)
	}
	if it.RepairLog != nil {
		out.RepairLog = append([]string(nil), it.RepairLog...)
	}
	if it.Budget.SourceByComponent != nil {
		out.Budget.SourceByComponent = make(map[string]FactSource, len(it.Budget.SourceByComponent))
		for k, v := range it.Budget.SourceByComponent {
			out.Budget.SourceByComponent[k] = v
		}
	}
	if it.Budget.ConfidenceByComponent != nil {
		out.Budget.ConfidenceByComponent = make(map[string]float64, len(it.Budget.ConfidenceByComponent))
		for k, v := range it.Budget.ConfidenceByComponent {
			out.Budget.ConfidenceByComponent[k] = v
		}
	}
	return out
}
