// Package validate evaluates a finished itinerary against the traveler's
// constraints. It is a fixed, ordered list of independent checkers whose
// findings are concatenated; the engine itself holds no state.
package validate

import (
	"fmt"
	"strings"

	"github.com/sells-group/trip-planner/internal/cluster"
	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/schedule"
)

// Context carries the constraint inputs the checkers need beyond the
// itinerary itself.
type Context struct {
	Constraints   model.TripConstraints
	Clusters      cluster.Map
	MaxDayMinutes int // persona ceiling; 0 means the scheduler default
	MaxPOIsPerDay int // persona override; 0 means the pace cap
	MaxClusters   int // 0 means the default cap
}

// Checker inspects one aspect of the itinerary.
type Checker func(it model.Itinerary, ctx Context) []model.ValidationIssue

// checkers run in a fixed order; output order is therefore stable.
var checkers = []Checker{
	checkTime,
	checkBudget,
	checkIntensity,
	checkOpenHours,
	checkBacktracking,
	checkReservation,
}

// Evaluate runs every checker and concatenates the findings.
func Evaluate(it model.Itinerary, ctx Context) []model.ValidationIssue {
	var issues []model.ValidationIssue
	for _, check := range checkers {
		issues = append(issues, check(it, ctx)...)
	}
	return issues
}

// checkTime flags overlapping consecutive stops and days that blow the
// stay+travel+buffer ceiling.
func checkTime(it model.Itinerary, ctx Context) []model.ValidationIssue {
	ceiling := ctx.MaxDayMinutes
	if ceiling == 0 {
		ceiling = schedule.DefaultDayMaxMinutes
	}

	var issues []model.ValidationIssue
	for _, day := range it.Days {
		for i := 1; i < len(day.Schedule); i++ {
			prev, cur := day.Schedule[i-1], day.Schedule[i]
			if cur.StartMin < prev.EndMin {
				issues = append(issues, model.ValidationIssue{
					Code:     model.IssueTimeConflict,
					Severity: model.SeverityHigh,
					Message: fmt.Sprintf("day %d: %q starts at %s before %q ends at %s",
						day.Day, cur.POI.Name, cur.Start, prev.POI.Name, prev.End),
					Day:         day.Day,
					Suggestions: []string{"reorder the day's stops"},
				})
			}
		}

		total := 0
		for _, item := range day.Schedule {
			total += item.StayMin() + item.TravelMin + item.BufferMin
		}
		if total > ceiling {
			issues = append(issues, model.ValidationIssue{
				Code:     model.IssueDayOverload,
				Severity: model.SeverityHigh,
				Message: fmt.Sprintf("day %d: %d scheduled minutes exceed the %d-minute ceiling",
					day.Day, total, ceiling),
				Day:         day.Day,
				Suggestions: []string{"drop the longest stop"},
			})
		}
	}
	return issues
}

// checkBudget compares the summed day costs against the resolved budget.
func checkBudget(it model.Itinerary, ctx Context) []model.ValidationIssue {
	limit := ctx.Constraints.BudgetLimit()
	if limit <= 0 {
		return nil
	}
	total := 0.0
	for _, day := range it.Days {
		total += day.EstimatedCost
	}
	if total <= limit {
		return nil
	}
	return []model.ValidationIssue{{
		Code:     model.IssueOverBudget,
		Severity: model.SeverityHigh,
		Message: fmt.Sprintf("estimated cost %.2f exceeds the %.2f budget",
			total, limit),
		Suggestions: []string{"remove the most expensive stop", "prefer free attractions"},
	}}
}

// checkIntensity flags days carrying more stops than the pace (or persona)
// allows.
func checkIntensity(it model.Itinerary, ctx Context) []model.ValidationIssue {
	maxStops := ctx.Constraints.EffectivePace().POIsPerDay()
	if ctx.MaxPOIsPerDay > 0 && ctx.MaxPOIsPerDay < maxStops {
		maxStops = ctx.MaxPOIsPerDay
	}

	var issues []model.ValidationIssue
	for _, day := range it.Days {
		if len(day.Schedule) > maxStops {
			issues = append(issues, model.ValidationIssue{
				Code:     model.IssuePaceOverload,
				Severity: model.SeverityMedium,
				Message: fmt.Sprintf("day %d has %d stops but the pace allows %d",
					day.Day, len(day.Schedule), maxStops),
				Day:         day.Day,
				Suggestions: []string{"move a stop to the backups"},
			})
		}
	}
	return issues
}

// checkOpenHours flags scheduled windows that fall outside parsed opening
// hours.
func checkOpenHours(it model.Itinerary, _ Context) []model.ValidationIssue {
	var issues []model.ValidationIssue
	for _, day := range it.Days {
		for _, item := range day.Schedule {
			openMin, closeMin, ok := schedule.ParseOpenHours(item.POI.OpenHours)
			if !ok {
				continue
			}
			if item.StartMin < openMin || item.EndMin > closeMin {
				issues = append(issues, model.ValidationIssue{
					Code:     model.IssueHoursViolation,
					Severity: model.SeverityHigh,
					Message: fmt.Sprintf("day %d: %q scheduled %s–%s outside opening hours %s",
						day.Day, item.POI.Name, item.Start, item.End, item.POI.OpenHours),
					Day:         day.Day,
					Suggestions: []string{"swap in a backup stop"},
				})
			}
		}
	}
	return issues
}

// checkBacktracking flags days that zig-zag between clusters: two or more
// switches, or any return to an earlier cluster, across a day with at least
// three stops.
func checkBacktracking(it model.Itinerary, ctx Context) []model.ValidationIssue {
	var issues []model.ValidationIssue
	for _, day := range it.Days {
		if len(day.Schedule) < 3 {
			continue
		}
		var pois []model.POI
		for _, item := range day.Schedule {
			pois = append(pois, item.POI)
		}
		switches := cluster.Switches(pois, ctx.Clusters)
		if switches >= 2 || pingPong(pois, ctx.Clusters) {
			issues = append(issues, model.ValidationIssue{
				Code:     model.IssueBacktracking,
				Severity: model.SeverityMedium,
				Message: fmt.Sprintf("day %d crosses between neighborhoods %d times",
					day.Day, switches),
				Day:         day.Day,
				Suggestions: []string{"re-order the day's route"},
			})
		}
	}
	return issues
}

// pingPong reports whether the cluster sequence returns to a cluster it
// already left.
func pingPong(pois []model.POI, clusters cluster.Map) bool {
	seen := make(map[string]bool)
	last := ""
	for _, p := range pois {
		c := clusters.Of(p)
		if c == last {
			continue
		}
		if seen[c] {
			return true
		}
		seen[c] = true
		last = c
	}
	return false
}

// checkReservation flags reservation-required stops whose notes carry no
// reservation reminder.
func checkReservation(it model.Itinerary, _ Context) []model.ValidationIssue {
	var issues []model.ValidationIssue
	for _, day := range it.Days {
		for _, item := range day.Schedule {
			if !item.POI.ReservationRequired {
				continue
			}
			reminded := false
			for _, note := range item.Notes {
				if strings.Contains(note, "reservation") {
					reminded = true
					break
				}
			}
			if !reminded {
				issues = append(issues, model.ValidationIssue{
					Code:     model.IssueReservationRisk,
					Severity: model.SeverityMedium,
					Message: fmt.Sprintf("day %d: %q needs a reservation but no reminder is attached",
						day.Day, item.POI.Name),
					Day:         day.Day,
					Suggestions: []string{"add a reservation reminder", "swap in a backup stop"},
				})
			}
		}
	}
	return issues
}
