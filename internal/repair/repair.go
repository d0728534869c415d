// Package repair applies targeted fixes to a validated itinerary. Every fix
// works on a clone; the input itinerary is never mutated. One Repair call is
// a single pass over the reported issues — the planner owns the
// validate/repair loop and its attempt bound.
package repair

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/cluster"
	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/route"
	"github.com/sells-group/trip-planner/internal/routing"
	"github.com/sells-group/trip-planner/internal/schedule"
	"github.com/sells-group/trip-planner/internal/validate"
)

const (
	// bufferPadMin is added to every stop's buffer when no backup is
	// available to swap in.
	bufferPadMin = 5

	// bufferCeilingMin bounds how far padding can widen a buffer.
	bufferCeilingMin = 45
)

// Engine re-flows days through the scheduler after each structural fix.
type Engine struct {
	Provider routing.Provider
	Clusters cluster.Map
	Sched    schedule.Config
}

// Result is the outcome of one repair pass.
type Result struct {
	Itinerary model.Itinerary
	Actions   []string
	Remaining []model.ValidationIssue
	Changed   bool
}

// Repair fixes the reported issues on a clone of the itinerary, then dedups,
// recomputes totals, and re-validates once. A clean input comes back
// unchanged.
func (e *Engine) Repair(it model.Itinerary, issues []model.ValidationIssue, ctx validate.Context) Result {
	out := it.Clone()
	var actions []string

	actions = append(actions, e.dedupAcrossDays(&out)...)

	for _, issue := range issues {
		switch issue.Code {
		case model.IssueTimeConflict, model.IssueBacktracking:
			actions = append(actions, e.reorderDay(&out, issue.Day)...)
		case model.IssueDayOverload, model.IssuePaceOverload:
			actions = append(actions, e.removeLongest(&out, issue.Day)...)
		case model.IssueOverBudget:
			actions = append(actions, e.trimToBudget(&out, ctx.Constraints.BudgetLimit())...)
		case model.IssueHoursViolation:
			actions = append(actions, e.swapOrPad(&out, issue.Day, hoursOffender)...)
		case model.IssueReservationRisk:
			actions = append(actions, e.swapOrPad(&out, issue.Day, reservationOffender)...)
		}
	}

	// Fixes can re-introduce duplicates when backups are promoted.
	actions = append(actions, e.dedupAcrossDays(&out)...)

	total := 0.0
	for _, day := range out.Days {
		total += day.EstimatedCost
	}
	out.TotalCost = total
	out.RepairLog = append(out.RepairLog, actions...)

	remaining := validate.Evaluate(out, ctx)
	if len(actions) > 0 {
		zap.L().Info("repair: pass complete",
			zap.Int("actions", len(actions)),
			zap.Int("remaining_issues", len(remaining)))
	}
	return Result{
		Itinerary: out,
		Actions:   actions,
		Remaining: remaining,
		Changed:   len(actions) > 0,
	}
}

// dedupAcrossDays keeps the first occurrence of every POI and removes later
// ones, promoting a backup into the gap when one is free.
func (e *Engine) dedupAcrossDays(it *model.Itinerary) []string {
	seen := make(map[string]bool)
	var actions []string
	for di := range it.Days {
		day := &it.Days[di]
		var removed []string
		var keep []model.POI
		for _, item := range day.Schedule {
			if seen[item.POI.ID] {
				removed = append(removed, item.POI.Name)
				continue
			}
			seen[item.POI.ID] = true
			keep = append(keep, item.POI)
		}
		if len(removed) == 0 {
			continue
		}
		if promo, ok := e.freeBackup(*day, seen); ok {
			seen[promo.ID] = true
			keep = append(keep, promo)
			actions = append(actions, fmt.Sprintf("day%d:promote_backup:%s", day.Day, promo.Name))
		}
		e.reflow(day, keep)
		for _, name := range removed {
			actions = append(actions, fmt.Sprintf("day%d:dedup:%s", day.Day, name))
		}
	}
	return actions
}

// reorderDay re-routes the day's stops and rebuilds it.
func (e *Engine) reorderDay(it *model.Itinerary, dayNum int) []string {
	day := findDay(it, dayNum)
	if day == nil || len(day.Schedule) < 2 {
		return nil
	}
	pois := make([]model.POI, 0, len(day.Schedule))
	for _, item := range day.Schedule {
		pois = append(pois, item.POI)
	}
	ordered := route.Order(pois, cluster.Distance, nil)
	e.reflow(day, ordered)
	return []string{fmt.Sprintf("day%d:reorder", day.Day)}
}

// removeLongest drops the stop with the longest stay and rebuilds the day.
func (e *Engine) removeLongest(it *model.Itinerary, dayNum int) []string {
	day := findDay(it, dayNum)
	if day == nil || len(day.Schedule) == 0 {
		return nil
	}
	victim := 0
	for i, item := range day.Schedule {
		if item.StayMin() > day.Schedule[victim].StayMin() {
			victim = i
		}
	}
	name := day.Schedule[victim].POI.Name
	keep := make([]model.POI, 0, len(day.Schedule)-1)
	for i, item := range day.Schedule {
		if i != victim {
			keep = append(keep, item.POI)
		}
	}
	e.reflow(day, keep)
	return []string{fmt.Sprintf("day%d:remove_longest:%s", day.Day, name)}
}

// trimToBudget removes the costliest stop across all days until the trip
// fits the limit, bounded at two removals per day.
func (e *Engine) trimToBudget(it *model.Itinerary, limit float64) []string {
	if limit <= 0 {
		return nil
	}
	var actions []string
	maxRemovals := 2 * len(it.Days)
	for len(actions) < maxRemovals {
		total := 0.0
		for _, day := range it.Days {
			total += day.EstimatedCost
		}
		if total <= limit {
			break
		}

		bestDay, bestItem := -1, -1
		bestPrice := 0.0
		for di, day := range it.Days {
			for ii, item := range day.Schedule {
				if item.POI.TicketPrice > bestPrice {
					bestDay, bestItem, bestPrice = di, ii, item.POI.TicketPrice
				}
			}
		}
		if bestDay < 0 {
			break // nothing left that costs anything
		}

		day := &it.Days[bestDay]
		name := day.Schedule[bestItem].POI.Name
		keep := make([]model.POI, 0, len(day.Schedule)-1)
		for i, item := range day.Schedule {
			if i != bestItem {
				keep = append(keep, item.POI)
			}
		}
		e.reflow(day, keep)
		actions = append(actions, fmt.Sprintf("day%d:remove_costliest:%s", day.Day, name))
	}
	return actions
}

// offenderFunc picks the index of the item a fix should target, or -1.
type offenderFunc func(day model.ItineraryDay) int

func hoursOffender(day model.ItineraryDay) int {
	for i, item := range day.Schedule {
		openMin, closeMin, ok := schedule.ParseOpenHours(item.POI.OpenHours)
		if !ok {
			continue
		}
		if item.StartMin < openMin || item.EndMin > closeMin {
			return i
		}
	}
	return -1
}

func reservationOffender(day model.ItineraryDay) int {
	for i, item := range day.Schedule {
		if item.POI.ReservationRequired {
			return i
		}
	}
	return -1
}

// swapOrPad replaces the offending stop with a free backup, or pads every
// buffer when no backup is available.
func (e *Engine) swapOrPad(it *model.Itinerary, dayNum int, pick offenderFunc) []string {
	day := findDay(it, dayNum)
	if day == nil {
		return nil
	}
	victim := pick(*day)
	if victim < 0 {
		return nil
	}

	used := make(map[string]bool)
	for _, d := range it.Days {
		for _, item := range d.Schedule {
			used[item.POI.ID] = true
		}
	}
	if promo, ok := e.freeBackup(*day, used); ok {
		name := day.Schedule[victim].POI.Name
		keep := make([]model.POI, 0, len(day.Schedule))
		for i, item := range day.Schedule {
			if i == victim {
				keep = append(keep, promo)
				continue
			}
			keep = append(keep, item.POI)
		}
		e.reflow(day, keep)
		return []string{fmt.Sprintf("day%d:swap_backup:%s->%s", day.Day, name, promo.Name)}
	}

	padBuffers(day, e.Sched)
	return []string{fmt.Sprintf("day%d:pad_buffers", day.Day)}
}

// padBuffers widens every buffer by bufferPadMin up to the ceiling and
// shifts later stops accordingly, dropping any stop pushed past end of day.
func padBuffers(day *model.ItineraryDay, cfg schedule.Config) {
	endHour := cfg.DayEndHour
	if endHour == 0 {
		endHour = schedule.DefaultDayEndHour
	}

	clock := schedule.DayStartMin
	var kept []model.ScheduleItem
	for _, item := range day.Schedule {
		if item.BufferMin+bufferPadMin <= bufferCeilingMin {
			item.BufferMin += bufferPadMin
		}
		stay := item.StayMin()
		arrival := clock + item.TravelMin
		if arrival < item.StartMin {
			arrival = item.StartMin // never start earlier than first planned
		}
		end := arrival + stay
		if end > endHour*60 {
			continue
		}
		item.StartMin, item.EndMin = arrival, end
		item.Start, item.End = schedule.Clock(arrival), schedule.Clock(end)
		clock = end + item.BufferMin
		kept = append(kept, item)
	}
	day.Schedule = kept
}

// freeBackup returns the day's first backup POI not already scheduled.
func (e *Engine) freeBackup(day model.ItineraryDay, used map[string]bool) (model.POI, bool) {
	for _, b := range day.Backups {
		if !used[b.POI.ID] {
			return b.POI, true
		}
	}
	return model.POI{}, false
}

// reflow rebuilds a day from an ordered POI list, keeping its backups as
// swap candidates.
func (e *Engine) reflow(day *model.ItineraryDay, pois []model.POI) {
	var unused []model.POI
	for _, b := range day.Backups {
		unused = append(unused, b.POI)
	}
	rebuilt := schedule.BuildDay(schedule.Input{
		Day:      day.Day,
		Date:     day.Date,
		POIs:     pois,
		Unused:   unused,
		Clusters: e.Clusters,
		Provider: e.Provider,
	}, e.Sched)
	*day = rebuilt
}

// findDay resolves an issue's day number to the itinerary entry.
func findDay(it *model.Itinerary, dayNum int) *model.ItineraryDay {
	for i := range it.Days {
		if it.Days[i].Day == dayNum {
			return &it.Days[i]
		}
	}
	return nil
}
