package validate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trip-planner/internal/cluster"
	"github.com/sells-group/trip-planner/internal/model"
)

func item(id, name string, startMin, endMin int) model.ScheduleItem {
	return model.ScheduleItem{
		POI:      model.POI{ID: id, Name: name},
		StartMin: startMin,
		EndMin:   endMin,
		Start:    clockFor(startMin),
		End:      clockFor(endMin),
	}
}

func clockFor(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func codesOf(issues []model.ValidationIssue) []model.IssueCode {
	var codes []model.IssueCode
	for _, is := range issues {
		codes = append(codes, is.Code)
	}
	return codes
}

func TestEvaluate_CleanItinerary(t *testing.T) {
	it := model.Itinerary{Days: []model.ItineraryDay{{
		Day: 1,
		Schedule: []model.ScheduleItem{
			item("a", "Louvre", 510, 630),    // 08:30-10:30
			item("b", "Orangerie", 660, 750), // 11:00-12:30
		},
	}}}

	issues := Evaluate(it, Context{Constraints: model.TripConstraints{Days: 1}})
	assert.Empty(t, issues)
}

func TestCheckTime_OverlapAndOverload(t *testing.T) {
	a := item("a", "Louvre", 510, 630)
	b := item("b", "Orsay", 600, 720) // starts 10:00, before a ends 10:30
	it := model.Itinerary{Days: []model.ItineraryDay{{Day: 1, Schedule: []model.ScheduleItem{a, b}}}}

	issues := checkTime(it, Context{})
	require.Len(t, issues, 1)
	assert.Equal(t, model.IssueTimeConflict, issues[0].Code)
	assert.Equal(t, model.SeverityHigh, issues[0].Severity)
	assert.Equal(t, 1, issues[0].Day)

	// Three 260-minute stays = 780 minutes, over the 720 default ceiling.
	long := model.Itinerary{Days: []model.ItineraryDay{{Day: 2, Schedule: []model.ScheduleItem{
		item("a", "A", 510, 770),
		item("b", "B", 770, 1030),
		item("c", "C", 1030, 1290),
	}}}}
	issues = checkTime(long, Context{})
	require.Len(t, issues, 1)
	assert.Equal(t, model.IssueDayOverload, issues[0].Code)
	assert.Equal(t, 2, issues[0].Day)
}

func TestCheckTime_PersonaCeiling(t *testing.T) {
	// 420 scheduled minutes fit the default but not a 360-minute persona day.
	it := model.Itinerary{Days: []model.ItineraryDay{{Day: 1, Schedule: []model.ScheduleItem{
		item("a", "A", 510, 720),
		item("b", "B", 720, 930),
	}}}}

	assert.Empty(t, checkTime(it, Context{}))

	issues := checkTime(it, Context{MaxDayMinutes: 360})
	require.Len(t, issues, 1)
	assert.Equal(t, model.IssueDayOverload, issues[0].Code)
}

func TestCheckBudget(t *testing.T) {
	it := model.Itinerary{Days: []model.ItineraryDay{
		{Day: 1, EstimatedCost: 80},
		{Day: 2, EstimatedCost: 70},
	}}

	// 150 total against a 100 limit.
	issues := checkBudget(it, Context{Constraints: model.TripConstraints{Budget: 100}})
	require.Len(t, issues, 1)
	assert.Equal(t, model.IssueOverBudget, issues[0].Code)
	assert.Equal(t, model.SeverityHigh, issues[0].Severity)
	assert.Zero(t, issues[0].Day, "budget issues are global, not tied to a day")

	// Per-day 100 over 2 days resolves to 200, which covers the trip.
	issues = checkBudget(it, Context{Constraints: model.TripConstraints{
		Budget: 100, BudgetPerDay: true, Days: 2,
	}})
	assert.Empty(t, issues)

	// No budget given means no limit.
	assert.Empty(t, checkBudget(it, Context{}))
}

func TestCheckIntensity(t *testing.T) {
	it := model.Itinerary{Days: []model.ItineraryDay{{Day: 1, Schedule: []model.ScheduleItem{
		item("a", "A", 510, 570),
		item("b", "B", 580, 640),
		item("c", "C", 650, 710),
	}}}}

	// Moderate allows 3; relaxed allows 2.
	assert.Empty(t, checkIntensity(it, Context{Constraints: model.TripConstraints{Pace: model.PaceModerate}}))

	issues := checkIntensity(it, Context{Constraints: model.TripConstraints{Pace: model.PaceRelaxed}})
	require.Len(t, issues, 1)
	assert.Equal(t, model.IssuePaceOverload, issues[0].Code)
	assert.Equal(t, model.SeverityMedium, issues[0].Severity)

	// A persona override tightens the cap below the pace.
	issues = checkIntensity(it, Context{
		Constraints:   model.TripConstraints{Pace: model.PaceIntensive},
		MaxPOIsPerDay: 2,
	})
	require.Len(t, issues, 1)
	assert.Equal(t, 1, issues[0].Day)
}

func TestCheckOpenHours(t *testing.T) {
	open := model.ScheduleItem{
		POI:      model.POI{ID: "a", Name: "Museum", OpenHours: "09:00-18:00"},
		StartMin: 540, EndMin: 660,
	}
	early := model.ScheduleItem{
		POI:      model.POI{ID: "b", Name: "Gallery", OpenHours: "10:00-17:00"},
		StartMin: 570, EndMin: 690, Start: "09:30", End: "11:30",
	}
	unparsed := model.ScheduleItem{
		POI:      model.POI{ID: "c", Name: "Park", OpenHours: "dawn to dusk"},
		StartMin: 300, EndMin: 360,
	}
	it := model.Itinerary{Days: []model.ItineraryDay{{
		Day: 1, Schedule: []model.ScheduleItem{open, early, unparsed},
	}}}

	issues := checkOpenHours(it, Context{})
	require.Len(t, issues, 1)
	assert.Equal(t, model.IssueHoursViolation, issues[0].Code)
	assert.Contains(t, issues[0].Message, "Gallery")
}

func TestCheckBacktracking(t *testing.T) {
	clusters := cluster.Map{"a": "c0", "b": "c1", "c": "c0", "d": "c1"}
	day := func(ids ...string) model.ItineraryDay {
		d := model.ItineraryDay{Day: 1}
		for i, id := range ids {
			d.Schedule = append(d.Schedule, item(id, id, 510+i*90, 570+i*90))
		}
		return d
	}

	// c0 -> c1 -> c0 ping-pongs.
	it := model.Itinerary{Days: []model.ItineraryDay{day("a", "b", "c")}}
	issues := checkBacktracking(it, Context{Clusters: clusters})
	require.Len(t, issues, 1)
	assert.Equal(t, model.IssueBacktracking, issues[0].Code)

	// A single switch with no return is fine.
	it = model.Itinerary{Days: []model.ItineraryDay{day("a", "c", "b")}}
	assert.Empty(t, checkBacktracking(it, Context{Clusters: clusters}))

	// Two stops can never backtrack.
	it = model.Itinerary{Days: []model.ItineraryDay{day("a", "b")}}
	assert.Empty(t, checkBacktracking(it, Context{Clusters: clusters}))
}

func TestCheckReservation(t *testing.T) {
	reminded := model.ScheduleItem{
		POI:   model.POI{ID: "a", Name: "Chez Table", ReservationRequired: true},
		Notes: []string{"reservation required, book ahead"},
	}
	bare := model.ScheduleItem{
		POI: model.POI{ID: "b", Name: "Sky Deck", ReservationRequired: true},
	}
	it := model.Itinerary{Days: []model.ItineraryDay{{
		Day: 1, Schedule: []model.ScheduleItem{reminded, bare},
	}}}

	issues := checkReservation(it, Context{})
	require.Len(t, issues, 1)
	assert.Equal(t, model.IssueReservationRisk, issues[0].Code)
	assert.Contains(t, issues[0].Message, "Sky Deck")
}

func TestEvaluate_OrderIsStable(t *testing.T) {
	// One day triggering a conflict, an overload, and a reservation risk:
	// codes must come back in checker order.
	it := model.Itinerary{Days: []model.ItineraryDay{{
		Day: 1,
		Schedule: []model.ScheduleItem{
			item("a", "A", 510, 770),
			{
				POI:      model.POI{ID: "b", Name: "B", ReservationRequired: true},
				StartMin: 700, EndMin: 960,
			},
			item("c", "C", 960, 1220),
		},
	}}}

	issues := Evaluate(it, Context{})
	codes := codesOf(issues)
	require.Contains(t, codes, model.IssueTimeConflict)
	require.Contains(t, codes, model.IssueDayOverload)
	require.Contains(t, codes, model.IssueReservationRisk)
	assert.Less(t,
		indexOf(codes, model.IssueTimeConflict),
		indexOf(codes, model.IssueReservationRisk))
}

func indexOf(codes []model.IssueCode, c model.IssueCode) int {
	for i, v := range codes {
		if v == c {
			return i
		}
	}
	return -1
}
