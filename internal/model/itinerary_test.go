package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItineraryClone_DeepCopy(t *testing.T) {
	it := Itinerary{
		City: "Paris",
		Days: []ItineraryDay{
			{
				Day: 1,
				Schedule: []ScheduleItem{
					{POI: POI{ID: "a"}, Notes: []string{"cluster:0"}},
				},
			},
		},
		Assumptions: []string{"original"},
		Budget: BudgetReport{
			SourceByComponent: map[string]FactSource{"tickets": FactVerified},
		},
	}

	c := it.Clone()
	c.Days[0].Schedule[0].POI.ID = "b"
	c.Days[0].Schedule[0].Notes[0] = "cluster:9"
	c.Assumptions[0] = "mutated"
	c.Budget.SourceByComponent["tickets"] = FactFallback

	assert.Equal(t, "a", it.Days[0].Schedule[0].POI.ID)
	assert.Equal(t, "cluster:0", it.Days[0].Schedule[0].Notes[0])
	assert.Equal(t, "original", it.Assumptions[0])
	assert.Equal(t, FactVerified, it.Budget.SourceByComponent["tickets"])
}

func TestBudgetLimit_PerDay(t *testing.T) {
	c := TripConstraints{Days: 3, Budget: 100, BudgetPerDay: true}
	assert.Equal(t, 300.0, c.BudgetLimit())

	c.BudgetPerDay = false
	assert.Equal(t, 100.0, c.BudgetLimit())

	c.Budget = 0
	assert.Equal(t, 0.0, c.BudgetLimit())
}

func TestHasHighSeverity(t *testing.T) {
	assert.False(t, HasHighSeverity(nil))
	assert.False(t, HasHighSeverity([]ValidationIssue{{Severity: SeverityLow}}))
	assert.True(t, HasHighSeverity([]ValidationIssue{
		{Severity: SeverityLow},
		{Severity: SeverityHigh},
	}))
}

func TestPacePOIsPerDay(t *testing.T) {
	assert.Equal(t, 2, PaceRelaxed.POIsPerDay())
	assert.Equal(t, 3, PaceModerate.POIsPerDay())
	assert.Equal(t, 4, PaceIntensive.POIsPerDay())
	assert.Equal(t, 3, Pace("").POIsPerDay())
}
