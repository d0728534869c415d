package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/trip-planner/internal/model"
)

func sampleItinerary() *model.Itinerary {
	return &model.Itinerary{
		City: "paris",
		Days: []model.ItineraryDay{
			{
				Day: 1,
				Schedule: []model.ScheduleItem{
					{
						POI:      model.POI{ID: "p1", Name: "Louvre", TicketPrice: 22},
						Slot:     model.SlotMorning,
						Start:    "08:30",
						End:      "10:30",
						StartMin: 510,
						EndMin:   630,
						Notes:    []string{"reservation recommended"},
					},
					{
						POI:       model.POI{ID: "p2", Name: "Orsay", TicketPrice: 16},
						Slot:      model.SlotAfternoon,
						Start:     "13:00",
						End:       "14:30",
						StartMin:  780,
						EndMin:    870,
						TravelMin: 18,
						BufferMin: 10,
					},
				},
				Backups: []model.ScheduleItem{
					{POI: model.POI{ID: "p3", Name: "Cluny"}, IsBackup: true},
				},
				Meals: []model.MealWindow{
					{Name: "lunch", Start: "12:00", End: "13:00", StartMin: 720, EndMin: 780},
				},
				Summary:       "Day 1: 2 stops, 18 min of travel",
				EstimatedCost: 38,
			},
		},
		TotalCost: 38,
		Budget: model.BudgetReport{
			Total:       86.8,
			Breakdown:   model.BudgetBreakdown{Tickets: 38, LocalTransport: 8.8, FoodMin: 40},
			MinFeasible: 86.8,
			Warning:     "budget limit 50.00 is below the minimum feasible 86.80",
		},
		Assumptions: []string{"cleared unverifiable facts on \"Cluny\": OpenHours"},
		Confidence:  0.82,
		Degrade:     model.DegradeL1,
	}
}

func TestWriteItinerary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trip.xlsx")
	require.NoError(t, WriteItinerary(sampleItinerary(), path))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2) // one day + budget

	day := f.Sheet["Day 1"]
	require.NotNil(t, day)
	// header + 2 stops + 1 meal + 1 backup + summary
	assert.Len(t, day.Rows, 6)
	assert.Equal(t, "Start", day.Rows[0].Cells[0].Value)
	assert.Equal(t, "Louvre", day.Rows[1].Cells[2].Value)
	assert.Equal(t, "reservation recommended", day.Rows[1].Cells[7].Value)
	assert.Equal(t, "Orsay", day.Rows[2].Cells[2].Value)
	assert.Equal(t, "Lunch", day.Rows[3].Cells[2].Value)
	assert.Equal(t, "Cluny (backup)", day.Rows[4].Cells[2].Value)

	budget := f.Sheet["Budget"]
	require.NotNil(t, budget)
	assert.Equal(t, "Total", budget.Rows[0].Cells[0].Value)
	assert.Equal(t, "86.80", budget.Rows[0].Cells[1].Value)
	assert.Equal(t, "Degrade level", budget.Rows[6].Cells[0].Value)
	assert.Equal(t, "L1", budget.Rows[6].Cells[1].Value)
	// warning row follows the fixed labels, then the assumption
	assert.Equal(t, "Warning", budget.Rows[7].Cells[0].Value)
	assert.Equal(t, "Assumption", budget.Rows[8].Cells[0].Value)
}

func TestWriteItineraryBadPath(t *testing.T) {
	err := WriteItinerary(sampleItinerary(), filepath.Join(t.TempDir(), "missing", "trip.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export: save")
}
