package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trip-planner/internal/cluster"
	"github.com/sells-group/trip-planner/internal/model"
)

var tuesday = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func poiNear(id string, lat, lng float64, durationMin int) model.POI {
	return model.POI{ID: id, Name: id, Lat: lat, Lng: lng, DurationMin: durationMin}
}

func TestBuildDay_StartsAtDayStart(t *testing.T) {
	in := Input{
		Day:  1,
		Date: tuesday,
		POIs: []model.POI{poiNear("a", 48.86, 2.33, 60)},
	}
	day := BuildDay(in, Config{})
	require.Len(t, day.Schedule, 1)
	assert.Equal(t, "08:30", day.Schedule[0].Start)
	assert.Equal(t, "09:30", day.Schedule[0].End)
	assert.Equal(t, 0, day.Schedule[0].TravelMin)
	assert.Equal(t, model.SlotMorning, day.Schedule[0].Slot)
}

func TestBuildDay_NonDecreasingNoOverlap(t *testing.T) {
	in := Input{
		Day:  1,
		Date: tuesday,
		POIs: []model.POI{
			poiNear("a", 48.860, 2.330, 90),
			poiNear("b", 48.865, 2.340, 60),
			poiNear("c", 48.870, 2.350, 60),
		},
	}
	day := BuildDay(in, Config{})
	require.GreaterOrEqual(t, len(day.Schedule), 2)
	for i := 1; i < len(day.Schedule); i++ {
		assert.GreaterOrEqual(t, day.Schedule[i].StartMin, day.Schedule[i-1].EndMin,
			"items must not overlap")
	}
}

func TestBuildDay_ClipsToOpeningTime(t *testing.T) {
	p := poiNear("a", 48.86, 2.33, 60)
	p.OpenHours = "10:00-18:00"
	day := BuildDay(Input{Day: 1, Date: tuesday, POIs: []model.POI{p}}, Config{})
	require.Len(t, day.Schedule, 1)
	assert.Equal(t, "10:00", day.Schedule[0].Start)
}

func TestBuildDay_NeverEndsPastClose(t *testing.T) {
	// 09:00-12:00 hours with a 2h stay: either scheduled ending ≤ 12:00 or
	// skipped entirely; an end past close must never appear.
	early := poiNear("filler", 48.86, 2.33, 150) // pushes the clock late
	late := poiNear("short-hours", 48.87, 2.35, 120)
	late.OpenHours = "09:00-12:00"

	day := BuildDay(Input{Day: 1, Date: tuesday, POIs: []model.POI{early, late}}, Config{})
	for _, it := range day.Schedule {
		if it.POI.ID == "short-hours" {
			assert.LessOrEqual(t, it.EndMin, 12*60)
		}
	}
}

func TestBuildDay_SkipsClosedWeekday(t *testing.T) {
	p := poiNear("a", 48.86, 2.33, 60)
	p.ClosedWeekdays = []time.Weekday{time.Tuesday}
	b := poiNear("b", 48.861, 2.331, 60)

	day := BuildDay(Input{Day: 1, Date: tuesday, POIs: []model.POI{p, b}}, Config{})
	require.Len(t, day.Schedule, 1)
	assert.Equal(t, "b", day.Schedule[0].POI.ID)
	// The closed POI becomes the backup.
	require.Len(t, day.Backups, 1)
	assert.Equal(t, "a", day.Backups[0].POI.ID)
	assert.True(t, day.Backups[0].IsBackup)
}

func TestBuildDay_LunchInsertedOnce(t *testing.T) {
	in := Input{
		Day:  1,
		Date: tuesday,
		POIs: []model.POI{
			poiNear("a", 48.860, 2.330, 120),
			poiNear("b", 48.861, 2.331, 60),
			poiNear("c", 48.862, 2.332, 60),
		},
	}
	day := BuildDay(in, Config{})
	require.Len(t, day.Meals, 1)
	lunch := day.Meals[0]
	assert.Equal(t, "lunch", lunch.Name)
	assert.LessOrEqual(t, lunch.StartMin, lunchLatest)
	assert.Equal(t, lunchEndMin, lunch.EndMin)
}

func TestBuildDay_NoLunchWhenNoonStopSkipped(t *testing.T) {
	// a: 08:30-11:50 (200min stay, 40min buffer) keeps the clock before
	// noon. b crosses noon but its window closed at 11:00, so it is skipped
	// and no stop ever holds the clock past noon.
	b := poiNear("b", 48.861, 2.331, 60)
	b.OpenHours = "09:00-11:00"
	in := Input{
		Day:  1,
		Date: tuesday,
		POIs: []model.POI{poiNear("a", 48.860, 2.330, 200), b},
	}
	day := BuildDay(in, Config{})
	require.Len(t, day.Schedule, 1)
	assert.Equal(t, "a", day.Schedule[0].POI.ID)
	assert.Empty(t, day.Meals)
}

func TestBuildDay_BufferClampedAndScaled(t *testing.T) {
	p := poiNear("a", 48.86, 2.33, 60)

	normal := bufferMinutes(60, p, Config{Crowd: model.CrowdNormal})
	crowded := bufferMinutes(60, p, Config{Crowd: model.CrowdVeryHigh})
	assert.GreaterOrEqual(t, crowded, normal)

	// Tiny stay still gets the floor; long stays hit the ceiling.
	assert.GreaterOrEqual(t, bufferMinutes(5, p, Config{}), 10)
	assert.LessOrEqual(t, bufferMinutes(500, p, Config{Crowd: model.CrowdVeryHigh, Holiday: true}), 45)

	reserved := p
	reserved.ReservationRequired = true
	assert.Greater(t, bufferMinutes(60, reserved, Config{}), bufferMinutes(60, p, Config{}))
}

func TestBuildDay_DayCeilingSkips(t *testing.T) {
	in := Input{
		Day:  1,
		Date: tuesday,
		POIs: []model.POI{
			poiNear("a", 48.860, 2.330, 300),
			poiNear("b", 48.861, 2.331, 300),
			poiNear("c", 48.862, 2.332, 300),
		},
	}
	day := BuildDay(in, Config{DayMaxMinutes: 700})
	assert.Less(t, len(day.Schedule), 3)
}

func TestBuildDay_BestEffortWhenNothingFits(t *testing.T) {
	p := poiNear("a", 48.86, 2.33, 60)
	p.OpenHours = "09:00-09:30" // nothing can fit a 60-min stay

	day := BuildDay(Input{Day: 1, Date: tuesday, POIs: []model.POI{p}}, Config{})
	require.Len(t, day.Schedule, 1)
	assert.Contains(t, day.Schedule[0].Notes, "best-effort placement")
}

func TestBuildDay_BackupPrefersSameCluster(t *testing.T) {
	clusters := cluster.Map{"a": "X", "far": "Y", "near": "X"}
	in := Input{
		Day:      1,
		Date:     tuesday,
		POIs:     []model.POI{poiNear("a", 48.86, 2.33, 60)},
		Unused:   []model.POI{poiNear("far", 48.99, 2.60, 60), poiNear("near", 48.861, 2.331, 60)},
		Clusters: clusters,
	}
	day := BuildDay(in, Config{})
	require.Len(t, day.Backups, 1)
	assert.Equal(t, "near", day.Backups[0].POI.ID)
}

func TestBuildDay_NotesCarryMetadata(t *testing.T) {
	p := poiNear("a", 48.86, 2.33, 60)
	p.ReservationRequired = true
	p.ReservationLeadDays = 3

	in := Input{Day: 1, Date: tuesday, POIs: []model.POI{p}, Clusters: cluster.Map{"a": "X"}}
	day := BuildDay(in, Config{Crowd: model.CrowdHigh})
	require.Len(t, day.Schedule, 1)

	notes := day.Schedule[0].Notes
	assert.Contains(t, notes, "cluster:X")
	assert.Contains(t, notes, "reservation required: book 3 day(s) ahead")
	assert.Contains(t, notes, "expect peak-hour crowds; arrive early")
}

func TestBuildDay_EmptyInput(t *testing.T) {
	day := BuildDay(Input{Day: 1, Date: tuesday}, Config{})
	assert.Empty(t, day.Schedule)
	assert.Equal(t, "free day", day.Summary)
}

func TestStayMinutes_CategoryDefaults(t *testing.T) {
	assert.Equal(t, 120, stayMinutes(model.POI{Name: "City Museum"}))
	assert.Equal(t, 90, stayMinutes(model.POI{Name: "Rose Garden"}))
	assert.Equal(t, 60, stayMinutes(model.POI{Name: "Some Place"}))
	assert.Equal(t, 45, stayMinutes(model.POI{Name: "City Museum", DurationMin: 45}))
}
