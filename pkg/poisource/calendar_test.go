package poisource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trip-planner/internal/model"
)

func parisCalendar(t *testing.T) *Calendar {
	t.Helper()
	cal, err := New().Calendar(context.Background(), "paris")
	require.NoError(t, err)
	return cal
}

func TestCalendarHolidayOn(t *testing.T) {
	cal := parisCalendar(t)

	h, ok := cal.HolidayOn(time.Date(2026, 7, 14, 15, 30, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "Bastille Day", h.Name)

	_, ok = cal.HolidayOn(time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestCalendarCrowdOn(t *testing.T) {
	cal := parisCalendar(t)
	ordinary := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	bastille := time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC)

	// Override applies case-insensitively.
	assert.Equal(t, model.CrowdVeryHigh, cal.CrowdOn("louvre museum", ordinary))
	assert.Equal(t, model.CrowdHigh, cal.CrowdOn("Sainte-Chapelle", ordinary))
	assert.Equal(t, model.CrowdNormal, cal.CrowdOn("Notre-Dame Cathedral", ordinary))

	// Holidays bump one step, capped at very_high.
	assert.Equal(t, model.CrowdHigh, cal.CrowdOn("Notre-Dame Cathedral", bastille))
	assert.Equal(t, model.CrowdVeryHigh, cal.CrowdOn("Sainte-Chapelle", bastille))
	assert.Equal(t, model.CrowdVeryHigh, cal.CrowdOn("Louvre Museum", bastille))
}

func TestCalendarNilSafe(t *testing.T) {
	var cal *Calendar
	_, ok := cal.HolidayOn(time.Now())
	assert.False(t, ok)
	assert.Equal(t, model.CrowdNormal, cal.CrowdOn("anything", time.Now()))
}
