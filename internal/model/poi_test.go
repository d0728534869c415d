package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPOIClone_NoAliasing(t *testing.T) {
	orig := POI{
		ID:     "poi-1",
		Name:   "Louvre",
		Themes: []string{"art", "history"},
		FactSources: map[string]FactSource{
			FactFieldTicketPrice: FactVerified,
		},
	}

	c := orig.Clone()
	c.Themes[0] = "modern"
	c.FactSources[FactFieldTicketPrice] = FactHeuristic

	assert.Equal(t, "art", orig.Themes[0])
	assert.Equal(t, FactVerified, orig.FactSources[FactFieldTicketPrice])
}

func TestPOIFactSourceFor_Defaults(t *testing.T) {
	p := POI{}
	assert.Equal(t, FactUnknown, p.FactSourceFor(FactFieldOpenHours))

	p.FactSources = map[string]FactSource{FactFieldOpenHours: "made_up"}
	assert.Equal(t, FactUnknown, p.FactSourceFor(FactFieldOpenHours))

	p.FactSources[FactFieldOpenHours] = FactCurated
	assert.Equal(t, FactCurated, p.FactSourceFor(FactFieldOpenHours))
}

func TestPOIClosedOn(t *testing.T) {
	p := POI{ClosedWeekdays: []time.Weekday{time.Monday}}
	assert.True(t, p.ClosedOn(time.Monday))
	assert.False(t, p.ClosedOn(time.Tuesday))
}

func TestValidFactSource(t *testing.T) {
	for _, s := range []FactSource{FactVerified, FactCurated, FactHeuristic, FactFallback, FactUnknown} {
		assert.True(t, ValidFactSource(s))
	}
	assert.False(t, ValidFactSource("guessed"))
}
