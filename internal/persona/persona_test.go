package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedTable(t *testing.T) {
	table, err := Load()
	require.NoError(t, err)

	def := table.Default()
	assert.Equal(t, "general", def.Name)
	assert.Equal(t, 4, def.MaxPOIsPerDay)
	assert.Equal(t, 720, def.MaxDayMinutes)
}

func TestLookup_KnownAndUnknown(t *testing.T) {
	table, err := Load()
	require.NoError(t, err)

	family := table.Lookup("Family")
	assert.Equal(t, "family", family.Name)
	assert.Equal(t, 3, family.MaxPOIsPerDay)

	// Unknown types fall back to the default profile.
	fallback := table.Lookup("astronaut")
	assert.Equal(t, "general", fallback.Name)
}

func TestParse_MissingDefault(t *testing.T) {
	_, err := parse([]byte("profiles:\n  x:\n    name: x\n"))
	assert.Error(t, err)
}

func TestParse_InheritsDefaults(t *testing.T) {
	data := []byte(`
default:
  name: general
  max_pois_per_day: 4
  max_day_minutes: 700
  food_per_person: 30
profiles:
  minimal:
    name: minimal
`)
	table, err := parse(data)
	assert.NoError(t, err)

	p := table.Lookup("minimal")
	assert.Equal(t, 4, p.MaxPOIsPerDay)
	assert.Equal(t, 700, p.MaxDayMinutes)
	assert.Equal(t, 30.0, p.FoodPerPerson)
}
