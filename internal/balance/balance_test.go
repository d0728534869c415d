package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/trip-planner/internal/model"
)

func TestOf_KeywordBuckets(t *testing.T) {
	tests := []struct {
		name string
		poi  model.POI
		want Bucket
	}{
		{"restaurant", model.POI{Name: "Le Petit Restaurant"}, BucketFood},
		{"bar", model.POI{Name: "Skyline Rooftop Bar"}, BucketNight},
		{"museum", model.POI{Name: "National Museum"}, BucketMuseum},
		{"park theme", model.POI{Name: "Ueno", Themes: []string{"park"}}, BucketNature},
		{"market", model.POI{Name: "Grand Market"}, BucketShopping},
		{"tower", model.POI{Name: "Clock Tower"}, BucketLandmark},
		{"plain", model.POI{Name: "Old Quarter Walk"}, BucketGeneral},
		{"category wins", model.POI{Name: "Maison Blanche", Category: "cafe"}, BucketFood},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Of(tc.poi))
		})
	}
}

func TestTemplateFor(t *testing.T) {
	tmpl := TemplateFor(model.PaceIntensive, []string{"Food", "nightlife"})
	assert.Equal(t, 3, tmpl.MinBuckets)
	assert.True(t, tmpl.PreferFood)
	assert.True(t, tmpl.PreferNight)

	tmpl = TemplateFor(model.PaceRelaxed, nil)
	assert.Equal(t, 1, tmpl.MinBuckets)
	assert.False(t, tmpl.PreferFood)
}

func TestRebalance_FoodPreferenceGuaranteesFoodStop(t *testing.T) {
	// Five museums selected, one food POI waiting in the pool.
	day := []model.POI{
		{ID: "m1", Name: "Museum One"},
		{ID: "m2", Name: "Museum Two"},
		{ID: "m3", Name: "Museum Three"},
	}
	pool := []model.POI{
		{ID: "m1", Name: "Museum One"},
		{ID: "m2", Name: "Museum Two"},
		{ID: "m3", Name: "Museum Three"},
		{ID: "m4", Name: "Museum Four"},
		{ID: "m5", Name: "Museum Five"},
		{ID: "f1", Name: "Night Market Food Street"},
	}
	got, assumptions := Rebalance(day, pool, Template{MinBuckets: 2, PreferFood: true}, nil, nil)

	counts := Counts(got)
	assert.Equal(t, 1, counts[BucketFood])
	assert.Len(t, assumptions, 1)
	assert.Contains(t, assumptions[0], "Food Street")
}

func TestRebalance_LockedNameNeverSwapped(t *testing.T) {
	day := []model.POI{{ID: "m1", Name: "Museum One"}}
	pool := []model.POI{
		{ID: "m1", Name: "Museum One"},
		{ID: "f1", Name: "Corner Cafe"},
	}
	locked := map[string]bool{"museum one": true}
	got, assumptions := Rebalance(day, pool, Template{PreferFood: true}, locked, nil)

	assert.Equal(t, "m1", got[0].ID)
	assert.Empty(t, assumptions)
}

func TestRebalance_SkipsAlreadySwappedIndex(t *testing.T) {
	// Index 0 was already replaced by theme promotion; the balancer must pick
	// another victim or give up, never double-swap the same slot.
	day := []model.POI{{ID: "m1", Name: "Museum One"}}
	pool := []model.POI{
		{ID: "m1", Name: "Museum One"},
		{ID: "f1", Name: "Corner Cafe"},
	}
	got, assumptions := Rebalance(day, pool, Template{PreferFood: true}, nil, map[int]bool{0: true})

	assert.Equal(t, "m1", got[0].ID)
	assert.Empty(t, assumptions)
}

func TestRebalance_AlreadySatisfiedNoSwap(t *testing.T) {
	day := []model.POI{
		{ID: "f1", Name: "Corner Cafe"},
		{ID: "m1", Name: "City Museum"},
	}
	pool := append([]model.POI(nil), day...)
	got, assumptions := Rebalance(day, pool, Template{MinBuckets: 2, PreferFood: true}, nil, nil)
	assert.Equal(t, day, got)
	assert.Empty(t, assumptions)
}

func TestRebalance_EmptyDay(t *testing.T) {
	got, assumptions := Rebalance(nil, nil, Template{}, nil, nil)
	assert.Empty(t, got)
	assert.Empty(t, assumptions)
}
