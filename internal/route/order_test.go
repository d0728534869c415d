package route

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/trip-planner/internal/cluster"
	"github.com/sells-group/trip-planner/internal/model"
)

func poiAt(id string, lat, lng float64) model.POI {
	return model.POI{ID: id, Lat: lat, Lng: lng}
}

func TestOrder_EmptyAndSingle(t *testing.T) {
	assert.Empty(t, Order(nil, cluster.Distance, nil))
	one := []model.POI{poiAt("a", 1, 1)}
	assert.Equal(t, one, Order(one, cluster.Distance, nil))
}

func TestOrder_ThreePOIsSkipsTwoOpt(t *testing.T) {
	pois := []model.POI{
		poiAt("a", 0, 0),
		poiAt("c", 0, 2),
		poiAt("b", 0, 1),
	}
	got := Order(pois, cluster.Distance, nil)
	// Pure nearest-neighbor from "a": a, b, c.
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestOrder_ExplicitStart(t *testing.T) {
	pois := []model.POI{
		poiAt("far", 0, 10),
		poiAt("near", 0, 1),
	}
	start := geom.Coord{0, 0} // lng, lat
	got := Order(pois, cluster.Distance, &start)
	assert.Equal(t, "near", got[0].ID)
}

func TestOrder_TwoOptImprovesCrossing(t *testing.T) {
	// A square visited in a crossing order; 2-opt should uncross it.
	pois := []model.POI{
		poiAt("a", 0, 0),
		poiAt("b", 1, 1),
		poiAt("c", 0, 1),
		poiAt("d", 1, 0),
	}
	seed := nearestNeighbor(pois, cluster.Distance, nil)
	seedDist := TotalDistance(seed, cluster.Distance)

	got := Order(pois, cluster.Distance, nil)
	assert.LessOrEqual(t, TotalDistance(got, cluster.Distance), seedDist)
	assert.Len(t, got, 4)
}

func TestOrder_NeverWorseThanSeed(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 25; trial++ {
		n := 4 + rng.Intn(8)
		pois := make([]model.POI, n)
		for i := range pois {
			pois[i] = poiAt(string(rune('a'+i)), rng.Float64()*0.2, rng.Float64()*0.2)
		}
		seed := nearestNeighbor(append([]model.POI(nil), pois...), cluster.Distance, nil)
		seedDist := TotalDistance(seed, cluster.Distance)

		got := Order(pois, cluster.Distance, nil)
		require.Len(t, got, n)
		assert.LessOrEqual(t, TotalDistance(got, cluster.Distance), seedDist+1e-9)

		// Every POI still appears exactly once.
		seen := map[string]int{}
		for _, p := range got {
			seen[p.ID]++
		}
		for _, p := range pois {
			assert.Equal(t, 1, seen[p.ID])
		}
	}
}

func TestOrder_DoesNotMutateInput(t *testing.T) {
	pois := []model.POI{
		poiAt("a", 0, 0),
		poiAt("b", 1, 1),
		poiAt("c", 0, 1),
		poiAt("d", 1, 0),
	}
	orig := append([]model.POI(nil), pois...)
	_ = Order(pois, cluster.Distance, nil)
	assert.Equal(t, orig, pois)
}
