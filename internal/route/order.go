// Package route orders a day's POIs for minimal walking: nearest-neighbor
// construction followed by a bounded 2-opt improvement pass.
package route

import (
	"math"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/trip-planner/internal/model"
)

// maxTwoOptPasses bounds the improvement loop; each pass applies at most one
// segment reversal (first improvement, not best improvement).
const maxTwoOptPasses = 6

// DistanceFunc measures the cost of moving between two POIs.
type DistanceFunc func(a, b model.POI) float64

// Order returns a visiting order over pois. Construction is greedy
// nearest-neighbor from start (or from the first POI when start is nil),
// then up to six 2-opt passes that only accept strictly improving
// reversals. With fewer than four POIs the nearest-neighbor order is
// returned unchanged. The result's total distance never exceeds the
// nearest-neighbor seed distance.
func Order(pois []model.POI, dist DistanceFunc, start *geom.Coord) []model.POI {
	if len(pois) <= 1 {
		return append([]model.POI(nil), pois...)
	}

	tour := nearestNeighbor(pois, dist, start)
	if len(tour) < 4 {
		return tour
	}
	return twoOpt(tour, dist)
}

// TotalDistance sums the leg distances of an ordered path.
func TotalDistance(pois []model.POI, dist DistanceFunc) float64 {
	total := 0.0
	for i := 1; i < len(pois); i++ {
		total += dist(pois[i-1], pois[i])
	}
	return total
}

func nearestNeighbor(pois []model.POI, dist DistanceFunc, start *geom.Coord) []model.POI {
	remaining := append([]model.POI(nil), pois...)
	tour := make([]model.POI, 0, len(pois))

	// Pick the first stop: nearest to the explicit start point, else the
	// first POI as given.
	first := 0
	if start != nil {
		best := math.MaxFloat64
		anchor := model.POI{Lng: (*start)[0], Lat: (*start)[1]}
		for i, p := range remaining {
			if d := dist(anchor, p); d < best {
				best, first = d, i
			}
		}
	}
	tour = append(tour, remaining[first])
	remaining = append(remaining[:first], remaining[first+1:]...)

	for len(remaining) > 0 {
		last := tour[len(tour)-1]
		best := math.MaxFloat64
		bestIdx := 0
		for i, p := range remaining {
			if d := dist(last, p); d < best {
				best, bestIdx = d, i
			}
		}
		tour = append(tour, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return tour
}

func twoOpt(tour []model.POI, dist DistanceFunc) []model.POI {
	n := len(tour)
	for pass := 0; pass < maxTwoOptPasses; pass++ {
		improved := false
		for i := 0; i < n-2 && !improved; i++ {
			for j := i + 2; j < n && !improved; j++ {
				// Reversing tour[i+1..j] replaces edges (i,i+1) and (j,j+1)
				// with (i,j) and (i+1,j+1). The path is open, so the final
				// edge only exists when j+1 is in range.
				before := dist(tour[i], tour[i+1])
				after := dist(tour[i], tour[j])
				if j+1 < n {
					before += dist(tour[j], tour[j+1])
					after += dist(tour[i+1], tour[j+1])
				}
				if after < before {
					reverse(tour, i+1, j)
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}
	return tour
}

func reverse(tour []model.POI, i, j int) {
	for i < j {
		tour[i], tour[j] = tour[j], tour[i]
		i++
		j--
	}
}
