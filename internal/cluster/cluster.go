// Package cluster groups POIs into geographic neighborhoods and enforces the
// per-day cluster cap that keeps a day's stops walkable.
package cluster

import (
	"fmt"
	"math"
	"sort"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/trip-planner/internal/model"
)

const (
	// DefaultThresholdKm is the distance under which an unhinted POI joins an
	// existing cluster instead of starting a new one.
	DefaultThresholdKm = 4.5

	// DefaultMaxPerDay caps how many distinct clusters one day may span.
	DefaultMaxPerDay = 2

	// CrossClusterPenaltyMin inflates travel time when consecutive stops
	// switch clusters.
	CrossClusterPenaltyMin = 15

	earthRadiusKm = 6371.0
)

// Map assigns each POI id to a cluster id.
type Map map[string]string

// Of returns the cluster id for a POI, or empty when unassigned.
func (m Map) Of(p model.POI) string {
	if m == nil {
		return ""
	}
	return m[p.ID]
}

// HaversineKm returns the great-circle distance between two coordinates in
// kilometers. Coordinates are (lng, lat), matching geom.Coord order.
func HaversineKm(a, b geom.Coord) float64 {
	latA := a[1] * math.Pi / 180
	latB := b[1] * math.Pi / 180
	dLat := latB - latA
	dLng := (b[0] - a[0]) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// Distance returns the haversine distance between two POIs in kilometers.
func Distance(a, b model.POI) float64 {
	return HaversineKm(a.Coord(), b.Coord())
}

type centroid struct {
	id    string
	coord geom.Coord
	count int
}

// Build assigns every POI a cluster id. POIs carrying an explicit hint are
// grouped by that hint; the rest are greedily attached to the nearest
// existing centroid within thresholdKm, or start a new cluster. Centroids
// are updated as a running mean after each assignment.
func Build(pois []model.POI, thresholdKm float64) Map {
	if thresholdKm <= 0 {
		thresholdKm = DefaultThresholdKm
	}

	out := make(Map, len(pois))
	var centroids []*centroid
	byID := make(map[string]*centroid)

	attach := func(c *centroid, p model.POI) {
		out[p.ID] = c.id
		n := float64(c.count)
		c.coord[0] = (c.coord[0]*n + p.Lng) / (n + 1)
		c.coord[1] = (c.coord[1]*n + p.Lat) / (n + 1)
		c.count++
	}

	newCluster := func(id string, p model.POI) *centroid {
		c := &centroid{id: id, coord: p.Coord(), count: 0}
		centroids = append(centroids, c)
		byID[id] = c
		attach(c, p)
		return c
	}

	// Hinted POIs first so hint clusters anchor the centroids.
	for _, p := range pois {
		if p.ClusterHint == "" {
			continue
		}
		if c, ok := byID[p.ClusterHint]; ok {
			attach(c, p)
		} else {
			newCluster(p.ClusterHint, p)
		}
	}

	next := 0
	for _, p := range pois {
		if p.ClusterHint != "" {
			continue
		}
		var best *centroid
		bestDist := math.MaxFloat64
		for _, c := range centroids {
			d := HaversineKm(c.coord, p.Coord())
			if d < bestDist {
				best, bestDist = c, d
			}
		}
		if best != nil && bestDist <= thresholdKm {
			attach(best, p)
			continue
		}
		next++
		newCluster(fmt.Sprintf("c%d", next), p)
	}

	return out
}

// EnforceCap keeps only the POIs whose cluster is among the maxClusters
// most-populous clusters of the day. A filter that would empty the day falls
// back to the single first POI rather than an empty day.
func EnforceCap(dayPOIs []model.POI, clusters Map, maxClusters int) []model.POI {
	if maxClusters <= 0 {
		maxClusters = DefaultMaxPerDay
	}
	if len(dayPOIs) == 0 {
		return dayPOIs
	}

	counts := make(map[string]int)
	for _, p := range dayPOIs {
		counts[clusters.Of(p)]++
	}
	if len(counts) <= maxClusters {
		return dayPOIs
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	// Most populous first; id as a deterministic tie-break.
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	keep := make(map[string]bool, maxClusters)
	for _, id := range ids[:maxClusters] {
		keep[id] = true
	}

	var filtered []model.POI
	for _, p := range dayPOIs {
		if keep[clusters.Of(p)] {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		return dayPOIs[:1]
	}
	return filtered
}

// Penalty returns the extra travel minutes charged when moving between two
// POIs that sit in different clusters.
func Penalty(a, b model.POI, clusters Map) int {
	ca, cb := clusters.Of(a), clusters.Of(b)
	if ca == "" || cb == "" || ca == cb {
		return 0
	}
	return CrossClusterPenaltyMin
}

// Switches counts how many times the cluster id changes walking the POIs in
// order. Used by the backtracking checker.
func Switches(pois []model.POI, clusters Map) int {
	n := 0
	for i := 1; i < len(pois); i++ {
		if clusters.Of(pois[i]) != clusters.Of(pois[i-1]) {
			n++
		}
	}
	return n
}
