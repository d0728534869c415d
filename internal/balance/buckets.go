// Package balance classifies POIs into activity buckets and nudges a day's
// selection toward the bucket diversity the traveler asked for.
package balance

import (
	"strings"

	"github.com/sells-group/trip-planner/internal/model"
)

// Bucket is a coarse activity category used for day diversity.
type Bucket string

const (
	BucketFood     Bucket = "food"
	BucketNight    Bucket = "night"
	BucketMuseum   Bucket = "museum"
	BucketNature   Bucket = "nature"
	BucketShopping Bucket = "shopping"
	BucketLandmark Bucket = "landmark"
	BucketGeneral  Bucket = "general"
)

// bucketKeywords maps each bucket to the terms that vote for it. Buckets are
// checked in bucketOrder; the first bucket with a hit wins.
var bucketKeywords = map[Bucket][]string{
	BucketFood:     {"restaurant", "food", "cafe", "bistro", "dining", "bakery", "street eats", "brasserie", "eatery"},
	BucketNight:    {"bar", "pub", "club", "nightlife", "night view", "night market", "rooftop", "jazz", "cabaret"},
	BucketMuseum:   {"museum", "gallery", "exhibit", "memorial hall", "aquarium", "planetarium"},
	BucketNature:   {"park", "garden", "mountain", "lake", "beach", "forest", "trail", "river", "botanical"},
	BucketShopping: {"shopping", "mall", "market", "boutique", "bazaar", "department store", "flea"},
	BucketLandmark: {"tower", "cathedral", "palace", "temple", "monument", "square", "bridge", "castle", "basilica", "opera", "landmark"},
}

var bucketOrder = []Bucket{
	BucketFood, BucketNight, BucketMuseum, BucketNature, BucketShopping, BucketLandmark,
}

// Of classifies a POI by keyword matching over its name, category,
// description, and theme tags.
func Of(p model.POI) Bucket {
	text := strings.ToLower(p.Name + " " + p.Category + " " + p.Description + " " + strings.Join(p.Themes, " "))
	for _, b := range bucketOrder {
		for _, kw := range bucketKeywords[b] {
			if strings.Contains(text, kw) {
				return b
			}
		}
	}
	return BucketGeneral
}

// Counts tallies the bucket of each POI.
func Counts(pois []model.POI) map[Bucket]int {
	counts := make(map[Bucket]int)
	for _, p := range pois {
		counts[Of(p)]++
	}
	return counts
}
