package balance

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/model"
)

// Template is the minimum activity-bucket diversity expected of a day.
type Template struct {
	MinBuckets  int
	PreferFood  bool
	PreferNight bool
}

// TemplateFor derives a day template from pace and theme signals. Faster
// paces expect more variety; food/nightlife themes pin their buckets.
func TemplateFor(pace model.Pace, themes []string) Template {
	t := Template{MinBuckets: 2}
	if pace == model.PaceIntensive {
		t.MinBuckets = 3
	}
	if pace == model.PaceRelaxed {
		t.MinBuckets = 1
	}
	for _, theme := range themes {
		lower := strings.ToLower(theme)
		if strings.Contains(lower, "food") || strings.Contains(lower, "culinary") {
			t.PreferFood = true
		}
		if strings.Contains(lower, "night") {
			t.PreferNight = true
		}
	}
	return t
}

// Rebalance swaps members of the day's selection for unused pool POIs until
// the template's preferred buckets are present and the distinct-bucket
// minimum is met, replacing the most redundant bucket's members first.
// Locked names (must-visits) and indices swapped by an earlier promotion
// step are never replaced. Returns the adjusted day and one assumption line
// per swap.
func Rebalance(day []model.POI, pool []model.POI, tmpl Template, locked map[string]bool, swapped map[int]bool) ([]model.POI, []string) {
	if len(day) == 0 {
		return day, nil
	}
	out := append([]model.POI(nil), day...)
	if swapped == nil {
		swapped = make(map[int]bool)
	}

	used := make(map[string]bool, len(out))
	for _, p := range out {
		used[p.ID] = true
	}

	var assumptions []string

	trySwap := func(want Bucket) bool {
		counts := Counts(out)
		if counts[want] > 0 {
			return false
		}

		// Candidate replacement from the pool.
		var incoming *model.POI
		for i := range pool {
			if used[pool[i].ID] {
				continue
			}
			if Of(pool[i]) == want {
				incoming = &pool[i]
				break
			}
		}
		if incoming == nil {
			return false
		}

		// Victim: last member of the most redundant bucket that is neither
		// locked nor already swapped.
		victim := -1
		bestCount := 1
		for i := len(out) - 1; i >= 0; i-- {
			if swapped[i] || nameLocked(out[i].Name, locked) {
				continue
			}
			if c := counts[Of(out[i])]; c > bestCount || (victim < 0 && c == bestCount) {
				if c > bestCount {
					bestCount = c
					victim = i
				} else if victim < 0 {
					victim = i
				}
			}
		}
		if victim < 0 {
			return false
		}

		assumptions = append(assumptions, fmt.Sprintf(
			"swapped %q for %q to cover the %s slot", out[victim].Name, incoming.Name, want))
		zap.L().Debug("balance: template swap",
			zap.String("out", out[victim].Name),
			zap.String("in", incoming.Name),
			zap.String("bucket", string(want)),
		)
		used[incoming.ID] = true
		delete(used, out[victim].ID)
		out[victim] = incoming.Clone()
		swapped[victim] = true
		return true
	}

	if tmpl.PreferFood {
		trySwap(BucketFood)
	}
	if tmpl.PreferNight {
		trySwap(BucketNight)
	}

	// Top up distinct buckets to the template minimum.
	for _, want := range bucketOrder {
		counts := Counts(out)
		if len(counts) >= tmpl.MinBuckets {
			break
		}
		trySwap(want)
	}

	return out, assumptions
}

// nameLocked reports whether the POI name contains any locked term. Keys of
// locked are lowercased must-visit fragments.
func nameLocked(name string, locked map[string]bool) bool {
	if len(locked) == 0 {
		return false
	}
	lower := strings.ToLower(name)
	for term := range locked {
		if term != "" && strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
