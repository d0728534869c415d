// Package pool prepares the candidate POI list for scheduling: dedup,
// semantic filtering, preference ranking, theme promotion, and hard
// must-visit/avoid handling. Preparation never fails; an empty pool is
// returned as-is and surfaced by the planner, not here.
package pool

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/trip-planner/internal/balance"
	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/persona"
)

// diversityPenalty discourages picking the same activity bucket twice in a
// row during greedy ranking.
const diversityPenalty = 0.2

var folder = cases.Fold()

// Normalize lowercases and Unicode-normalizes a POI or preference name so
// user-typed names match source data ("Café" vs "cafe").
func Normalize(s string) string {
	return strings.TrimSpace(folder.String(norm.NFC.String(s)))
}

// Result is the prepared candidate pool.
type Result struct {
	POIs             []model.POI
	PerDay           int
	Assumptions      []string
	MissingMustVisit []string
	// Promoted holds POI ids the theme-promotion step moved into the front
	// slice; the day template balancer treats them as already swapped.
	Promoted map[string]bool
}

// Prepare runs the full pool preparation for one planning request.
func Prepare(raw []model.POI, constraints model.TripConstraints, profile persona.Profile) Result {
	res := Result{Promoted: make(map[string]bool)}

	pois := dedup(raw)

	// Semantic tagging; infrastructure never reaches a plan.
	var kept []model.POI
	for _, p := range pois {
		tagged := ClassifySemantic(p)
		if tagged.Semantic == model.SemanticInfrastructure {
			zap.L().Debug("pool: dropped infrastructure POI", zap.String("name", p.Name))
			continue
		}
		kept = append(kept, tagged)
	}
	pois = kept

	pois = applyAvoid(pois, constraints.Avoid, &res)
	pois = rank(pois, constraints, profile)

	res.PerDay = perDayCount(constraints, profile)
	promoteThemes(pois, constraints.Themes, constraints.MustVisit, res.PerDay, &res)

	pois = applyFreeOnly(pois, constraints.FreeOnly, &res)
	pois = mustVisitFirst(pois, constraints.MustVisit, &res)

	res.POIs = pois
	return res
}

func dedup(pois []model.POI) []model.POI {
	seen := make(map[string]bool, len(pois))
	var out []model.POI
	for _, p := range pois {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

func applyAvoid(pois []model.POI, avoid []string, res *Result) []model.POI {
	if len(avoid) == 0 {
		return pois
	}
	var out []model.POI
	for _, p := range pois {
		name := Normalize(p.Name)
		skip := false
		for _, a := range avoid {
			if a != "" && strings.Contains(name, Normalize(a)) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, p)
		}
	}
	if len(out) == 0 && len(pois) > 0 {
		res.Assumptions = append(res.Assumptions,
			"avoid list would remove every candidate; kept the original pool")
		return pois
	}
	return out
}

// rank orders POIs greedily by preference score, applying a penalty when a
// candidate repeats the bucket of the POI picked just before it.
func rank(pois []model.POI, constraints model.TripConstraints, profile persona.Profile) []model.POI {
	if len(pois) <= 1 {
		return pois
	}

	remaining := append([]model.POI(nil), pois...)
	out := make([]model.POI, 0, len(pois))
	prevBucket := balance.Bucket("")

	for len(remaining) > 0 {
		bestIdx := 0
		bestScore := -1e9
		for i, p := range remaining {
			s := baseScore(p, constraints, profile)
			if b := balance.Of(p); b == prevBucket && b != balance.BucketGeneral {
				s -= diversityPenalty
			}
			if s > bestScore {
				bestScore, bestIdx = s, i
			}
		}
		picked := remaining[bestIdx]
		out = append(out, picked)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		prevBucket = balance.Of(picked)
	}
	return out
}

func baseScore(p model.POI, constraints model.TripConstraints, profile persona.Profile) float64 {
	score := 0.0

	// Theme-term overlap against themes, name, and category.
	text := Normalize(p.Name + " " + p.Category + " " + strings.Join(p.Themes, " "))
	for _, theme := range constraints.Themes {
		if theme != "" && strings.Contains(text, Normalize(theme)) {
			score += 0.3
		}
	}

	// Traveler-type adjustments from the persona table.
	if profile.ThemeBonus != nil {
		score += profile.ThemeBonus[string(balance.Of(p))]
	}
	if profile.PreferIndoor && p.Indoor {
		score += 0.1
	}

	// Transport-mode adjustment: on foot central sights beat excursions,
	// with a car the reverse.
	switch constraints.Transport {
	case model.TransportWalk:
		if b := balance.Of(p); b == balance.BucketLandmark || b == balance.BucketShopping {
			score += 0.05
		}
	case model.TransportCar:
		if balance.Of(p) == balance.BucketNature {
			score += 0.05
		}
	}
	return score
}

// promoteThemes makes sure each requested theme bucket has at least one POI
// inside the front slice (the part of the pool day one draws from), swapping
// a matching POI in for a non-locked, non-matching one.
func promoteThemes(pois []model.POI, themes, mustVisit []string, perDay int, res *Result) {
	if len(themes) == 0 || len(pois) == 0 {
		return
	}
	front := max(3, perDay)
	if front > len(pois) {
		front = len(pois)
	}
	locked := lockedNames(mustVisit)

	for _, theme := range themes {
		t := Normalize(theme)
		if t == "" {
			continue
		}
		matches := func(p model.POI) bool {
			return strings.Contains(Normalize(p.Name+" "+p.Category+" "+strings.Join(p.Themes, " ")), t)
		}

		covered := false
		for _, p := range pois[:front] {
			if matches(p) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}

		// First matching POI outside the front slice.
		src := -1
		for i := front; i < len(pois); i++ {
			if matches(pois[i]) {
				src = i
				break
			}
		}
		if src < 0 {
			continue
		}

		// Swap with the last non-locked, non-matching front entry.
		for dst := front - 1; dst >= 0; dst-- {
			if NameLocked(pois[dst].Name, locked) || res.Promoted[pois[dst].ID] {
				continue
			}
			res.Assumptions = append(res.Assumptions, fmt.Sprintf(
				"promoted %q into the early picks to cover the %q theme", pois[src].Name, theme))
			pois[dst], pois[src] = pois[src], pois[dst]
			res.Promoted[pois[dst].ID] = true
			break
		}
	}
}

func applyFreeOnly(pois []model.POI, freeOnly bool, res *Result) []model.POI {
	if !freeOnly {
		return pois
	}
	var out []model.POI
	for _, p := range pois {
		if p.TicketPrice == 0 {
			out = append(out, p)
		}
	}
	if len(out) == 0 && len(pois) > 0 {
		res.Assumptions = append(res.Assumptions,
			"no free attractions available; kept paid candidates despite free-only request")
		return pois
	}
	return out
}

func mustVisitFirst(pois []model.POI, mustVisit []string, res *Result) []model.POI {
	if len(mustVisit) == 0 {
		return pois
	}

	found := make(map[string]bool, len(mustVisit))
	var front, rest []model.POI
	for _, p := range pois {
		name := Normalize(p.Name)
		matched := false
		for _, mv := range mustVisit {
			if mv != "" && strings.Contains(name, Normalize(mv)) {
				found[Normalize(mv)] = true
				matched = true
				break
			}
		}
		if matched {
			front = append(front, p)
		} else {
			rest = append(rest, p)
		}
	}

	for _, mv := range mustVisit {
		if mv != "" && !found[Normalize(mv)] {
			res.MissingMustVisit = append(res.MissingMustVisit, mv)
			res.Assumptions = append(res.Assumptions, fmt.Sprintf(
				"must-visit %q not found among the candidates", mv))
		}
	}
	return append(front, rest...)
}

// lockedNames builds the normalized must-visit name set the balancer and
// promotion steps must never swap out.
func lockedNames(mustVisit []string) map[string]bool {
	locked := make(map[string]bool, len(mustVisit))
	for _, mv := range mustVisit {
		if mv != "" {
			locked[Normalize(mv)] = true
		}
	}
	return locked
}

// LockedNames exposes the locked-name set for the planner.
func LockedNames(mustVisit []string) map[string]bool {
	return lockedNames(mustVisit)
}

// NameLocked reports whether a POI name contains any locked must-visit term.
func NameLocked(name string, locked map[string]bool) bool {
	n := Normalize(name)
	for term := range locked {
		if strings.Contains(n, term) {
			return true
		}
	}
	return false
}

func perDayCount(constraints model.TripConstraints, profile persona.Profile) int {
	n := constraints.EffectivePace().POIsPerDay()
	if profile.MaxPOIsPerDay > 0 && n > profile.MaxPOIsPerDay {
		n = profile.MaxPOIsPerDay
	}
	return n
}
