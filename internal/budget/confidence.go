package budget

import (
	"math"

	"github.com/sells-group/trip-planner/internal/model"
)

// Confidence weighting: verified facts dominate, then constraint
// satisfaction, then routing reliability.
const (
	factWeight       = 0.55
	constraintWeight = 0.25
	routingWeight    = 0.20

	fallbackEventPenalty = 0.03
	fallbackPenaltyCap   = 0.15
	repairAttemptPenalty = 0.05
	repairPenaltyCap     = 0.15

	lowFactCap   = 0.6 // verified ratio below one half
	fixtureCap   = 0.7 // dominant routing source is fixture-derived
	issuePenalty = 0.15
)

// routeReliability maps the dominant routing source to a trust score.
var routeReliability = map[model.RouteSource]float64{
	model.RouteSourceReal:            1.0,
	model.RouteSourceFixture:         0.7,
	model.RouteSourceFallbackFixture: 0.4,
}

// Signals are the inputs to the overall confidence score and degrade level.
type Signals struct {
	VerifiedFactRatio float64
	RemainingIssues   []model.ValidationIssue
	DominantRoute     model.RouteSource
	FallbackEvents    int
	RepairAttempts    int
	Failed            bool
}

// Score computes the overall plan confidence in [0,1].
func Score(s Signals) float64 {
	constraint := 1.0 - issuePenalty*float64(len(s.RemainingIssues))
	if constraint < 0 {
		constraint = 0
	}

	routing, ok := routeReliability[s.DominantRoute]
	if !ok {
		routing = routeReliability[model.RouteSourceFixture]
	}

	score := factWeight*s.VerifiedFactRatio +
		constraintWeight*constraint +
		routingWeight*routing

	score -= math.Min(fallbackEventPenalty*float64(s.FallbackEvents), fallbackPenaltyCap)
	score -= math.Min(repairAttemptPenalty*float64(s.RepairAttempts), repairPenaltyCap)

	if s.VerifiedFactRatio < 0.5 && score > lowFactCap {
		score = lowFactCap
	}
	if s.DominantRoute != model.RouteSourceReal && score > fixtureCap {
		score = fixtureCap
	}
	if score < 0 {
		return 0
	}
	return math.Round(score*100) / 100
}

// Degrade summarizes the plan's reliance on unverified or fallback data.
func Degrade(s Signals) model.DegradeLevel {
	if s.Failed {
		return model.DegradeL3
	}
	if s.FallbackEvents > 0 || s.hasHighIssue() {
		return model.DegradeL2
	}
	if s.VerifiedFactRatio < 0.8 || s.RepairAttempts > 0 ||
		s.DominantRoute != model.RouteSourceReal {
		return model.DegradeL1
	}
	return model.DegradeL0
}

func (s Signals) hasHighIssue() bool {
	for _, is := range s.RemainingIssues {
		if is.Severity == model.SeverityHigh {
			return true
		}
	}
	return false
}
