package budget

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/persona"
)

const (
	// defaultTicketBaseline is the per-ticket guess for cities we have no
	// baseline for.
	defaultTicketBaseline = 14.0

	// defaultFoodPerPerson floors the per-person daily food spend when the
	// persona carries no figure.
	defaultFoodPerPerson = 25.0

	paidHintFactor = 1.2
	freeHintFactor = 0.0
	noHintFactor   = 0.6
)

// cityTicketBaseline is the average paid-attraction ticket per city,
// lowercased city key.
var cityTicketBaseline = map[string]float64{
	"paris":     16.0,
	"rome":      14.0,
	"tokyo":     11.0,
	"london":    18.0,
	"barcelona": 13.0,
}

var paidHints = []string{
	"museum", "palace", "tower", "castle", "gallery", "aquarium",
	"zoo", "observatory", "cruise", "show", "abbey", "basilica dome",
}

var freeHints = []string{
	"park", "garden", "square", "market", "street", "bridge",
	"promenade", "beach", "riverbank", "cathedral", "church",
}

// transportSegmentCost is the per-traveler cost of one travel leg by mode.
var transportSegmentCost = map[model.TransportMode]float64{
	model.TransportWalk:    0,
	model.TransportBike:    1.0,
	model.TransportTransit: 2.2,
	model.TransportCar:     3.5,
}

// sourceWeight converts a provenance label into a trust weight.
var sourceWeight = map[model.FactSource]float64{
	model.FactVerified:  1.0,
	model.FactCurated:   0.9,
	model.FactHeuristic: 0.6,
	model.FactFallback:  0.4,
	model.FactUnknown:   0.2,
}

// ResolveTicket returns a clone of the POI with a resolved ticket price and
// its provenance persisted. An observed positive price keeps its declared
// source; anything else is inferred from the city baseline and name hints,
// tagged heuristic.
func ResolveTicket(p model.POI, city string) (model.POI, model.FactSource) {
	out := p.Clone()
	if out.FactSources == nil {
		out.FactSources = make(map[string]model.FactSource, 1)
	}

	if p.TicketPrice > 0 {
		src := p.FactSourceFor(model.FactFieldTicketPrice)
		if src == model.FactUnknown {
			src = model.FactHeuristic // observed but unattributed
		}
		out.FactSources[model.FactFieldTicketPrice] = src
		return out, src
	}

	baseline, ok := cityTicketBaseline[strings.ToLower(city)]
	if !ok {
		baseline = defaultTicketBaseline
	}
	out.TicketPrice = math.Round(baseline*hintFactor(p)*100) / 100
	out.FactSources[model.FactFieldTicketPrice] = model.FactHeuristic
	return out, model.FactHeuristic
}

func hintFactor(p model.POI) float64 {
	text := strings.ToLower(p.Name + " " + p.Category)
	for _, hint := range freeHints {
		if strings.Contains(text, hint) {
			return freeHintFactor
		}
	}
	for _, hint := range paidHints {
		if strings.Contains(text, hint) {
			return paidHintFactor
		}
	}
	return noHintFactor
}

// Finalize resolves every scheduled ticket, rebuilds the budget breakdown,
// and attaches the report to a clone of the itinerary. The warning fires
// when the traveler's budget cannot cover the minimum feasible spend.
func Finalize(it model.Itinerary, cons model.TripConstraints, prof persona.Profile, asOf time.Time) model.Itinerary {
	out := it.Clone()

	var (
		tickets       float64
		segments      int
		ticketSources []model.FactSource
	)
	for di := range out.Days {
		day := &out.Days[di]
		day.EstimatedCost = 0
		for ii := range day.Schedule {
			item := &day.Schedule[ii]
			resolved, src := ResolveTicket(item.POI, cons.Destination)
			item.POI = resolved
			tickets += resolved.TicketPrice
			ticketSources = append(ticketSources, src)
			day.EstimatedCost += resolved.TicketPrice
			if item.TravelMin > 0 {
				segments++
			}
		}
	}

	travelers := float64(cons.TravelerCount())
	transport := float64(segments) * transportSegmentCost[cons.Transport] * travelers

	perPerson := prof.FoodPerPerson
	if perPerson <= 0 {
		perPerson = defaultFoodPerPerson
	}
	food := perPerson * travelers * float64(len(out.Days))

	round2 := func(v float64) float64 { return math.Round(v*100) / 100 }
	breakdown := model.BudgetBreakdown{
		Tickets:        round2(tickets),
		LocalTransport: round2(transport),
		FoodMin:        round2(food),
	}
	total := round2(breakdown.Tickets + breakdown.LocalTransport + breakdown.FoodMin)

	report := model.BudgetReport{
		Total:     total,
		Breakdown: breakdown,
		SourceByComponent: map[string]model.FactSource{
			"tickets":         dominantSource(ticketSources),
			"local_transport": model.FactCurated,
			"food_min":        model.FactHeuristic,
		},
		ConfidenceByComponent: map[string]float64{
			"tickets":         sourceConfidence(ticketSources),
			"local_transport": sourceWeight[model.FactCurated],
			"food_min":        sourceWeight[model.FactHeuristic],
		},
		AsOf:        asOf,
		MinFeasible: total,
	}
	report.Confidence = round2((report.ConfidenceByComponent["tickets"] +
		report.ConfidenceByComponent["local_transport"] +
		report.ConfidenceByComponent["food_min"]) / 3)

	if limit := cons.BudgetLimit(); limit > 0 && limit < report.MinFeasible {
		report.Warning = fmt.Sprintf(
			"budget %.2f is below the estimated minimum feasible spend %.2f",
			limit, report.MinFeasible)
		zap.L().Warn("budget: below minimum feasible",
			zap.Float64("budget", limit),
			zap.Float64("min_feasible", report.MinFeasible))
	}

	out.Budget = report
	out.TotalCost = total
	out.UnknownFields = UnknownFields(scheduledPOIs(out))
	return out
}

func scheduledPOIs(it model.Itinerary) []model.POI {
	var pois []model.POI
	for _, day := range it.Days {
		for _, item := range day.Schedule {
			pois = append(pois, item.POI)
		}
	}
	return pois
}

// dominantSource returns the most common label, breaking ties toward the
// less trusted one so the report never overstates provenance.
func dominantSource(sources []model.FactSource) model.FactSource {
	if len(sources) == 0 {
		return model.FactUnknown
	}
	counts := make(map[model.FactSource]int)
	for _, s := range sources {
		counts[s]++
	}
	best := sources[0]
	for s, n := range counts {
		if n > counts[best] || (n == counts[best] && sourceWeight[s] < sourceWeight[best]) {
			best = s
		}
	}
	return best
}

// sourceConfidence is the mean trust weight of the labels.
func sourceConfidence(sources []model.FactSource) float64 {
	if len(sources) == 0 {
		return sourceWeight[model.FactUnknown]
	}
	sum := 0.0
	for _, s := range sources {
		sum += sourceWeight[s]
	}
	return math.Round(sum/float64(len(sources))*100) / 100
}
