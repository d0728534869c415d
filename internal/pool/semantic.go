package pool

import (
	"strings"

	"github.com/sells-group/trip-planner/internal/model"
)

// infrastructureKeywords mark POIs that exist to support travel rather than
// be visited. They are dropped from every candidate pool.
var infrastructureKeywords = []string{
	"station", "terminal", "parking", "restroom", "toilet", "bus stop",
	"metro entrance", "subway entrance", "taxi stand", "ticket office",
	"information center", "atm", "currency exchange", "airport", "ferry pier",
}

// experienceKeywords positively identify visitable attractions.
var experienceKeywords = []string{
	"museum", "gallery", "park", "garden", "tower", "temple", "palace",
	"cathedral", "market", "restaurant", "cafe", "bar", "theater", "castle",
	"monument", "square", "bridge", "beach", "zoo", "aquarium", "shrine",
	"basilica", "opera", "viewpoint", "street",
}

// ClassifySemantic tags a copy of the POI as experience or infrastructure by
// keyword matching over its name, category, and description. POIs the
// keywords cannot place stay unknown with low confidence; unknowns are kept
// in the pool, only infrastructure is dropped.
func ClassifySemantic(p model.POI) model.POI {
	out := p.Clone()
	if out.Semantic == model.SemanticExperience || out.Semantic == model.SemanticInfrastructure {
		return out
	}

	text := strings.ToLower(p.Name + " " + p.Category + " " + p.Description)
	for _, kw := range infrastructureKeywords {
		if strings.Contains(text, kw) {
			out.Semantic = model.SemanticInfrastructure
			out.SemanticConfidence = 0.9
			return out
		}
	}
	for _, kw := range experienceKeywords {
		if strings.Contains(text, kw) {
			out.Semantic = model.SemanticExperience
			out.SemanticConfidence = 0.8
			return out
		}
	}
	out.Semantic = model.SemanticUnknown
	out.SemanticConfidence = 0.4
	return out
}
