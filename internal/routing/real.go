package routing

import (
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/model"
)

const (
	realConfidence = 0.9

	// FallbackConfidenceCap bounds the reported confidence after a fallback
	// so downstream scoring is never misled by a silent degrade.
	FallbackConfidenceCap = 0.45
)

// RealProvider calls an injected route tool and transparently falls back to
// a fixture provider on any failure, recording a diagnostic event each time.
type RealProvider struct {
	tool    RouteTool
	fixture *FixtureProvider

	mu     sync.Mutex
	memo   map[string]leg
	events []FallbackEvent
}

// NewRealProvider wraps a route tool with fixture fallback.
func NewRealProvider(tool RouteTool, fixture *FixtureProvider) *RealProvider {
	return &RealProvider{
		tool:    tool,
		fixture: fixture,
		memo:    make(map[string]leg),
	}
}

func (p *RealProvider) TravelTime(q Query) int     { return p.resolve(q).minutes }
func (p *RealProvider) Confidence(q Query) float64 { return p.resolve(q).confidence }
func (p *RealProvider) RouteSource(q Query) model.RouteSource {
	return p.resolve(q).source
}

// Diagnostics returns a copy of the fallback events recorded so far.
func (p *RealProvider) Diagnostics() Diagnostics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Diagnostics{
		FallbackCount: len(p.events),
		Events:        append([]FallbackEvent(nil), p.events...),
	}
}

func (p *RealProvider) resolve(q Query) leg {
	key := memoKey(q)

	p.mu.Lock()
	cached, ok := p.memo[key]
	p.mu.Unlock()
	if ok {
		return cached
	}

	l := p.compute(q)

	p.mu.Lock()
	p.memo[key] = l
	p.mu.Unlock()
	return l
}

func (p *RealProvider) compute(q Query) leg {
	minutes, err := p.tool.Route(q)
	if err == nil && minutes > 0 {
		return leg{minutes: minutes, confidence: realConfidence, source: model.RouteSourceReal}
	}

	reason := "non-positive minutes"
	if err != nil {
		reason = err.Error()
	}
	zap.L().Warn("routing: route tool failed, using fixture fallback",
		zap.String("from", q.From.ID),
		zap.String("to", q.To.ID),
		zap.String("mode", string(q.Mode)),
		zap.String("reason", reason),
	)
	p.mu.Lock()
	p.events = append(p.events, FallbackEvent{
		From:   q.From.ID,
		To:     q.To.ID,
		Mode:   q.Mode,
		Reason: reason,
	})
	p.mu.Unlock()

	conf := p.fixture.Confidence(q)
	if conf > FallbackConfidenceCap {
		conf = FallbackConfidenceCap
	}
	return leg{
		minutes:    p.fixture.TravelTime(q),
		confidence: conf,
		source:     model.RouteSourceFallbackFixture,
	}
}
