// Package planner orchestrates a full planning run: pool preparation,
// clustering, per-day partitioning, ordering, scheduling, the
// validate/repair loop, and budget/confidence finalization. The planner is
// stateless across runs; everything it needs arrives as arguments.
package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/balance"
	"github.com/sells-group/trip-planner/internal/budget"
	"github.com/sells-group/trip-planner/internal/cluster"
	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/persona"
	"github.com/sells-group/trip-planner/internal/pool"
	"github.com/sells-group/trip-planner/internal/repair"
	"github.com/sells-group/trip-planner/internal/route"
	"github.com/sells-group/trip-planner/internal/routing"
	"github.com/sells-group/trip-planner/internal/schedule"
	"github.com/sells-group/trip-planner/internal/validate"
	"github.com/sells-group/trip-planner/pkg/poisource"
)

// DefaultMaxRepairAttempts bounds the validate/repair loop.
const DefaultMaxRepairAttempts = 3

// Options tune one planner instance.
type Options struct {
	MaxRepairAttempts  int
	ClusterThresholdKm float64
	MaxClustersPerDay  int
	Sched              schedule.Config
}

// Planner runs the full pipeline. Safe for concurrent use as long as the
// routing provider is.
type Planner struct {
	personas *persona.Table
	provider routing.Provider
	opts     Options
	now      func() time.Time
}

// Outcome is the result of one planning run.
type Outcome struct {
	Status         model.RunStatus
	Itinerary      *model.Itinerary
	Issues         []model.ValidationIssue
	RepairAttempts int
}

// New builds a planner. The provider may be nil; the scheduler then falls
// back to distance estimates.
func New(personas *persona.Table, provider routing.Provider, opts Options) *Planner {
	if opts.MaxRepairAttempts <= 0 {
		opts.MaxRepairAttempts = DefaultMaxRepairAttempts
	}
	return &Planner{
		personas: personas,
		provider: provider,
		opts:     opts,
		now:      time.Now,
	}
}

// Plan turns a candidate POI list and trip constraints into a finalized
// itinerary. An empty or fully filtered pool ends the run with
// RunStatusNoCandidates and no itinerary. cal may be nil; without it every
// day is scheduled with normal-crowd, non-holiday buffers.
func (p *Planner) Plan(candidates []model.POI, cons model.TripConstraints, cal *poisource.Calendar) Outcome {
	profile := p.personas.Lookup(cons.TravelerType)
	days := cons.Days
	if days < 1 {
		days = 1
	}

	sanitized, cleared := p.sanitize(candidates)
	prepared := pool.Prepare(sanitized, cons, profile)
	if len(prepared.POIs) == 0 {
		zap.L().Warn("planner: no candidates survive pool preparation",
			zap.String("destination", cons.Destination),
			zap.Int("raw", len(candidates)))
		return Outcome{Status: model.RunStatusNoCandidates}
	}

	clusters := cluster.Build(prepared.POIs, p.opts.ClusterThresholdKm)
	locked := pool.LockedNames(cons.MustVisit)
	tmpl := balance.TemplateFor(cons.EffectivePace(), cons.Themes)

	it := model.Itinerary{City: cons.Destination}
	it.Assumptions = append(it.Assumptions, prepared.Assumptions...)
	it.Assumptions = append(it.Assumptions, cleared...)
	for _, name := range prepared.MissingMustVisit {
		it.Assumptions = append(it.Assumptions,
			fmt.Sprintf("must-visit %q not found among the candidates", name))
	}

	chunks, unused := p.partition(prepared.POIs, clusters, days, prepared.PerDay)
	for i := range chunks {
		dayNum := i + 1
		dayPOIs := cluster.EnforceCap(chunks[i], clusters, p.opts.MaxClustersPerDay)
		unused = append(unused, dropped(chunks[i], dayPOIs)...)

		dayPOIs, assumptions := balance.Rebalance(
			dayPOIs, swapPool(unused, dayPOIs, clusters, p.opts.MaxClustersPerDay),
			tmpl, locked, promotedIndices(dayPOIs, prepared.Promoted))
		it.Assumptions = append(it.Assumptions, assumptions...)
		unused = withoutAny(unused, dayPOIs)

		dayPOIs = route.Order(dayPOIs, cluster.Distance, nil)
		date := dateFor(cons.StartDate, i)
		day := schedule.BuildDay(schedule.Input{
			Day:      dayNum,
			Date:     date,
			POIs:     dayPOIs,
			Unused:   unused,
			Clusters: clusters,
			Provider: p.provider,
		}, crowdConfig(p.dayConfig(cons, profile), cal, date, dayPOIs))
		it.Days = append(it.Days, day)
		unused = withoutScheduled(unused, day)
	}

	ctx := validate.Context{
		Constraints:   cons,
		Clusters:      clusters,
		MaxDayMinutes: profile.MaxDayMinutes,
		MaxPOIsPerDay: profile.MaxPOIsPerDay,
		MaxClusters:   p.opts.MaxClustersPerDay,
	}
	issues := validate.Evaluate(it, ctx)

	eng := &repair.Engine{
		Provider: p.provider,
		Clusters: clusters,
		Sched:    p.dayConfig(cons, profile),
	}
	attempts := 0
	for attempts < p.opts.MaxRepairAttempts && hasHigh(issues) {
		res := eng.Repair(it, issues, ctx)
		attempts++
		it = res.Itinerary
		issues = res.Remaining
		if !res.Changed {
			break
		}
	}
	if hasHigh(issues) {
		it.Assumptions = append(it.Assumptions, fmt.Sprintf(
			"unresolved after %d repair attempts: %s", attempts, issueCodes(issues)))
	}

	it = budget.Finalize(it, cons, profile, p.now())

	sig := budget.Signals{
		VerifiedFactRatio: budget.VerifiedFactRatio(scheduledPOIs(it)),
		RemainingIssues:   issues,
		DominantRoute:     p.dominantRoute(it, cons),
		FallbackEvents:    p.fallbackEvents(),
		RepairAttempts:    attempts,
	}
	it.Confidence = budget.Score(sig)
	it.Degrade = budget.Degrade(sig)
	it.Violations = issues
	it.Summary = summarize(it, cons)

	status := model.RunStatusComplete
	if hasHigh(issues) || it.Degrade == model.DegradeL2 || it.Degrade == model.DegradeL3 {
		status = model.RunStatusDegraded
	}
	zap.L().Info("planner: run finished",
		zap.String("destination", cons.Destination),
		zap.String("status", string(status)),
		zap.Int("repair_attempts", attempts),
		zap.Float64("confidence", it.Confidence))
	return Outcome{
		Status:         status,
		Itinerary:      &it,
		Issues:         issues,
		RepairAttempts: attempts,
	}
}

// sanitize clears explicitly-unknown hard facts before anything downstream
// can act on them.
func (p *Planner) sanitize(candidates []model.POI) ([]model.POI, []string) {
	out := make([]model.POI, 0, len(candidates))
	var notes []string
	for _, c := range candidates {
		cleaned, cleared := budget.SanitizeFacts(c)
		out = append(out, cleaned)
		if len(cleared) > 0 {
			notes = append(notes, fmt.Sprintf(
				"cleared unverifiable facts on %q: %s", c.Name, strings.Join(cleared, ", ")))
		}
	}
	return out, notes
}

// partition groups the ranked pool by cluster, then deals it into day-sized
// chunks. Grouping first keeps each day geographically coherent; the pool's
// rank order decides which clusters fill the early days.
func (p *Planner) partition(pois []model.POI, clusters cluster.Map, days, perDay int) ([][]model.POI, []model.POI) {
	if perDay < 1 {
		perDay = 1
	}

	var order []string
	grouped := make(map[string][]model.POI)
	for _, poi := range pois {
		id := clusters.Of(poi)
		if _, ok := grouped[id]; !ok {
			order = append(order, id)
		}
		grouped[id] = append(grouped[id], poi)
	}

	var flat []model.POI
	for _, id := range order {
		flat = append(flat, grouped[id]...)
	}

	chunks := make([][]model.POI, days)
	for i := 0; i < days; i++ {
		lo := i * perDay
		hi := lo + perDay
		if lo > len(flat) {
			lo = len(flat)
		}
		if hi > len(flat) {
			hi = len(flat)
		}
		chunks[i] = append([]model.POI(nil), flat[lo:hi]...)
	}
	return chunks, append([]model.POI(nil), flat[min(days*perDay, len(flat)):]...)
}

func (p *Planner) dayConfig(cons model.TripConstraints, profile persona.Profile) schedule.Config {
	cfg := p.opts.Sched
	cfg.Mode = cons.Transport
	if cfg.DayMaxMinutes == 0 {
		cfg.DayMaxMinutes = profile.MaxDayMinutes
	}
	return cfg
}

// crowdConfig folds the city calendar into one day's schedule config: the
// day is flagged when its date is a holiday and carries the worst expected
// crowd level among its stops, so buffer sizing sees the real conditions.
func crowdConfig(cfg schedule.Config, cal *poisource.Calendar, date time.Time, pois []model.POI) schedule.Config {
	if cal == nil || date.IsZero() {
		return cfg
	}
	if _, ok := cal.HolidayOn(date); ok {
		cfg.Holiday = true
	}
	for _, p := range pois {
		if level := cal.CrowdOn(p.Name, date); crowdRank(level) > crowdRank(cfg.Crowd) {
			cfg.Crowd = level
		}
	}
	return cfg
}

func crowdRank(level model.CrowdLevel) int {
	switch level {
	case model.CrowdVeryHigh:
		return 2
	case model.CrowdHigh:
		return 1
	default:
		return 0
	}
}

// dominantRoute queries the provider's source for every scheduled leg and
// returns the most common answer, breaking ties toward the less reliable
// source.
func (p *Planner) dominantRoute(it model.Itinerary, cons model.TripConstraints) model.RouteSource {
	if p.provider == nil {
		return model.RouteSourceFixture
	}
	counts := make(map[model.RouteSource]int)
	for _, day := range it.Days {
		for i := 1; i < len(day.Schedule); i++ {
			q := routing.Query{
				From: day.Schedule[i-1].POI,
				To:   day.Schedule[i].POI,
				Mode: cons.Transport,
			}
			counts[p.provider.RouteSource(q)]++
		}
	}
	if len(counts) == 0 {
		return model.RouteSourceFixture
	}
	sources := make([]model.RouteSource, 0, len(counts))
	for s := range counts {
		sources = append(sources, s)
	}
	sort.Slice(sources, func(i, j int) bool {
		if counts[sources[i]] != counts[sources[j]] {
			return counts[sources[i]] > counts[sources[j]]
		}
		return reliabilityRank(sources[i]) < reliabilityRank(sources[j])
	})
	return sources[0]
}

func reliabilityRank(s model.RouteSource) int {
	switch s {
	case model.RouteSourceFallbackFixture:
		return 0
	case model.RouteSourceFixture:
		return 1
	default:
		return 2
	}
}

func (p *Planner) fallbackEvents() int {
	if p.provider == nil {
		return 0
	}
	return p.provider.Diagnostics().FallbackCount
}

func hasHigh(issues []model.ValidationIssue) bool {
	for _, is := range issues {
		if is.Severity == model.SeverityHigh {
			return true
		}
	}
	return false
}

func issueCodes(issues []model.ValidationIssue) string {
	seen := make(map[model.IssueCode]bool)
	var codes []string
	for _, is := range issues {
		if !seen[is.Code] {
			seen[is.Code] = true
			codes = append(codes, string(is.Code))
		}
	}
	return strings.Join(codes, ", ")
}

// promotedIndices maps pool-level theme promotions onto day indices so the
// balancer never swaps away a stop the promotion step already placed.
func promotedIndices(day []model.POI, promoted map[string]bool) map[int]bool {
	if len(promoted) == 0 {
		return nil
	}
	out := make(map[int]bool)
	for i, p := range day {
		if promoted[p.ID] {
			out[i] = true
		}
	}
	return out
}

// swapPool limits template-swap candidates once a day already spans its full
// cluster allowance: only pool POIs from the day's kept clusters may come in,
// so a swap can never widen the day's geography past the cap.
func swapPool(unused, day []model.POI, clusters cluster.Map, maxClusters int) []model.POI {
	if maxClusters <= 0 {
		maxClusters = cluster.DefaultMaxPerDay
	}
	kept := make(map[string]bool, len(day))
	for _, p := range day {
		kept[clusters.Of(p)] = true
	}
	if len(kept) < maxClusters {
		return unused
	}
	var out []model.POI
	for _, p := range unused {
		if kept[clusters.Of(p)] {
			out = append(out, p)
		}
	}
	return out
}

func dropped(before, after []model.POI) []model.POI {
	kept := make(map[string]bool, len(after))
	for _, p := range after {
		kept[p.ID] = true
	}
	var out []model.POI
	for _, p := range before {
		if !kept[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

func withoutAny(pois, taken []model.POI) []model.POI {
	ids := make(map[string]bool, len(taken))
	for _, p := range taken {
		ids[p.ID] = true
	}
	var out []model.POI
	for _, p := range pois {
		if !ids[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

func withoutScheduled(pois []model.POI, day model.ItineraryDay) []model.POI {
	ids := make(map[string]bool, len(day.Schedule))
	for _, item := range day.Schedule {
		ids[item.POI.ID] = true
	}
	var out []model.POI
	for _, p := range pois {
		if !ids[p.ID] {
			out = append(out, p)
		}
	}
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

func dateFor(start time.Time, offset int) time.Time {
	if start.IsZero() {
		return start
	}
	return start.AddDate(0, 0, offset)
}

func summarize(it model.Itinerary, cons model.TripConstraints) string {
	stops := 0
	for _, day := range it.Days {
		stops += len(day.Schedule)
	}
	return fmt.Sprintf("%d days in %s, %d stops, estimated %.2f",
		len(it.Days), cons.Destination, stops, it.TotalCost)
}
