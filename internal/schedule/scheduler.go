// Package schedule turns an ordered POI list into one timed itinerary day:
// start/end clocks, travel legs, buffers, a lunch window, and opening-hours
// clipping. POIs that cannot fit are skipped, never errors.
package schedule

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/balance"
	"github.com/sells-group/trip-planner/internal/cluster"
	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/routing"
)

const (
	// DayStartMin is the fixed day-start clock (08:30).
	DayStartMin = 8*60 + 30

	// DefaultDayEndHour is the hard end-of-day hour.
	DefaultDayEndHour = 22

	// DefaultDayMaxMinutes caps a day's total stay+travel+buffer minutes.
	DefaultDayMaxMinutes = 720

	// Lunch window bounds: inserted the first time the clock crosses noon,
	// starting no later than 13:12 and always ending at 14:00.
	noonMin      = 12 * 60
	lunchLatest  = 13*60 + 12
	lunchEndMin  = 14 * 60
	minLunchSpan = 20

	// Buffer model.
	bufferRatio         = 0.2
	bufferFloorMin      = 10
	bufferCeilMin       = 45
	reservationExtraMin = 10

	// Travel estimate used when no routing provider is supplied.
	fallbackSpeedKmh = 4.5
)

var modeTravelPenaltyMin = map[model.TransportMode]int{
	model.TransportWalk:    0,
	model.TransportBike:    2,
	model.TransportTransit: 8,
	model.TransportCar:     5,
}

// stayDefaults maps activity buckets to default stay minutes when a POI
// declares no duration.
var stayDefaults = map[balance.Bucket]int{
	balance.BucketMuseum:   120,
	balance.BucketNature:   90,
	balance.BucketShopping: 90,
	balance.BucketFood:     75,
	balance.BucketNight:    90,
	balance.BucketLandmark: 60,
	balance.BucketGeneral:  60,
}

// Config carries the per-day scheduling parameters.
type Config struct {
	DayEndHour    int
	DayMaxMinutes int
	Mode          model.TransportMode
	Crowd         model.CrowdLevel
	Holiday       bool
}

// Input is everything needed to build one day.
type Input struct {
	Day      int
	Date     time.Time
	POIs     []model.POI // visiting order, already routed
	Unused   []model.POI // pool POIs not selected for any day, for backups
	Clusters cluster.Map
	Provider routing.Provider // optional; estimate used when nil
}

// BuildDay walks the ordered POIs assigning times, and returns the day with
// any skipped POI left out of the main schedule. If nothing fits, the first
// POI is force-scheduled as a best-effort day.
func BuildDay(in Input, cfg Config) model.ItineraryDay {
	if cfg.DayEndHour == 0 {
		cfg.DayEndHour = DefaultDayEndHour
	}
	if cfg.DayMaxMinutes == 0 {
		cfg.DayMaxMinutes = DefaultDayMaxMinutes
	}

	day := model.ItineraryDay{Day: in.Day, Date: in.Date}
	clock := DayStartMin
	budgetUsed := 0 // stay + travel + buffer minutes consumed
	lunchInserted := false
	var prev *model.POI
	var skipped []model.POI

	for i := range in.POIs {
		p := in.POIs[i]

		if p.ClosedOn(in.Date.Weekday()) {
			zap.L().Debug("schedule: POI closed on weekday", zap.String("poi", p.Name))
			skipped = append(skipped, p)
			continue
		}

		travelMin, travelConf := travelLeg(prev, p, in, cfg, clock)
		arrival := clock + travelMin

		// Lunch is inserted when the working clock first crosses noon. It
		// stays tentative until the stop itself is accepted: a skipped stop
		// never moved the clock, so it must not leave a meal behind.
		var lunch *model.MealWindow
		if !lunchInserted && arrival >= noonMin {
			start := arrival
			if start > lunchLatest {
				start = lunchLatest
			}
			if lunchEndMin-start >= minLunchSpan {
				lunch = &model.MealWindow{
					Name:     "lunch",
					Start:    Clock(start),
					End:      Clock(lunchEndMin),
					StartMin: start,
					EndMin:   lunchEndMin,
				}
				if arrival < lunchEndMin {
					arrival = lunchEndMin
				}
			}
		}

		stayMin := stayMinutes(p)
		bufferMin := bufferMinutes(stayMin, p, cfg)

		openMin, closeMin, hasHours := ParseOpenHours(p.OpenHours)
		if hasHours {
			if arrival < openMin {
				arrival = openMin // wait for opening
			}
			if arrival >= closeMin || arrival+stayMin > closeMin {
				skipped = append(skipped, p)
				continue
			}
		}

		end := arrival + stayMin
		if end > cfg.DayEndHour*60 || budgetUsed+travelMin+stayMin+bufferMin > cfg.DayMaxMinutes {
			skipped = append(skipped, p)
			continue
		}

		if lunch != nil {
			day.Meals = append(day.Meals, *lunch)
			lunchInserted = true
		}

		item := model.ScheduleItem{
			POI:       p.Clone(),
			Slot:      slotFor(arrival),
			Start:     Clock(arrival),
			End:       Clock(end),
			StartMin:  arrival,
			EndMin:    end,
			TravelMin: travelMin,
			BufferMin: bufferMin,
			Notes:     itemNotes(p, in, cfg, travelConf, bufferMin),
		}
		day.Schedule = append(day.Schedule, item)
		day.TotalTravelMin += travelMin
		day.EstimatedCost += p.TicketPrice
		budgetUsed += travelMin + stayMin + bufferMin
		clock = end + bufferMin
		prev = &in.POIs[i]
	}

	// Nothing fit: force the first open POI in as a best-effort day.
	if len(day.Schedule) == 0 && len(in.POIs) > 0 {
		p := in.POIs[0]
		stayMin := stayMinutes(p)
		arrival := DayStartMin
		if openMin, _, ok := ParseOpenHours(p.OpenHours); ok && openMin > arrival {
			arrival = openMin
		}
		day.Schedule = append(day.Schedule, model.ScheduleItem{
			POI:       p.Clone(),
			Slot:      slotFor(arrival),
			Start:     Clock(arrival),
			End:       Clock(arrival + stayMin),
			StartMin:  arrival,
			EndMin:    arrival + stayMin,
			BufferMin: bufferFloorMin,
			Notes:     append(itemNotes(p, in, cfg, 0, bufferFloorMin), "best-effort placement"),
		})
		day.EstimatedCost += p.TicketPrice
		skipped = removePOI(skipped, p.ID)
	}

	day.Backups = pickBackups(day, skipped, in)
	day.Summary = summarize(day)
	return day
}

// travelLeg computes minutes and confidence for reaching p from prev.
func travelLeg(prev *model.POI, p model.POI, in Input, cfg Config, clock int) (int, float64) {
	if prev == nil {
		return 0, 1.0
	}

	var minutes int
	var conf float64
	if in.Provider != nil {
		q := routing.Query{
			From:      *prev,
			To:        p,
			Mode:      cfg.Mode,
			Departure: in.Date.Add(time.Duration(clock) * time.Minute),
		}
		minutes = in.Provider.TravelTime(q)
		conf = in.Provider.Confidence(q)
	} else {
		km := cluster.Distance(*prev, p)
		minutes = int(math.Ceil(km/fallbackSpeedKmh*60)) + modeTravelPenaltyMin[cfg.Mode]
		if minutes < 1 {
			minutes = 1
		}
		conf = 0.5
	}

	minutes += cluster.Penalty(*prev, p, in.Clusters)
	return minutes, conf
}

func stayMinutes(p model.POI) int {
	if p.DurationMin > 0 {
		return p.DurationMin
	}
	return stayDefaults[balance.Of(p)]
}

// bufferMinutes sizes the slack after a stay. Crowds and holidays scale both
// the ratio and the floor; reservations add fixed lead slack. The result is
// always within [10,45].
func bufferMinutes(stayMin int, p model.POI, cfg Config) int {
	scale := 1.0
	switch cfg.Crowd {
	case model.CrowdHigh:
		scale = 1.3
	case model.CrowdVeryHigh:
		scale = 1.5
	}
	if cfg.Holiday {
		scale *= 1.2
	}

	buffer := float64(stayMin) * bufferRatio * scale
	floor := float64(bufferFloorMin) * scale
	if buffer < floor {
		buffer = floor
	}
	if p.ReservationRequired {
		buffer += reservationExtraMin
	}

	out := int(math.Round(buffer))
	if out < bufferFloorMin {
		out = bufferFloorMin
	}
	if out > bufferCeilMin {
		out = bufferCeilMin
	}
	return out
}

func slotFor(startMin int) model.TimeSlot {
	switch {
	case startMin < noonMin:
		return model.SlotMorning
	case startMin < 18*60:
		return model.SlotAfternoon
	default:
		return model.SlotEvening
	}
}

// itemNotes renders the render-layer metadata: cluster, buffer, routing
// confidence, reservation and closure hints, and a peak-crowd warning.
func itemNotes(p model.POI, in Input, cfg Config, travelConf float64, bufferMin int) []string {
	notes := []string{
		fmt.Sprintf("cluster:%s", orDash(in.Clusters.Of(p))),
		fmt.Sprintf("buffer:%dm", bufferMin),
	}
	if travelConf > 0 {
		notes = append(notes, fmt.Sprintf("route-confidence:%.2f", travelConf))
	}
	if p.ReservationRequired {
		lead := p.ReservationLeadDays
		if lead <= 0 {
			lead = 1
		}
		notes = append(notes, fmt.Sprintf("reservation required: book %d day(s) ahead", lead))
	}
	if len(p.ClosedWeekdays) > 0 {
		notes = append(notes, fmt.Sprintf("closed on %s", weekdayList(p.ClosedWeekdays)))
	}
	if cfg.Crowd == model.CrowdHigh || cfg.Crowd == model.CrowdVeryHigh {
		notes = append(notes, "expect peak-hour crowds; arrive early")
	}
	return notes
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func weekdayList(days []time.Weekday) string {
	out := ""
	for i, d := range days {
		if i > 0 {
			out += ", "
		}
		out += d.String()
	}
	return out
}

// pickBackups selects one backup stop, preferring a POI that shares a
// cluster with the scheduled day. Skipped POIs come first, then unused pool
// POIs.
func pickBackups(day model.ItineraryDay, skipped []model.POI, in Input) []model.ScheduleItem {
	dayClusters := make(map[string]bool)
	scheduled := make(map[string]bool)
	for _, it := range day.Schedule {
		dayClusters[in.Clusters.Of(it.POI)] = true
		scheduled[it.POI.ID] = true
	}

	candidates := append(append([]model.POI(nil), skipped...), in.Unused...)
	var fallback *model.POI
	for i := range candidates {
		p := candidates[i]
		if scheduled[p.ID] {
			continue
		}
		if dayClusters[in.Clusters.Of(p)] {
			return []model.ScheduleItem{backupItem(p, in)}
		}
		if fallback == nil {
			fallback = &candidates[i]
		}
	}
	if fallback != nil {
		return []model.ScheduleItem{backupItem(*fallback, in)}
	}
	return nil
}

func backupItem(p model.POI, in Input) model.ScheduleItem {
	return model.ScheduleItem{
		POI:      p.Clone(),
		IsBackup: true,
		Notes:    []string{fmt.Sprintf("cluster:%s", orDash(in.Clusters.Of(p))), "backup option"},
	}
}

func summarize(day model.ItineraryDay) string {
	if len(day.Schedule) == 0 {
		return "free day"
	}
	first := day.Schedule[0]
	last := day.Schedule[len(day.Schedule)-1]
	return fmt.Sprintf("%d stops, %s–%s, ~%d min travel",
		len(day.Schedule), first.Start, last.End, day.TotalTravelMin)
}

func removePOI(pois []model.POI, id string) []model.POI {
	for i, p := range pois {
		if p.ID == id {
			return append(pois[:i], pois[i+1:]...)
		}
	}
	return pois
}
