package poisource

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/trip-planner/internal/model"
)

// Holiday is a public holiday or city-wide event that raises expected crowds.
type Holiday struct {
	Date time.Time
	Name string
}

// Calendar carries a city's holidays and per-POI crowd overrides.
type Calendar struct {
	City     string
	Holidays []Holiday
	crowd    map[string]model.CrowdLevel
}

// HolidayOn returns the holiday falling on date, if any. Only the calendar
// day matters; times and zones are ignored.
func (c *Calendar) HolidayOn(date time.Time) (Holiday, bool) {
	if c == nil {
		return Holiday{}, false
	}
	y, m, d := date.Date()
	for _, h := range c.Holidays {
		hy, hm, hd := h.Date.Date()
		if hy == y && hm == m && hd == d {
			return h, true
		}
	}
	return Holiday{}, false
}

// CrowdOn estimates the crowd level for a POI on a date. The per-POI override
// sets the baseline; a holiday bumps it one step.
func (c *Calendar) CrowdOn(poiName string, date time.Time) model.CrowdLevel {
	level := model.CrowdNormal
	if c != nil {
		if override, ok := c.crowd[strings.ToLower(poiName)]; ok {
			level = override
		}
		if _, holiday := c.HolidayOn(date); holiday {
			level = bump(level)
		}
	}
	return level
}

func bump(level model.CrowdLevel) model.CrowdLevel {
	switch level {
	case model.CrowdNormal:
		return model.CrowdHigh
	default:
		return model.CrowdVeryHigh
	}
}

// calendarFile is the on-disk shape of the calendar section.
type calendarFile struct {
	Holidays []struct {
		Date string `yaml:"date"`
		Name string `yaml:"name"`
	} `yaml:"holidays,omitempty"`
	Crowd map[string]model.CrowdLevel `yaml:"crowd,omitempty"`
}

func (f calendarFile) toCalendar(city string) (*Calendar, error) {
	cal := &Calendar{City: city}
	for _, h := range f.Holidays {
		date, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			return nil, eris.Wrapf(err, "poisource: %s holiday %q", city, h.Name)
		}
		cal.Holidays = append(cal.Holidays, Holiday{Date: date, Name: h.Name})
	}
	if len(f.Crowd) > 0 {
		cal.crowd = make(map[string]model.CrowdLevel, len(f.Crowd))
		for name, level := range f.Crowd {
			switch level {
			case model.CrowdNormal, model.CrowdHigh, model.CrowdVeryHigh:
			default:
				return nil, eris.Errorf("poisource: %s invalid crowd level %q for %q", city, level, name)
			}
			cal.crowd[strings.ToLower(name)] = level
		}
	}
	return cal, nil
}
