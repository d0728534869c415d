// Package poisource retrieves curated POI candidates and crowd calendars for
// a destination city. The planning engine itself performs no I/O; this client
// is the retrieval collaborator that feeds it.
package poisource

import (
	"context"
	"embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/trip-planner/internal/model"
)

//go:embed fixtures/*.yaml
var fixturesFS embed.FS

// ErrUnknownCity is returned when no fixture exists for the requested city.
var ErrUnknownCity = eris.New("poisource: unknown city")

// Source retrieves candidate POIs and the event calendar for a city.
type Source interface {
	// POIs returns the curated candidate pool for a city.
	POIs(ctx context.Context, city string) ([]model.POI, error)

	// Calendar returns the holiday and crowd calendar for a city.
	Calendar(ctx context.Context, city string) (*Calendar, error)
}

// Option configures the source.
type Option func(*fixtureSource)

// WithFixtureDir prefers on-disk city files over the embedded set. Files in
// dir named <city>.yaml shadow embedded cities of the same name.
func WithFixtureDir(dir string) Option {
	return func(s *fixtureSource) {
		s.dir = dir
	}
}

type fixtureSource struct {
	dir string
}

// New creates a fixture-backed Source.
func New(opts ...Option) Source {
	s := &fixtureSource{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *fixtureSource) POIs(ctx context.Context, city string) ([]model.POI, error) {
	file, err := s.load(ctx, city)
	if err != nil {
		return nil, err
	}
	pois := make([]model.POI, 0, len(file.POIs))
	for i, rec := range file.POIs {
		p, err := rec.toPOI(file.City)
		if err != nil {
			return nil, eris.Wrapf(err, "poisource: %s record %d", city, i)
		}
		pois = append(pois, p)
	}
	return pois, nil
}

func (s *fixtureSource) Calendar(ctx context.Context, city string) (*Calendar, error) {
	file, err := s.load(ctx, city)
	if err != nil {
		return nil, err
	}
	return file.Calendar.toCalendar(file.City)
}

func (s *fixtureSource) load(ctx context.Context, city string) (*cityFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "poisource: load")
	}
	key := strings.ToLower(strings.TrimSpace(city))
	if key == "" {
		return nil, eris.New("poisource: city is required")
	}

	data, err := s.read(key)
	if err != nil {
		return nil, err
	}
	var file cityFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrapf(err, "poisource: unmarshal %s", key)
	}
	if file.City == "" {
		file.City = key
	}
	return &file, nil
}

func (s *fixtureSource) read(key string) ([]byte, error) {
	if s.dir != "" {
		path := filepath.Join(s.dir, key+".yaml")
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, eris.Wrapf(err, "poisource: read %s", path)
		}
	}
	data, err := fixturesFS.ReadFile("fixtures/" + key + ".yaml")
	if err != nil {
		return nil, eris.Wrapf(ErrUnknownCity, "%s", key)
	}
	return data, nil
}

// cityFile is the on-disk shape of one city fixture.
type cityFile struct {
	City     string       `yaml:"city"`
	POIs     []poiRecord  `yaml:"pois"`
	Calendar calendarFile `yaml:"calendar"`
}

type poiRecord struct {
	ID                  string                      `yaml:"id"`
	Name                string                      `yaml:"name"`
	Lat                 float64                     `yaml:"lat"`
	Lng                 float64                     `yaml:"lng"`
	Category            string                      `yaml:"category,omitempty"`
	Description         string                      `yaml:"description,omitempty"`
	Themes              []string                    `yaml:"themes,omitempty"`
	DurationMin         int                         `yaml:"duration_min,omitempty"`
	TicketPrice         float64                     `yaml:"ticket_price,omitempty"`
	Indoor              bool                        `yaml:"indoor,omitempty"`
	OpenHours           string                      `yaml:"open_hours,omitempty"`
	ReservationRequired bool                        `yaml:"reservation_required,omitempty"`
	ReservationLeadDays int                         `yaml:"reservation_lead_days,omitempty"`
	ClosedWeekdays      []string                    `yaml:"closed_weekdays,omitempty"`
	ClusterHint         string                      `yaml:"cluster_hint,omitempty"`
	Semantic            string                      `yaml:"semantic,omitempty"`
	FactSources         map[string]model.FactSource `yaml:"fact_sources,omitempty"`
}

func (r poiRecord) toPOI(city string) (model.POI, error) {
	if r.ID == "" || r.Name == "" {
		return model.POI{}, eris.New("id and name are required")
	}
	p := model.POI{
		ID:                  r.ID,
		Name:                r.Name,
		City:                city,
		Lat:                 r.Lat,
		Lng:                 r.Lng,
		Category:            r.Category,
		Description:         r.Description,
		Themes:              r.Themes,
		DurationMin:         r.DurationMin,
		TicketPrice:         r.TicketPrice,
		Indoor:              r.Indoor,
		OpenHours:           r.OpenHours,
		ReservationRequired: r.ReservationRequired,
		ReservationLeadDays: r.ReservationLeadDays,
		ClusterHint:         r.ClusterHint,
		Semantic:            model.SemanticType(r.Semantic),
	}
	if p.Semantic == "" {
		p.Semantic = model.SemanticUnknown
	}
	for _, name := range r.ClosedWeekdays {
		day, err := parseWeekday(name)
		if err != nil {
			return model.POI{}, err
		}
		p.ClosedWeekdays = append(p.ClosedWeekdays, day)
	}
	if len(r.FactSources) > 0 {
		p.FactSources = make(map[string]model.FactSource, len(r.FactSources))
		for field, src := range r.FactSources {
			if !model.ValidFactSource(src) {
				return model.POI{}, eris.Errorf("invalid fact source %q for field %q", src, field)
			}
			p.FactSources[field] = src
		}
	}
	return p, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekday(name string) (time.Weekday, error) {
	day, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, eris.Errorf("invalid weekday %q", name)
	}
	return day, nil
}
