// Package persona holds the traveler-type configuration table: per-type
// limits and scoring hints. The table is embedded, loaded once, and treated
// as read-only afterwards, so concurrent lookups need no locking.
package persona

import (
	_ "embed"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed personas.yaml
var personasYAML []byte

// Profile is one traveler-type configuration bundle.
type Profile struct {
	Name           string             `yaml:"name"`
	MaxPOIsPerDay  int                `yaml:"max_pois_per_day"`
	MaxDayMinutes  int                `yaml:"max_day_minutes"`
	ThemeBonus     map[string]float64 `yaml:"theme_bonus,omitempty"`
	PreferIndoor   bool               `yaml:"prefer_indoor,omitempty"`
	FoodPerPerson  float64            `yaml:"food_per_person,omitempty"`
}

// Table is the immutable persona lookup, keyed by traveler type.
type Table struct {
	profiles map[string]Profile
	fallback Profile
}

type tableFile struct {
	Default  Profile            `yaml:"default"`
	Profiles map[string]Profile `yaml:"profiles"`
}

// Load parses the embedded persona table. Call it once at startup and share
// the result; the Table is safe for unsynchronized concurrent reads.
func Load() (*Table, error) {
	return parse(personasYAML)
}

func parse(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "persona: unmarshal table")
	}
	if file.Default.MaxPOIsPerDay == 0 {
		return nil, eris.New("persona: default profile missing max_pois_per_day")
	}
	t := &Table{
		profiles: make(map[string]Profile, len(file.Profiles)),
		fallback: file.Default,
	}
	for key, p := range file.Profiles {
		if p.MaxPOIsPerDay == 0 {
			p.MaxPOIsPerDay = file.Default.MaxPOIsPerDay
		}
		if p.MaxDayMinutes == 0 {
			p.MaxDayMinutes = file.Default.MaxDayMinutes
		}
		if p.FoodPerPerson == 0 {
			p.FoodPerPerson = file.Default.FoodPerPerson
		}
		t.profiles[strings.ToLower(key)] = p
	}
	return t, nil
}

// Lookup returns the profile for a traveler type, falling back to the
// default profile for unknown or empty types.
func (t *Table) Lookup(travelerType string) Profile {
	if t == nil {
		return Profile{}
	}
	if p, ok := t.profiles[strings.ToLower(strings.TrimSpace(travelerType))]; ok {
		return p
	}
	return t.fallback
}

// Default returns the fallback profile.
func (t *Table) Default() Profile {
	if t == nil {
		return Profile{}
	}
	return t.fallback
}
