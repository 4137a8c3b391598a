// Package sun wraps the third-party solar calculators behind a small
// interface and exposes the official sunrise and sunset for a location.
//
// Official sunrise and sunset are the moments the sun's upper limb touches
// the horizon, accounting for standard atmospheric refraction (a solar
// altitude of -0.833°). Both engines use that definition.
package sun

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/sixdouglas/suncalc"

	"github.com/devskill-org/daylight/geo"
	"github.com/devskill-org/daylight/utils"
)

// ErrNoSunriseSunset is returned for dates on which the sun stays above
// or below the horizon all day (polar day or night).
var ErrNoSunriseSunset = errors.New("sun does not rise or set on this date")

// DefaultEngine is the name of the engine used when none is configured.
const DefaultEngine = "suncalc"

// Engine computes sunrise and sunset instants.
type Engine interface {
	Name() string
	// RiseSet returns sunrise and sunset for the calendar day of date as
	// seen in date's location. ok is false when either does not occur.
	RiseSet(lat, long float64, date time.Time) (rise, set time.Time, ok bool)
}

// SuncalcEngine uses github.com/sixdouglas/suncalc.
type SuncalcEngine struct{}

func (SuncalcEngine) Name() string { return "suncalc" }

func (SuncalcEngine) RiseSet(lat, long float64, date time.Time) (time.Time, time.Time, bool) {
	// suncalc picks the solar transit nearest to the instant given.
	noon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location())
	times := suncalc.GetTimes(noon, lat, long)
	rise, set := times["sunrise"].Value, times["sunset"].Value
	return rise, set, plausible(rise, set)
}

// SunriseEngine uses github.com/nathan-osman/go-sunrise.
type SunriseEngine struct{}

func (SunriseEngine) Name() string { return "sunrise" }

func (SunriseEngine) RiseSet(lat, long float64, date time.Time) (time.Time, time.Time, bool) {
	rise, set := sunrise.SunriseSunset(lat, long, date.Year(), date.Month(), date.Day())
	return rise, set, plausible(rise, set)
}

// plausible rejects the zero or NaN derived instants the engines produce
// when the sun does not cross the horizon.
func plausible(rise, set time.Time) bool {
	if rise.IsZero() || set.IsZero() {
		return false
	}
	d := set.Sub(rise)
	return d > 0 && d < 24*time.Hour
}

var engines = map[string]Engine{
	SuncalcEngine{}.Name(): SuncalcEngine{},
	SunriseEngine{}.Name(): SunriseEngine{},
}

// EngineByName returns the named engine. An empty name selects DefaultEngine.
func EngineByName(name string) (Engine, error) {
	if name == "" {
		name = DefaultEngine
	}
	e, ok := engines[name]
	if !ok {
		return nil, fmt.Errorf("unknown solar engine %q, must be one of: %v", name, EngineNames())
	}
	return e, nil
}

// EngineNames returns the sorted names of the available engines.
func EngineNames() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calculator returns sunrise and sunset for a fixed location and zone.
type Calculator struct {
	location geo.Location
	zone     *time.Location
	engine   Engine
}

// NewCalculator creates a calculator. A nil zone means UTC and a nil
// engine means the default engine.
func NewCalculator(location geo.Location, zone *time.Location, engine Engine) *Calculator {
	if zone == nil {
		zone = time.UTC
	}
	if engine == nil {
		engine = SuncalcEngine{}
	}
	return &Calculator{location: location, zone: zone, engine: engine}
}

// Engine returns the engine in use.
func (c *Calculator) Engine() Engine { return c.engine }

// Zone returns the time zone results are expressed in.
func (c *Calculator) Zone() *time.Location { return c.zone }

func (c *Calculator) riseSet(date time.Time) (time.Time, time.Time, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, c.zone)
	rise, set, ok := c.engine.RiseSet(c.location.Latitude, c.location.Longitude, day)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s on %s", ErrNoSunriseSunset, c.location, day.Format(time.DateOnly))
	}
	return rise.In(c.zone), set.In(c.zone), nil
}

// OfficialSunriseCalendarForDate returns the official sunrise instant for
// the calendar day of date.
func (c *Calculator) OfficialSunriseCalendarForDate(date time.Time) (time.Time, error) {
	rise, _, err := c.riseSet(date)
	return rise, err
}

// OfficialSunsetCalendarForDate returns the official sunset instant for
// the calendar day of date.
func (c *Calculator) OfficialSunsetCalendarForDate(date time.Time) (time.Time, error) {
	_, set, err := c.riseSet(date)
	return set, err
}

// OfficialSunriseForDate returns the official sunrise as HH:MM.
func (c *Calculator) OfficialSunriseForDate(date time.Time) (string, error) {
	rise, err := c.OfficialSunriseCalendarForDate(date)
	if err != nil {
		return "", err
	}
	return utils.FormatClock(rise), nil
}

// OfficialSunsetForDate returns the official sunset as HH:MM.
func (c *Calculator) OfficialSunsetForDate(date time.Time) (string, error) {
	set, err := c.OfficialSunsetCalendarForDate(date)
	if err != nil {
		return "", err
	}
	return utils.FormatClock(set), nil
}

// Times holds both events of one day.
type Times struct {
	Sunrise   time.Time
	Sunset    time.Time
	SolarNoon time.Time
}

// TimesForDate returns sunrise, sunset and the apparent solar noon (the
// midpoint between them) with a single engine evaluation.
func (c *Calculator) TimesForDate(date time.Time) (Times, error) {
	rise, set, err := c.riseSet(date)
	if err != nil {
		return Times{}, err
	}
	return Times{Sunrise: rise, Sunset: set, SolarNoon: rise.Add(set.Sub(rise) / 2)}, nil
}
