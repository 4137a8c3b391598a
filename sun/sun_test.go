package sun

import (
	"errors"
	"testing"
	"time"

	"github.com/devskill-org/daylight/geo"
)

var mexicoCity = geo.Location{Latitude: 19.4283, Longitude: -99.1333}

func clockMinutes(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func TestCalculator_MexicoCityEquinox(t *testing.T) {
	// Mexico City has no daylight savings time; pin the offset to keep the
	// test independent of the platform zone database.
	zone := time.FixedZone("CST", -6*3600)
	date := time.Date(2024, 3, 20, 0, 0, 0, 0, zone)

	for _, engine := range []Engine{SuncalcEngine{}, SunriseEngine{}} {
		t.Run(engine.Name(), func(t *testing.T) {
			c := NewCalculator(mexicoCity, zone, engine)

			times, err := c.TimesForDate(date)
			if err != nil {
				t.Fatalf("TimesForDate returned error: %v", err)
			}

			if m := clockMinutes(times.Sunrise); m < 6*60+20 || m > 7*60 {
				t.Errorf("Sunrise %s outside expected window", times.Sunrise)
			}
			if m := clockMinutes(times.Sunset); m < 18*60+30 || m > 19*60+10 {
				t.Errorf("Sunset %s outside expected window", times.Sunset)
			}
			if d := times.Sunset.Sub(times.Sunrise); d < 11*time.Hour+50*time.Minute || d > 12*time.Hour+20*time.Minute {
				t.Errorf("Day length %s outside expected window", d)
			}
			if !times.SolarNoon.After(times.Sunrise) || !times.SolarNoon.Before(times.Sunset) {
				t.Errorf("Solar noon %s not between sunrise and sunset", times.SolarNoon)
			}
			if times.Sunrise.Location() != zone {
				t.Errorf("Expected results in zone %s, got %s", zone, times.Sunrise.Location())
			}
			if y, m, d := times.Sunrise.Date(); y != 2024 || m != time.March || d != 20 {
				t.Errorf("Sunrise on wrong day: %s", times.Sunrise)
			}

			rise, err := c.OfficialSunriseForDate(date)
			if err != nil {
				t.Fatalf("OfficialSunriseForDate returned error: %v", err)
			}
			if rise != times.Sunrise.Format("15:04") {
				t.Errorf("Expected %s, got %s", times.Sunrise.Format("15:04"), rise)
			}
			set, err := c.OfficialSunsetForDate(date)
			if err != nil {
				t.Fatalf("OfficialSunsetForDate returned error: %v", err)
			}
			if set != times.Sunset.Format("15:04") {
				t.Errorf("Expected %s, got %s", times.Sunset.Format("15:04"), set)
			}
		})
	}
}

func TestEnginesAgree(t *testing.T) {
	locations := []geo.Location{
		mexicoCity,
		{Latitude: 56.9496, Longitude: 24.1052},  // Riga
		{Latitude: -33.8688, Longitude: 151.2093}, // Sydney
		{Latitude: 0, Longitude: 0},
	}
	dates := []time.Time{
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC),
	}

	for _, loc := range locations {
		a := NewCalculator(loc, time.UTC, SuncalcEngine{})
		b := NewCalculator(loc, time.UTC, SunriseEngine{})
		for _, date := range dates {
			ta, err := a.TimesForDate(date)
			if err != nil {
				t.Fatalf("suncalc %s %s: %v", loc, date, err)
			}
			tb, err := b.TimesForDate(date)
			if err != nil {
				t.Fatalf("sunrise %s %s: %v", loc, date, err)
			}
			if d := ta.Sunrise.Sub(tb.Sunrise).Abs(); d > 6*time.Minute {
				t.Errorf("%s %s: sunrise differs by %s (%s vs %s)", loc, date.Format(time.DateOnly), d, ta.Sunrise, tb.Sunrise)
			}
			if d := ta.Sunset.Sub(tb.Sunset).Abs(); d > 6*time.Minute {
				t.Errorf("%s %s: sunset differs by %s (%s vs %s)", loc, date.Format(time.DateOnly), d, ta.Sunset, tb.Sunset)
			}
		}
	}
}

func TestCalculator_PolarNight(t *testing.T) {
	svalbard := geo.Location{Latitude: 78.2232, Longitude: 15.6267}
	c := NewCalculator(svalbard, time.UTC, SunriseEngine{})

	_, err := c.OfficialSunriseCalendarForDate(time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrNoSunriseSunset) {
		t.Errorf("Expected ErrNoSunriseSunset, got %v", err)
	}
	_, err = c.OfficialSunsetForDate(time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrNoSunriseSunset) {
		t.Errorf("Expected ErrNoSunriseSunset for polar day, got %v", err)
	}
}

type fixedEngine struct {
	rise, set time.Time
}

func (f fixedEngine) Name() string { return "fixed" }

func (f fixedEngine) RiseSet(_, _ float64, _ time.Time) (time.Time, time.Time, bool) {
	return f.rise, f.set, plausible(f.rise, f.set)
}

func TestPlausible(t *testing.T) {
	base := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		rise     time.Time
		set      time.Time
		expected bool
	}{
		{"normal", base.Add(-6 * time.Hour), base.Add(6 * time.Hour), true},
		{"zero rise", time.Time{}, base, false},
		{"zero set", base, time.Time{}, false},
		{"equal", base, base, false},
		{"reversed", base.Add(time.Hour), base, false},
		{"too long", base, base.Add(25 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := plausible(tt.rise, tt.set); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCalculator_ConvertsToZone(t *testing.T) {
	zone := time.FixedZone("X", 3*3600)
	rise := time.Date(2024, 3, 20, 3, 0, 0, 0, time.UTC)
	set := time.Date(2024, 3, 20, 15, 30, 0, 0, time.UTC)
	c := NewCalculator(geo.Location{}, zone, fixedEngine{rise: rise, set: set})

	got, err := c.OfficialSunriseForDate(time.Date(2024, 3, 20, 0, 0, 0, 0, zone))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "06:00" {
		t.Errorf("Expected 06:00, got %s", got)
	}
	got, err = c.OfficialSunsetForDate(time.Date(2024, 3, 20, 0, 0, 0, 0, zone))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "18:30" {
		t.Errorf("Expected 18:30, got %s", got)
	}
}

func TestNewCalculator_Defaults(t *testing.T) {
	c := NewCalculator(mexicoCity, nil, nil)
	if c.Zone() != time.UTC {
		t.Errorf("Expected UTC zone, got %s", c.Zone())
	}
	if c.Engine().Name() != DefaultEngine {
		t.Errorf("Expected %s engine, got %s", DefaultEngine, c.Engine().Name())
	}
}

func TestEngineByName(t *testing.T) {
	for _, name := range []string{"", "suncalc", "sunrise"} {
		e, err := EngineByName(name)
		if err != nil {
			t.Errorf("EngineByName(%q) returned error: %v", name, err)
			continue
		}
		if name != "" && e.Name() != name {
			t.Errorf("Expected engine %s, got %s", name, e.Name())
		}
	}
	if _, err := EngineByName("noaa"); err == nil {
		t.Error("Expected error for unknown engine")
	}
	if names := EngineNames(); len(names) != 2 || names[0] != "suncalc" || names[1] != "sunrise" {
		t.Errorf("Unexpected engine names %v", names)
	}
}
