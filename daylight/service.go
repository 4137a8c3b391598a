// Package daylight turns a submitted form into sunrise, sunset and day
// length, and serves that calculation over HTTP and WebSocket.
package daylight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	_ "time/tzdata" // zone rules on hosts without a zoneinfo database

	"github.com/devskill-org/daylight/form"
	"github.com/devskill-org/daylight/geo"
	"github.com/devskill-org/daylight/sun"
	"github.com/devskill-org/daylight/utils"
	"github.com/devskill-org/daylight/zones"
)

// ErrComputation is returned when a valid submission cannot be turned
// into sunrise and sunset times. Its text is the message shown to users.
var ErrComputation = errors.New("Unable to calculate sunrise and sunset")

// Result is the outcome of a successful calculation.
type Result struct {
	Date             string       `json:"date"`
	Location         geo.Location `json:"location"`
	TimeZone         string       `json:"time_zone"`
	ZoneAbbreviation string       `json:"zone_abbreviation"`
	DaylightSavings  bool         `json:"daylight_savings"`
	Engine           string       `json:"engine"`
	Sunrise          string       `json:"sunrise"`
	Sunset           string       `json:"sunset"`
	SolarNoon        string       `json:"solar_noon"`
	DayLength        string       `json:"day_length"`
	SunriseTime      time.Time    `json:"sunrise_time"`
	SunsetTime       time.Time    `json:"sunset_time"`
}

// String renders the result the way the form displays it.
func (r *Result) String() string {
	return fmt.Sprintf("Sunrise: %s\nSunset: %s\nDay Length: %s", r.Sunrise, r.Sunset, r.DayLength)
}

// Stats counts calculations since the service was created.
type Stats struct {
	Calculations uint64 `json:"calculations"`
	Rejections   uint64 `json:"rejections"`
	Failures     uint64 `json:"failures"`
}

// Service performs calculations for form submissions.
type Service struct {
	config *Config
	engine sun.Engine

	calculations atomic.Uint64
	rejections   atomic.Uint64
	failures     atomic.Uint64
}

// NewService creates a service using the configured engine.
func NewService(config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	engine, err := sun.EngineByName(config.Engine)
	if err != nil {
		return nil, err
	}
	return &Service{config: config, engine: engine}, nil
}

// GetConfig returns the service configuration.
func (s *Service) GetConfig() *Config {
	return s.config
}

// Engine returns the name of the solar engine in use.
func (s *Service) Engine() string {
	return s.engine.Name()
}

// Stats returns the current counters.
func (s *Service) Stats() Stats {
	return Stats{
		Calculations: s.calculations.Load(),
		Rejections:   s.rejections.Load(),
		Failures:     s.failures.Load(),
	}
}

// Zones lists the selectable time zones.
func (s *Service) Zones() ([]zones.Zone, error) {
	return zones.List(s.config.ZoneInfoDir)
}

// DefaultZone returns the zone preselected in the form.
func (s *Service) DefaultZone() string {
	return s.config.DefaultTimeZone
}

// Calculate validates the submission and computes its result. Rejected
// submissions return a *form.ValidationError; failures after validation
// wrap ErrComputation.
func (s *Service) Calculate(ctx context.Context, sub form.Submission) (*Result, error) {
	logger := loggerFrom(ctx)

	req, err := form.Validate(sub)
	if err != nil {
		s.rejections.Add(1)
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			logger.Info("submission rejected", "reason", verr.Reason, "field", verr.Field)
		}
		return nil, err
	}

	result, err := s.compute(req)
	if err != nil {
		s.failures.Add(1)
		logger.Warn("calculation failed", "date", req.Date, "location", req.Location.String(), "error", err)
		return nil, fmt.Errorf("%w: %w", ErrComputation, err)
	}

	s.calculations.Add(1)
	logger.Debug("calculated",
		"date", result.Date,
		"location", result.Location.String(),
		"zone", result.TimeZone,
		"sunrise", result.Sunrise,
		"sunset", result.Sunset)
	return result, nil
}

func (s *Service) compute(req *form.Request) (*Result, error) {
	// The calendar day is independent of the zone, which itself may depend
	// on the date when daylight savings is off.
	d, err := utils.ParseFormDate(req.Date, time.UTC)
	if err != nil {
		return nil, err
	}

	id := zones.StripLabel(req.TimeZone)
	if id == "" {
		id = zones.StripLabel(s.config.DefaultTimeZone)
	}
	if strings.EqualFold(id, zones.Auto) {
		if id, err = zones.Lookup(req.Location); err != nil {
			return nil, err
		}
	}

	zone, err := zones.Resolve(id, req.Location, req.DaylightSavings, d)
	if err != nil {
		return nil, err
	}

	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, zone)
	times, err := sun.NewCalculator(req.Location, zone, s.engine).TimesForDate(day)
	if err != nil {
		return nil, err
	}

	abbr, _ := times.Sunrise.Zone()
	return &Result{
		Date:             utils.FormatFormDate(day),
		Location:         req.Location,
		TimeZone:         id,
		ZoneAbbreviation: abbr,
		DaylightSavings:  req.DaylightSavings,
		Engine:           s.engine.Name(),
		Sunrise:          utils.FormatClock(times.Sunrise),
		Sunset:           utils.FormatClock(times.Sunset),
		SolarNoon:        utils.FormatClock(times.SolarNoon),
		DayLength:        utils.FormatDuration(times.Sunrise, times.Sunset),
		SunriseTime:      times.Sunrise,
		SunsetTime:       times.Sunset,
	}, nil
}
