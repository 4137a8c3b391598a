// Package form validates the sunrise/sunset input form.
//
// A Submission holds the raw values of every field exactly as entered.
// Validate checks them in a fixed order and stops at the first failure:
//
//	req, err := form.Validate(sub)
//	var verr *form.ValidationError
//	if errors.As(err, &verr) {
//		fmt.Println(verr.Message)
//	}
package form

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/devskill-org/daylight/geo"
)

// DatePlaceholder is the label of the date button before a date is chosen.
const DatePlaceholder = "Choose Date"

// Submission holds the raw form values.
type Submission struct {
	Date            string `json:"date"`
	LatDegrees      string `json:"lat_degrees"`
	LatMinutes      string `json:"lat_minutes"`
	LatSeconds      string `json:"lat_seconds"`
	LatHemisphere   string `json:"lat_hemisphere"`
	LongDegrees     string `json:"long_degrees"`
	LongMinutes     string `json:"long_minutes"`
	LongSeconds     string `json:"long_seconds"`
	LongHemisphere  string `json:"long_hemisphere"`
	TimeZone        string `json:"time_zone"`
	DaylightSavings string `json:"daylight_savings"`
}

// Request is a validated submission.
type Request struct {
	Date            string
	Latitude        geo.Coordinate
	Longitude       geo.Coordinate
	Location        geo.Location
	TimeZone        string
	DaylightSavings bool
}

type numberField struct {
	name  string
	value string
	out   *float64
}

// Validate checks a submission and returns the validated request.
// Failures are always of type *ValidationError.
func Validate(s Submission) (*Request, error) {
	date := strings.TrimSpace(s.Date)
	if date == "" || strings.EqualFold(date, DatePlaceholder) {
		return nil, reject(ReasonMissingDate, "date", "Please select a date")
	}

	var lat, long geo.Coordinate
	fields := []numberField{
		{"lat_degrees", s.LatDegrees, &lat.Degrees},
		{"lat_minutes", s.LatMinutes, &lat.Minutes},
		{"lat_seconds", s.LatSeconds, &lat.Seconds},
		{"long_degrees", s.LongDegrees, &long.Degrees},
		{"long_minutes", s.LongMinutes, &long.Minutes},
		{"long_seconds", s.LongSeconds, &long.Seconds},
	}
	for _, f := range fields {
		v, ok := parseNumber(f.value)
		if !ok {
			return nil, reject(ReasonInvalidNumber, f.name, "Please enter valid numbers for latitude and longitude")
		}
		*f.out = v
	}

	if lat.Degrees < -90 || lat.Degrees > 90 {
		return nil, reject(ReasonLatitudeRange, "lat_degrees", "Latitude degrees must be between -90 and 90")
	}
	if long.Degrees < -180 || long.Degrees > 180 {
		return nil, reject(ReasonLongitudeRange, "long_degrees", "Longitude degrees must be between -180 and 180")
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"lat_minutes", lat.Minutes},
		{"long_minutes", long.Minutes},
		{"lat_seconds", lat.Seconds},
		{"long_seconds", long.Seconds},
	} {
		if f.value < 0 || f.value >= 60 {
			return nil, reject(ReasonMinutesSecondsRange, f.name, "Minutes and seconds must be between 0 and 59")
		}
	}

	var err error
	if lat.Hemisphere, err = geo.ParseHemisphere(geo.Latitude, s.LatHemisphere); err != nil {
		return nil, reject(ReasonInvalidHemisphere, "lat_hemisphere", "Latitude hemisphere must be N or S")
	}
	if long.Hemisphere, err = geo.ParseHemisphere(geo.Longitude, s.LongHemisphere); err != nil {
		return nil, reject(ReasonInvalidHemisphere, "long_hemisphere", "Longitude hemisphere must be E or W")
	}

	loc, err := geo.NewLocation(lat, long)
	if err != nil {
		var rerr *geo.RangeError
		if errors.As(err, &rerr) && rerr.Axis == geo.Longitude {
			return nil, reject(ReasonLongitudeRange, "longitude", "Longitude must be between -180 and 180")
		}
		return nil, reject(ReasonLatitudeRange, "latitude", "Latitude must be between -90 and 90")
	}

	dst, ok := ParseDaylightSavings(s.DaylightSavings)
	if !ok {
		return nil, reject(ReasonInvalidDaylightSavings, "daylight_savings", "Daylight savings must be Yes or No")
	}

	return &Request{
		Date:            date,
		Latitude:        lat,
		Longitude:       long,
		Location:        loc,
		TimeZone:        strings.TrimSpace(s.TimeZone),
		DaylightSavings: dst,
	}, nil
}

// ParseDaylightSavings parses the Yes/No selector. An empty value means Yes.
func ParseDaylightSavings(s string) (dst bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yes":
		return true, true
	case "no":
		return false, true
	}
	return false, false
}

// parseNumber parses a finite decimal number.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
