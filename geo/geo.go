// Package geo converts degree/minute/second coordinates into the signed
// decimal degrees used by the solar calculators.
package geo

import (
	"fmt"
	"strings"
)

// Hemisphere identifies the side of the equator or prime meridian a
// coordinate lies on.
type Hemisphere string

const (
	North Hemisphere = "N"
	South Hemisphere = "S"
	East  Hemisphere = "E"
	West  Hemisphere = "W"
)

// Axis is the axis a coordinate is measured along.
type Axis int

const (
	Latitude Axis = iota
	Longitude
)

func (a Axis) String() string {
	if a == Latitude {
		return "latitude"
	}
	return "longitude"
}

// MaxDegrees returns the largest magnitude allowed for the axis.
func (a Axis) MaxDegrees() float64 {
	if a == Latitude {
		return 90
	}
	return 180
}

// ParseHemisphere parses a hemisphere selector value for the given axis.
// An empty value selects the first option (N or E).
func ParseHemisphere(axis Axis, s string) (Hemisphere, error) {
	h := Hemisphere(strings.ToUpper(strings.TrimSpace(s)))
	switch axis {
	case Latitude:
		switch h {
		case "":
			return North, nil
		case North, South:
			return h, nil
		}
	case Longitude:
		switch h {
		case "":
			return East, nil
		case East, West:
			return h, nil
		}
	}
	return "", fmt.Errorf("invalid %s hemisphere %q", axis, s)
}

// Negative reports whether the hemisphere yields negative decimal degrees.
func (h Hemisphere) Negative() bool {
	return h == South || h == West
}

// Coordinate is an angle expressed as degrees, minutes and seconds plus
// the hemisphere it lies in.
type Coordinate struct {
	Degrees    float64    `json:"degrees"`
	Minutes    float64    `json:"minutes"`
	Seconds    float64    `json:"seconds"`
	Hemisphere Hemisphere `json:"hemisphere"`
}

// Decimal returns the coordinate as signed decimal degrees.
func (c Coordinate) Decimal() float64 {
	return ToDecimalDegrees(c.Degrees, c.Minutes, c.Seconds, c.Hemisphere.Negative())
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%g°%g'%g\"%s", c.Degrees, c.Minutes, c.Seconds, c.Hemisphere)
}

// ToDecimalDegrees computes degrees + minutes/60 + seconds/3600, negated
// when negative is set (southern or western hemisphere).
func ToDecimalDegrees(degrees, minutes, seconds float64, negative bool) float64 {
	v := degrees + minutes/60 + seconds/3600
	if negative {
		return -v
	}
	return v
}

// Location is a point on the earth's surface in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RangeError is returned by NewLocation when a decimal coordinate falls
// outside the range of its axis.
type RangeError struct {
	Axis  Axis
	Value float64
}

func (e *RangeError) Error() string {
	m := e.Axis.MaxDegrees()
	return fmt.Sprintf("%s must be between %g and %g, got %f", e.Axis, -m, m, e.Value)
}

// NewLocation builds a Location from a latitude and longitude coordinate.
func NewLocation(lat, long Coordinate) (Location, error) {
	loc := Location{Latitude: lat.Decimal(), Longitude: long.Decimal()}
	if err := ValidateLocation(loc); err != nil {
		return Location{}, err
	}
	return loc, nil
}

// ValidateLocation validates that the location is within the ranges
// latitude [-90, 90] and longitude [-180, 180].
func ValidateLocation(loc Location) error {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return &RangeError{Axis: Latitude, Value: loc.Latitude}
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return &RangeError{Axis: Longitude, Value: loc.Longitude}
	}
	return nil
}

func (l Location) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", l.Latitude, l.Longitude)
}
