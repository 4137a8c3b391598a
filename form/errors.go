package form

import (
	"errors"
	"fmt"
)

// Reason classifies why a submission was rejected.
type Reason string

const (
	ReasonMissingDate            Reason = "missing_date"
	ReasonInvalidNumber          Reason = "invalid_number"
	ReasonLatitudeRange          Reason = "latitude_out_of_range"
	ReasonLongitudeRange         Reason = "longitude_out_of_range"
	ReasonMinutesSecondsRange    Reason = "minutes_seconds_out_of_range"
	ReasonInvalidHemisphere      Reason = "invalid_hemisphere"
	ReasonInvalidDaylightSavings Reason = "invalid_daylight_savings"
)

var (
	ErrMissingDate            = errors.New("please select a date")
	ErrInvalidNumber          = errors.New("invalid number")
	ErrLatitudeRange          = errors.New("latitude degrees out of range")
	ErrLongitudeRange         = errors.New("longitude degrees out of range")
	ErrMinutesSecondsRange    = errors.New("minutes/seconds out of range")
	ErrInvalidHemisphere      = errors.New("invalid hemisphere")
	ErrInvalidDaylightSavings = errors.New("invalid daylight savings option")
)

var reasonErrors = map[Reason]error{
	ReasonMissingDate:            ErrMissingDate,
	ReasonInvalidNumber:          ErrInvalidNumber,
	ReasonLatitudeRange:          ErrLatitudeRange,
	ReasonLongitudeRange:         ErrLongitudeRange,
	ReasonMinutesSecondsRange:    ErrMinutesSecondsRange,
	ReasonInvalidHemisphere:      ErrInvalidHemisphere,
	ReasonInvalidDaylightSavings: ErrInvalidDaylightSavings,
}

// ValidationError represents a rejected submission. Message is the short
// notification shown to the user.
type ValidationError struct {
	Reason  Reason
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Unwrap returns the sentinel error for the reason.
func (e *ValidationError) Unwrap() error {
	return reasonErrors[e.Reason]
}

func reject(reason Reason, field, message string) *ValidationError {
	return &ValidationError{Reason: reason, Field: field, Message: message}
}
