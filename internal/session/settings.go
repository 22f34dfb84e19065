package session

import (
	"errors"
	"fmt"
	"slices"
)

// SettingsKey is the store key of the remembered party and logistics preferences.
const SettingsKey = "search_settings"

// ErrInvalidParameter is wrapped by every FieldError.
var ErrInvalidParameter = errors.New("session: invalid parameter")

// FieldError reports a rejected setter value.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("session: invalid %s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrInvalidParameter }

// Parameter names used in FieldError.Field and in the stored settings.
const (
	ParamDateFrom      = "dateFrom"
	ParamDateTo        = "dateTo"
	ParamFlexDays      = "flexDays"
	ParamAdults        = "adults"
	ParamBedrooms      = "bedrooms"
	ParamCheckedBags   = "checkedBags"
	ParamDepartureCity = "departureCity"
	ParamRadius        = "radius"
	ParamDriverAge     = "driverAge"
)

const (
	MinFlexDays  = 1
	MaxFlexDays  = 4
	MinDriverAge = 18
	MaxDriverAge = 99
)

// RadiusOptions are the accepted search radii around the departure city in km.
var RadiusOptions = []int{300, 400, 500, 600}

// Settings holds the party and logistics selections that outlive a session.
type Settings struct {
	FlexDays        int    `json:"flexDays"`
	Adults          int    `json:"adults"`
	Bedrooms        int    `json:"bedrooms"`
	CheckedBags     int    `json:"checkedBags"`
	DepartureCityID string `json:"departureCity"`
	RadiusKm        int    `json:"radius"`
	DriverAge       int    `json:"driverAge"`
}

// DefaultSettings returns the initial selections of a new session.
func DefaultSettings() Settings {
	return Settings{
		FlexDays:        3,
		Adults:          3,
		Bedrooms:        2,
		CheckedBags:     1,
		DepartureCityID: "frankfurt-am-main",
		RadiusKm:        500,
		DriverAge:       35,
	}
}

// CityChecker reports whether a departure city id is known.
type CityChecker interface {
	HasDepartureCity(id string) bool
}

func validateFlexDays(n int) error {
	if n < MinFlexDays || n > MaxFlexDays {
		return &FieldError{Field: ParamFlexDays, Message: fmt.Sprintf("must be between %d and %d", MinFlexDays, MaxFlexDays)}
	}
	return nil
}

func validateAdults(n int) error {
	if n < 1 {
		return &FieldError{Field: ParamAdults, Message: "must be at least 1"}
	}
	return nil
}

func validateBedrooms(n int) error {
	if n < 1 {
		return &FieldError{Field: ParamBedrooms, Message: "must be at least 1"}
	}
	return nil
}

func validateCheckedBags(n int) error {
	if n < 0 {
		return &FieldError{Field: ParamCheckedBags, Message: "must not be negative"}
	}
	return nil
}

func validateRadius(km int) error {
	if !slices.Contains(RadiusOptions, km) {
		return &FieldError{Field: ParamRadius, Message: fmt.Sprintf("must be one of %v", RadiusOptions)}
	}
	return nil
}

func validateDriverAge(age int) error {
	if age < MinDriverAge || age > MaxDriverAge {
		return &FieldError{Field: ParamDriverAge, Message: fmt.Sprintf("must be between %d and %d", MinDriverAge, MaxDriverAge)}
	}
	return nil
}

func validateDepartureCity(id string, cities CityChecker) error {
	if id == "" {
		return &FieldError{Field: ParamDepartureCity, Message: "must not be empty"}
	}
	if cities != nil && !cities.HasDepartureCity(id) {
		return &FieldError{Field: ParamDepartureCity, Message: fmt.Sprintf("unknown departure city %q", id)}
	}
	return nil
}

// sanitize replaces every invalid field of restored settings by its default.
func (s Settings) sanitize(cities CityChecker) Settings {
	def := DefaultSettings()
	if validateFlexDays(s.FlexDays) != nil {
		s.FlexDays = def.FlexDays
	}
	if validateAdults(s.Adults) != nil {
		s.Adults = def.Adults
	}
	if validateBedrooms(s.Bedrooms) != nil {
		s.Bedrooms = def.Bedrooms
	}
	if validateCheckedBags(s.CheckedBags) != nil {
		s.CheckedBags = def.CheckedBags
	}
	if validateDepartureCity(s.DepartureCityID, cities) != nil {
		s.DepartureCityID = def.DepartureCityID
	}
	if validateRadius(s.RadiusKm) != nil {
		s.RadiusKm = def.RadiusKm
	}
	if validateDriverAge(s.DriverAge) != nil {
		s.DriverAge = def.DriverAge
	}
	return s
}
