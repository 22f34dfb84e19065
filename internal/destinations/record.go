// Package destinations merges the static destination catalog with sparse,
// user-supplied corrections kept in a persistent key-value store.
package destinations

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrUnknownDestination is returned for ids that are not in the catalog.
	ErrUnknownDestination = errors.New("destinations: unknown destination")
	// ErrUnknownField is returned for field names that cannot be overridden.
	ErrUnknownField = errors.New("destinations: unknown field")
	// ErrInvalidValue is returned when an override value cannot be used for its field.
	ErrInvalidValue = errors.New("destinations: invalid value")
	// ErrInvalidCatalog is returned when the static catalog violates its invariants.
	ErrInvalidCatalog = errors.New("destinations: invalid catalog")
	// ErrNotPersisted marks edits that were applied in memory but could not be
	// written to the store.
	ErrNotPersisted = errors.New("destinations: override not persisted")
)

// Record is a travel destination as defined by the static catalog.
type Record struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Country       string  `json:"country"`
	CountryDE     string  `json:"countryDE"`
	KiwiSlug      string  `json:"kiwiSlug"`
	AirbnbFormat  string  `json:"airbnbFormat"`
	BookingFormat string  `json:"bookingFormat"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
}

// DepartureCity is a selectable flight departure hub.
type DepartureCity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Dataset is the static reference data for destinations.
type Dataset struct {
	DepartureCities []DepartureCity `json:"departureCities"`
	Destinations    []Record        `json:"destinations"`
}

// Validate checks id uniqueness for destinations and departure cities.
func (d Dataset) Validate() error {
	seen := make(map[string]struct{}, len(d.Destinations))
	for i, r := range d.Destinations {
		if strings.TrimSpace(r.ID) == "" {
			return fmt.Errorf("%w: destination %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: duplicate destination id %q", ErrInvalidCatalog, r.ID)
		}
		seen[r.ID] = struct{}{}
	}

	cities := make(map[string]struct{}, len(d.DepartureCities))
	for i, c := range d.DepartureCities {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("%w: departure city %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := cities[c.ID]; dup {
			return fmt.Errorf("%w: duplicate departure city id %q", ErrInvalidCatalog, c.ID)
		}
		cities[c.ID] = struct{}{}
	}
	return nil
}

// Field names a record field that can be overridden.
type Field string

const (
	FieldName          Field = "name"
	FieldCountry       Field = "country"
	FieldCountryDE     Field = "countryDE"
	FieldKiwiSlug      Field = "kiwiSlug"
	FieldAirbnbFormat  Field = "airbnbFormat"
	FieldBookingFormat Field = "bookingFormat"
	FieldLat           Field = "lat"
	FieldLon           Field = "lon"
)

// EditorFields are the fields offered by the correction editor, in display order.
var EditorFields = []Field{FieldKiwiSlug, FieldAirbnbFormat, FieldBookingFormat, FieldLat, FieldLon}

var allFields = map[Field]struct{}{
	FieldName: {}, FieldCountry: {}, FieldCountryDE: {}, FieldKiwiSlug: {},
	FieldAirbnbFormat: {}, FieldBookingFormat: {}, FieldLat: {}, FieldLon: {},
}

// ParseField validates a field name. The id is never overridable.
func ParseField(name string) (Field, error) {
	f := Field(strings.TrimSpace(name))
	if _, ok := allFields[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// Value returns the value of field f in r.
func (r Record) Value(f Field) (any, bool) {
	switch f {
	case FieldName:
		return r.Name, true
	case FieldCountry:
		return r.Country, true
	case FieldCountryDE:
		return r.CountryDE, true
	case FieldKiwiSlug:
		return r.KiwiSlug, true
	case FieldAirbnbFormat:
		return r.AirbnbFormat, true
	case FieldBookingFormat:
		return r.BookingFormat, true
	case FieldLat:
		return r.Lat, true
	case FieldLon:
		return r.Lon, true
	}
	return nil, false
}

// Override is the sparse correction for one destination. Nil fields fall back
// to the catalog value.
type Override struct {
	Name          *string  `json:"name,omitempty"`
	Country       *string  `json:"country,omitempty"`
	CountryDE     *string  `json:"countryDE,omitempty"`
	KiwiSlug      *string  `json:"kiwiSlug,omitempty"`
	AirbnbFormat  *string  `json:"airbnbFormat,omitempty"`
	BookingFormat *string  `json:"bookingFormat,omitempty"`
	Lat           *float64 `json:"lat,omitempty"`
	Lon           *float64 `json:"lon,omitempty"`
}

// Len returns the number of fields set.
func (o Override) Len() int {
	n := 0
	for _, set := range []bool{
		o.Name != nil, o.Country != nil, o.CountryDE != nil, o.KiwiSlug != nil,
		o.AirbnbFormat != nil, o.BookingFormat != nil, o.Lat != nil, o.Lon != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Apply returns r with every set field of o replacing the catalog value.
func (o Override) Apply(r Record) Record {
	if o.Name != nil {
		r.Name = *o.Name
	}
	if o.Country != nil {
		r.Country = *o.Country
	}
	if o.CountryDE != nil {
		r.CountryDE = *o.CountryDE
	}
	if o.KiwiSlug != nil {
		r.KiwiSlug = *o.KiwiSlug
	}
	if o.AirbnbFormat != nil {
		r.AirbnbFormat = *o.AirbnbFormat
	}
	if o.BookingFormat != nil {
		r.BookingFormat = *o.BookingFormat
	}
	if o.Lat != nil {
		r.Lat = *o.Lat
	}
	if o.Lon != nil {
		r.Lon = *o.Lon
	}
	return r
}

// With returns a copy of o with field f set from the raw value. Coordinates
// must parse as decimal degrees within range.
func (o Override) With(f Field, value string) (Override, error) {
	switch f {
	case FieldName:
		o.Name = &value
	case FieldCountry:
		o.Country = &value
	case FieldCountryDE:
		o.CountryDE = &value
	case FieldKiwiSlug:
		o.KiwiSlug = &value
	case FieldAirbnbFormat:
		o.AirbnbFormat = &value
	case FieldBookingFormat:
		o.BookingFormat = &value
	case FieldLat:
		v, err := parseCoordinate(value, 90)
		if err != nil {
			return o, err
		}
		o.Lat = &v
	case FieldLon:
		v, err := parseCoordinate(value, 180)
		if err != nil {
			return o, err
		}
		o.Lon = &v
	default:
		return o, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return o, nil
}

func parseCoordinate(value string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(value, ",", ".")), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidValue, value)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not a finite number", ErrInvalidValue, value)
	}
	if v < -limit || v > limit {
		return 0, fmt.Errorf("%w: %v outside [-%v, %v]", ErrInvalidValue, v, limit, limit)
	}
	return v, nil
}

// Destination is a catalog record merged with its override.
type Destination struct {
	Record
	HasOverride bool `json:"hasOverride"`
}
