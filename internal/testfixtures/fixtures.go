package testfixtures

import (
	"time"

	"github.com/example/trip-linker/internal/dates"
	"github.com/example/trip-linker/internal/destinations"
	"github.com/example/trip-linker/internal/holidays"
)

var referenceTime = time.Date(2026, time.May, 15, 10, 0, 0, 0, time.UTC)

// ReferenceTime is the "today" shared by fixtures: 15 May 2026, between the
// Easter and the summer break of the sample calendar.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Destinations -----------------------------

// DestinationOption configures a generated destination record.
type DestinationOption func(*destinations.Record)

// NewDestination returns a record for id with portal names derived from
// name and country.
func NewDestination(id, name, countryDE string, opts ...DestinationOption) destinations.Record {
	record := destinations.Record{
		ID:            id,
		Name:          name,
		Country:       countryDE,
		CountryDE:     countryDE,
		KiwiSlug:      id + "-" + slug(countryDE),
		AirbnbFormat:  name + "--" + countryDE,
		BookingFormat: name,
		Lat:           45,
		Lon:           10,
	}
	for _, opt := range opts {
		opt(&record)
	}
	return record
}

// WithCoordinates sets latitude and longitude.
func WithCoordinates(lat, lon float64) DestinationOption {
	return func(r *destinations.Record) {
		r.Lat, r.Lon = lat, lon
	}
}

// WithKiwiSlug overrides the flight search slug.
func WithKiwiSlug(kiwiSlug string) DestinationOption {
	return func(r *destinations.Record) {
		r.KiwiSlug = kiwiSlug
	}
}

// WithCountry sets the English country name.
func WithCountry(country string) DestinationOption {
	return func(r *destinations.Record) {
		r.Country = country
	}
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ':
			out = append(out, '-')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// Mallorca is the destination used for exact URL expectations.
func Mallorca() destinations.Record {
	return NewDestination("mallorca", "Mallorca", "Spanien",
		WithCountry("Spain"),
		WithKiwiSlug("palma-de-mallorca-spanien"),
		WithCoordinates(39.5696, 2.6502),
	)
}

// SampleDataset returns two departure cities and three destinations.
func SampleDataset() destinations.Dataset {
	return destinations.Dataset{
		DepartureCities: []destinations.DepartureCity{
			{ID: "frankfurt-am-main", Name: "Frankfurt am Main"},
			{ID: "muenchen", Name: "München"},
		},
		Destinations: []destinations.Record{
			Mallorca(),
			NewDestination("kreta", "Kreta", "Griechenland",
				WithCountry("Greece"),
				WithKiwiSlug("heraklion-griechenland"),
				WithCoordinates(35.3387, 25.1442),
			),
			NewDestination("madeira", "Madeira", "Portugal",
				WithKiwiSlug("funchal-portugal"),
				WithCoordinates(32.6669, -16.9241),
			),
		},
	}
}

// ------------------------------- Holidays -------------------------------

// HolidayPeriod builds a period from ISO dates with the year derived from from.
func HolidayPeriod(id, name, emoji, from, to string) holidays.Period {
	start := dates.MustParseISO(from)
	return holidays.Period{
		ID:    id,
		Name:  name,
		Emoji: emoji,
		From:  start,
		To:    dates.MustParseISO(to),
		Year:  start.Year(),
	}
}

// SampleHolidays returns a Hessen calendar around ReferenceTime: one past
// period, two within the default window and one beyond it.
func SampleHolidays() holidays.Catalog {
	return holidays.Catalog{
		Region: "Hessen",
		Periods: []holidays.Period{
			HolidayPeriod("ostern-2026", "Osterferien", "🐣", "2026-03-30", "2026-04-10"),
			HolidayPeriod("sommer-2026", "Sommerferien", "☀️", "2026-06-29", "2026-08-07"),
			HolidayPeriod("herbst-2027", "Herbstferien", "🍂", "2027-10-04", "2027-10-16"),
			HolidayPeriod("sommer-2028", "Sommerferien", "☀️", "2028-06-26", "2028-08-04"),
		},
	}
}
