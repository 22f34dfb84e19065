// Package links derives the deep links into the travel portals from a
// resolved parameter bundle.
//
// Every builder is total: missing destination fields produce a malformed but
// well-formed string instead of an error. Pre-formatted portal fields
// (kiwiSlug, bookingFormat, airbnbFormat) are inserted verbatim.
package links

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/example/trip-linker/internal/dates"
	"github.com/example/trip-linker/internal/destinations"
)

// Category groups link descriptors by the kind of portal.
type Category string

const (
	CategoryFlight        Category = "flight"
	CategoryAccommodation Category = "accommodation"
	CategoryCar           Category = "car"
	CategoryInfo          Category = "info"
)

// Descriptor is one generated link with its display metadata.
type Descriptor struct {
	Category    Category `json:"type"`
	DisplayName string   `json:"name"`
	ShortName   string   `json:"shortName"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	URL         string   `json:"url"`
}

// Params is the immutable input of one derivation.
type Params struct {
	Destination     destinations.Record
	DateFrom        dates.Date
	DateTo          dates.Date
	FlexDays        int
	Adults          int
	Bedrooms        int
	CheckedBags     int
	DepartureCityID string
	RadiusKm        int
	DriverAge       int
}

const (
	checkedBagToken  = "1.1"
	carryOnToken     = "1.0"
	bagSeparator     = "_"
	bagTerminator    = "-"
	carHour          = 10
	googleSearchBase = "https://www.google.de/search?q="
)

// BaggageString encodes one token per adult, checked-bag travelers first,
// e.g. "1.1_1.0_1.0-" for three adults with one checked bag. checkedBags is
// clamped to [0, adults].
func BaggageString(adults, checkedBags int) string {
	if adults < 0 {
		adults = 0
	}
	checkedBags = min(max(checkedBags, 0), adults)

	tokens := make([]string, adults)
	for i := range tokens {
		if i < checkedBags {
			tokens[i] = checkedBagToken
		} else {
			tokens[i] = carryOnToken
		}
	}
	return strings.Join(tokens, bagSeparator) + bagTerminator
}

// FlightURL builds the Kiwi.com search for the flex-narrowed window.
func FlightURL(p Params) string {
	flex := dates.CalculateFlexDates(p.DateFrom, p.DateTo, p.FlexDays)
	return fmt.Sprintf(
		"https://www.kiwi.com/de/search/results/%s-deutschland-%dkm/%s/%s_flex%d/%s_flex%d/?returnToDifferentAirport=false&adults=%d&children=0&infants=0&bags=%s",
		p.DepartureCityID, p.RadiusKm, p.Destination.KiwiSlug,
		flex.Outbound.ISO(), p.FlexDays, flex.Return.ISO(), p.FlexDays,
		p.Adults, BaggageString(p.Adults, p.CheckedBags),
	)
}

// BookingURL builds the Booking.com search restricted to entire places with
// at least Bedrooms bedrooms.
func BookingURL(p Params) string {
	return fmt.Sprintf(
		"https://www.booking.com/searchresults.de.html?ss=%s&checkin=%s&checkout=%s&group_adults=%d&no_rooms=%d&nflt=ht_id%%3D201%%3Bentire_place_bedroom_count%%3D%d",
		p.Destination.BookingFormat, p.DateFrom.ISO(), p.DateTo.ISO(), p.Adults, p.Bedrooms, p.Bedrooms,
	)
}

// AirbnbURL builds the Airbnb homes search.
func AirbnbURL(p Params) string {
	return fmt.Sprintf(
		"https://www.airbnb.de/s/%s/homes?checkin=%s&checkout=%s&adults=%d&min_bedrooms=%d",
		p.Destination.AirbnbFormat, p.DateFrom.ISO(), p.DateTo.ISO(), p.Adults, p.Bedrooms,
	)
}

// CarURL builds the Kiwi Cars search with identical pick-up and drop-off
// location, both at 10:00.
func CarURL(p Params) string {
	name := url.QueryEscape(p.Destination.Name)
	coords := formatCoordinate(p.Destination.Lat) + "%2C" + formatCoordinate(p.Destination.Lon)
	return fmt.Sprintf(
		"https://cars.kiwi.com/search-results?preflang=de&locationName=%s&dropLocationName=%s&coordinates=%s&dropCoordinates=%s&driversAge=%d&puDay=%d&puMonth=%d&puYear=%d&puMinute=0&puHour=%d&doDay=%d&doMonth=%d&doYear=%d&doMinute=0&doHour=%d&ftsType=C&dropFtsType=C",
		name, name, coords, coords, p.DriverAge,
		p.DateFrom.Day(), int(p.DateFrom.Month()), p.DateFrom.Year(), carHour,
		p.DateTo.Day(), int(p.DateTo.Month()), p.DateTo.Year(), carHour,
	)
}

// AdvisoryURL searches the Foreign Office travel advice for the country.
func AdvisoryURL(p Params) string {
	return googleSearchBase + encodeComponent("auswärtiges amt reisehinweise "+p.Destination.CountryDE)
}

// WeatherURL searches the travel weather for the destination.
func WeatherURL(p Params) string {
	return googleSearchBase + encodeComponent("wetter.de reisewetter "+p.Destination.Name+" "+p.Destination.CountryDE)
}

// Generate returns the six link descriptors in their fixed order: flight,
// Booking, Airbnb, car, travel advice, weather.
func Generate(p Params) []Descriptor {
	return []Descriptor{
		{Category: CategoryFlight, DisplayName: "Kiwi.com - Flüge", ShortName: "Flüge", Icon: "✈️", Color: "#007bff", URL: FlightURL(p)},
		{Category: CategoryAccommodation, DisplayName: "Booking.com - Apartments", ShortName: "Booking", Icon: "🏨", Color: "#28a745", URL: BookingURL(p)},
		{Category: CategoryAccommodation, DisplayName: "Airbnb - Unterkünfte", ShortName: "Airbnb", Icon: "🏠", Color: "#28a745", URL: AirbnbURL(p)},
		{Category: CategoryCar, DisplayName: "Kiwi Cars - Mietwagen", ShortName: "Mietwagen", Icon: "🚗", Color: "#ffc107", URL: CarURL(p)},
		{Category: CategoryInfo, DisplayName: "Auswärtiges Amt - Reisehinweise", ShortName: "Reisehinweise", Icon: "⚠️", Color: "#dc3545", URL: AdvisoryURL(p)},
		{Category: CategoryInfo, DisplayName: "Wetter.de - Reisewetter", ShortName: "Wetter", Icon: "🌤️", Color: "#dc3545", URL: WeatherURL(p)},
	}
}

// Text renders descriptors as "icon name" and URL lines, entries separated
// by one blank line.
func Text(descriptors []Descriptor) string {
	entries := make([]string, len(descriptors))
	for i, d := range descriptors {
		entries[i] = d.Icon + " " + d.DisplayName + "\n" + d.URL
	}
	return strings.Join(entries, "\n\n")
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// encodeComponent percent-encodes s for use as a single query value, spaces
// as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
