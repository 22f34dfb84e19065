package links

import (
	"net/url"
	"strings"
	"testing"

	"github.com/example/trip-linker/internal/dates"
	"github.com/example/trip-linker/internal/destinations"
)

func sampleParams() Params {
	return Params{
		Destination: destinations.Record{
			ID:            "mallorca",
			Name:          "Palma de Mallorca",
			Country:       "Spain",
			CountryDE:     "Spanien",
			KiwiSlug:      "palma-de-mallorca-spanien",
			AirbnbFormat:  "Mallorca--Spanien",
			BookingFormat: "Mallorca%2C+Spanien",
			Lat:           39.5696,
			Lon:           2.6502,
		},
		DateFrom:        dates.MustParseISO("2026-07-01"),
		DateTo:          dates.MustParseISO("2026-07-15"),
		FlexDays:        3,
		Adults:          3,
		Bedrooms:        2,
		CheckedBags:     1,
		DepartureCityID: "frankfurt-am-main",
		RadiusKm:        500,
		DriverAge:       35,
	}
}

func TestBaggageString(t *testing.T) {
	tests := []struct {
		name    string
		adults  int
		checked int
		want    string
	}{
		{name: "one checked bag for three adults", adults: 3, checked: 1, want: "1.1_1.0_1.0-"},
		{name: "carry-on only", adults: 2, checked: 0, want: "1.0_1.0-"},
		{name: "everyone checked", adults: 2, checked: 2, want: "1.1_1.1-"},
		{name: "more bags than adults is clamped", adults: 2, checked: 5, want: "1.1_1.1-"},
		{name: "negative bags are clamped", adults: 1, checked: -1, want: "1.0-"},
		{name: "no adults", adults: 0, checked: 1, want: "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BaggageString(tt.adults, tt.checked)
			if got != tt.want {
				t.Fatalf("BaggageString(%d, %d) = %q, want %q", tt.adults, tt.checked, got, tt.want)
			}
			if n := strings.Count(got, checkedBagToken); n > tt.adults {
				t.Fatalf("encoded %d checked travelers for %d adults", n, tt.adults)
			}
		})
	}
}

func TestBuilders(t *testing.T) {
	p := sampleParams()

	tests := []struct {
		name  string
		build func(Params) string
		want  string
	}{
		{
			name:  "flight",
			build: FlightURL,
			want:  "https://www.kiwi.com/de/search/results/frankfurt-am-main-deutschland-500km/palma-de-mallorca-spanien/2026-07-04_flex3/2026-07-12_flex3/?returnToDifferentAirport=false&adults=3&children=0&infants=0&bags=1.1_1.0_1.0-",
		},
		{
			name:  "booking",
			build: BookingURL,
			want:  "https://www.booking.com/searchresults.de.html?ss=Mallorca%2C+Spanien&checkin=2026-07-01&checkout=2026-07-15&group_adults=3&no_rooms=2&nflt=ht_id%3D201%3Bentire_place_bedroom_count%3D2",
		},
		{
			name:  "airbnb",
			build: AirbnbURL,
			want:  "https://www.airbnb.de/s/Mallorca--Spanien/homes?checkin=2026-07-01&checkout=2026-07-15&adults=3&min_bedrooms=2",
		},
		{
			name:  "car",
			build: CarURL,
			want:  "https://cars.kiwi.com/search-results?preflang=de&locationName=Palma+de+Mallorca&dropLocationName=Palma+de+Mallorca&coordinates=39.5696%2C2.6502&dropCoordinates=39.5696%2C2.6502&driversAge=35&puDay=1&puMonth=7&puYear=2026&puMinute=0&puHour=10&doDay=15&doMonth=7&doYear=2026&doMinute=0&doHour=10&ftsType=C&dropFtsType=C",
		},
		{
			name:  "travel advice",
			build: AdvisoryURL,
			want:  "https://www.google.de/search?q=ausw%C3%A4rtiges%20amt%20reisehinweise%20Spanien",
		},
		{
			name:  "weather",
			build: WeatherURL,
			want:  "https://www.google.de/search?q=wetter.de%20reisewetter%20Palma%20de%20Mallorca%20Spanien",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.build(p)
			if got != tt.want {
				t.Fatalf("unexpected url\n got: %s\nwant: %s", got, tt.want)
			}
			if _, err := url.Parse(got); err != nil {
				t.Fatalf("url does not parse: %v", err)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Run("six descriptors in fixed order", func(t *testing.T) {
		got := Generate(sampleParams())
		wantShort := []string{"Flüge", "Booking", "Airbnb", "Mietwagen", "Reisehinweise", "Wetter"}
		wantCategory := []Category{CategoryFlight, CategoryAccommodation, CategoryAccommodation, CategoryCar, CategoryInfo, CategoryInfo}
		if len(got) != 6 {
			t.Fatalf("expected 6 descriptors, got %d", len(got))
		}
		for i := range got {
			if got[i].ShortName != wantShort[i] || got[i].Category != wantCategory[i] {
				t.Fatalf("position %d: got %s/%s", i, got[i].Category, got[i].ShortName)
			}
			if got[i].URL == "" || got[i].Icon == "" || got[i].Color == "" {
				t.Fatalf("position %d: incomplete descriptor %+v", i, got[i])
			}
		}
	})

	t.Run("accommodation uses raw dates and flight uses flex dates", func(t *testing.T) {
		got := Generate(sampleParams())
		if !strings.Contains(got[0].URL, "/2026-07-04_flex3/") || strings.Contains(got[0].URL, "2026-07-01") {
			t.Fatalf("flight link should use flex dates: %s", got[0].URL)
		}
		if !strings.Contains(got[1].URL, "checkin=2026-07-01") || !strings.Contains(got[2].URL, "checkout=2026-07-15") {
			t.Fatalf("accommodation links should use raw dates")
		}
	})

	t.Run("empty destination fields do not fail", func(t *testing.T) {
		p := sampleParams()
		p.Destination = destinations.Record{ID: "blank"}
		got := Generate(p)
		if len(got) != 6 {
			t.Fatalf("expected 6 descriptors, got %d", len(got))
		}
		if !strings.Contains(got[0].URL, "500km//2026-07-04_flex3") {
			t.Fatalf("expected empty slug segment, got %s", got[0].URL)
		}
		if !strings.HasSuffix(got[4].URL, "reisehinweise%20") {
			t.Fatalf("unexpected advisory url %s", got[4].URL)
		}
	})

	t.Run("inverted flex window is passed through", func(t *testing.T) {
		p := sampleParams()
		p.DateTo = dates.MustParseISO("2026-07-03")
		p.FlexDays = 4
		got := FlightURL(p)
		if !strings.Contains(got, "/2026-07-05_flex4/2026-06-29_flex4/") {
			t.Fatalf("expected inverted window in %s", got)
		}
	})
}

func TestText(t *testing.T) {
	descriptors := []Descriptor{
		{Icon: "✈️", DisplayName: "Kiwi.com - Flüge", URL: "https://a.example"},
		{Icon: "🏨", DisplayName: "Booking.com - Apartments", URL: "https://b.example"},
	}
	want := "✈️ Kiwi.com - Flüge\nhttps://a.example\n\n🏨 Booking.com - Apartments\nhttps://b.example"
	if got := Text(descriptors); got != want {
		t.Fatalf("unexpected text %q", got)
	}
	if Text(nil) != "" {
		t.Fatalf("expected empty text for no links")
	}
}
