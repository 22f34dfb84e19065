package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/trip-linker/internal/destinations"
	"github.com/example/trip-linker/internal/holidays"
)

func TestEmbeddedDatasets(t *testing.T) {
	t.Run("destinations", func(t *testing.T) {
		dataset, err := LoadDestinations("")
		if err != nil {
			t.Fatalf("LoadDestinations returned error: %v", err)
		}
		if len(dataset.Destinations) < 15 {
			t.Fatalf("expected at least 15 destinations, got %d", len(dataset.Destinations))
		}
		if dataset.DepartureCities[0].ID != "frankfurt-am-main" {
			t.Fatalf("expected Frankfurt as first departure city, got %+v", dataset.DepartureCities[0])
		}
		for _, d := range dataset.Destinations {
			if d.KiwiSlug == "" || d.AirbnbFormat == "" || d.BookingFormat == "" || d.CountryDE == "" {
				t.Fatalf("destination %s lacks portal fields: %+v", d.ID, d)
			}
			if d.Lat == 0 || d.Lon == 0 {
				t.Fatalf("destination %s lacks coordinates", d.ID)
			}
		}
	})

	t.Run("holidays", func(t *testing.T) {
		c, err := LoadHolidays("")
		if err != nil {
			t.Fatalf("LoadHolidays returned error: %v", err)
		}
		if c.Region != "Hessen" {
			t.Fatalf("unexpected region %q", c.Region)
		}
		for i := 1; i < len(c.Periods); i++ {
			if c.Periods[i].From.Before(c.Periods[i-1].From) {
				t.Fatalf("catalog not chronological at %s", c.Periods[i].ID)
			}
		}
		summer, ok := c.Find("sommer-2026")
		if !ok || summer.From.ISO() != "2026-06-29" || summer.To.ISO() != "2026-08-07" || summer.Emoji != "☀️" {
			t.Fatalf("unexpected summer break %+v", summer)
		}
	})
}

func TestParseHolidays(t *testing.T) {
	t.Run("derives missing year", func(t *testing.T) {
		c, err := ParseHolidays([]byte(`
region: Hessen
periods:
  - id: weihnachten-2026
    name: Weihnachtsferien
    from: "2026-12-23"
    to: "2027-01-12"
`))
		if err != nil {
			t.Fatalf("ParseHolidays returned error: %v", err)
		}
		if c.Periods[0].Year != 2026 {
			t.Fatalf("expected derived year 2026, got %d", c.Periods[0].Year)
		}
	})

	t.Run("rejects inverted ranges", func(t *testing.T) {
		_, err := ParseHolidays([]byte(`periods: [{id: a, from: "2026-05-02", to: "2026-05-01"}]`))
		if !errors.Is(err, holidays.ErrInvalidPeriod) {
			t.Fatalf("expected ErrInvalidPeriod, got %v", err)
		}
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		if _, err := ParseHolidays([]byte(`periods: [{id: a, from: "02.05.2026", to: "2026-05-03"}]`)); err == nil {
			t.Fatalf("expected decode error")
		}
	})

	t.Run("rejects empty calendars", func(t *testing.T) {
		if _, err := ParseHolidays([]byte(`region: Hessen`)); !errors.Is(err, ErrEmptyDataset) {
			t.Fatalf("expected ErrEmptyDataset, got %v", err)
		}
	})
}

func TestParseDestinations(t *testing.T) {
	t.Run("duplicate ids", func(t *testing.T) {
		_, err := ParseDestinations([]byte(`destinations: [{id: a, name: A}, {id: a, name: B}]`))
		if !errors.Is(err, destinations.ErrInvalidCatalog) {
			t.Fatalf("expected ErrInvalidCatalog, got %v", err)
		}
	})

	t.Run("file override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "destinations.yaml")
		content := "departureCities: [{id: koeln, name: Köln}]\ndestinations:\n  - {id: lissabon, name: Lissabon, countryDE: Portugal, lat: 38.7223, lon: -9.1393}\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write dataset: %v", err)
		}
		dataset, err := LoadDestinations(path)
		if err != nil {
			t.Fatalf("LoadDestinations returned error: %v", err)
		}
		if len(dataset.Destinations) != 1 || dataset.Destinations[0].Lon != -9.1393 {
			t.Fatalf("unexpected dataset %+v", dataset)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadDestinations(filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected os.ErrNotExist, got %v", err)
		}
	})
}
