package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/trip-linker/internal/dates"
	"github.com/example/trip-linker/internal/destinations"
	"github.com/example/trip-linker/internal/holidays"
	"github.com/example/trip-linker/internal/persistence"
	"github.com/example/trip-linker/internal/persistence/memory"
	"github.com/example/trip-linker/internal/session"
)

var plannerNow = time.Date(2026, time.May, 15, 10, 0, 0, 0, time.UTC)

func plannerDataset() destinations.Dataset {
	return destinations.Dataset{
		DepartureCities: []destinations.DepartureCity{
			{ID: "frankfurt-am-main", Name: "Frankfurt am Main"},
			{ID: "muenchen", Name: "München"},
		},
		Destinations: []destinations.Record{
			{
				ID: "mallorca", Name: "Mallorca", Country: "Spain", CountryDE: "Spanien",
				KiwiSlug: "palma-de-mallorca-spanien", AirbnbFormat: "Mallorca--Spanien",
				BookingFormat: "Mallorca", Lat: 39.5696, Lon: 2.6502,
			},
			{
				ID: "kreta", Name: "Kreta", Country: "Greece", CountryDE: "Griechenland",
				KiwiSlug: "heraklion-griechenland", AirbnbFormat: "Kreta--Griechenland",
				BookingFormat: "Kreta", Lat: 35.3387, Lon: 25.1442,
			},
		},
	}
}

func plannerHolidays() holidays.Catalog {
	period := func(id, name, from, to string) holidays.Period {
		f := dates.MustParseISO(from)
		return holidays.Period{ID: id, Name: name, From: f, To: dates.MustParseISO(to), Year: f.Year()}
	}
	return holidays.Catalog{
		Region: "Hessen",
		Periods: []holidays.Period{
			period("ostern-2026", "Osterferien", "2026-03-30", "2026-04-10"),
			period("sommer-2026", "Sommerferien", "2026-06-29", "2026-08-07"),
			period("herbst-2027", "Herbstferien", "2027-10-04", "2027-10-16"),
			period("sommer-2028", "Sommerferien", "2028-06-26", "2028-08-04"),
		},
	}
}

type openerStub struct {
	urls    []string
	blocked map[int]bool
}

func (o *openerStub) Open(_ context.Context, url string) error {
	i := len(o.urls)
	o.urls = append(o.urls, url)
	if o.blocked[i] {
		return errors.New("popup blocked")
	}
	return nil
}

type clipboardStub struct {
	text string
	err  error
}

func (c *clipboardStub) WriteText(_ context.Context, text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

type rejectingKV struct {
	persistence.KeyValueStore
}

func (rejectingKV) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

type plannerHarness struct {
	planner   *Planner
	kv        persistence.KeyValueStore
	opener    *openerStub
	clipboard *clipboardStub
}

func newPlannerHarness(t *testing.T, kv persistence.KeyValueStore) plannerHarness {
	t.Helper()
	if kv == nil {
		kv = memory.New()
	}
	store, err := destinations.NewStore(context.Background(), plannerDataset(), kv, nil)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	h := plannerHarness{kv: kv, opener: &openerStub{blocked: map[int]bool{}}, clipboard: &clipboardStub{}}
	h.planner = NewPlanner(PlannerConfig{
		Holidays:     plannerHolidays(),
		Destinations: store,
		Sessions:     NewSessionRegistry(time.Hour, 8, sequentialIDs(), func() time.Time { return plannerNow }),
		Store:        kv,
		Opener:       h.opener,
		Clipboard:    h.clipboard,
		Sleep:        func(time.Duration) {},
		Now:          func() time.Time { return plannerNow },
	})
	return h
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return vErr.FieldErrors
}

func TestPlannerHolidays(t *testing.T) {
	h := newPlannerHarness(t, nil)
	ctx := context.Background()

	t.Run("default window", func(t *testing.T) {
		result := h.planner.Holidays(ctx, HolidayQuery{})
		if len(result.Periods) != 3 || len(result.All) != 4 {
			t.Fatalf("expected 3 windowed of 4 periods, got %d of %d", len(result.Periods), len(result.All))
		}
		if result.Region != "Hessen" {
			t.Fatalf("unexpected region %q", result.Region)
		}
		if got := result.AvailableYears; len(got) != 2 || got[0] != 2026 || got[1] != 2027 {
			t.Fatalf("unexpected available years %v", got)
		}
		if !result.Periods[0].IsPast || result.Periods[1].Status() != holidays.StatusFuture {
			t.Fatalf("unexpected temporal flags %+v", result.Periods[:2])
		}
	})

	t.Run("year keeps the windowed years selectable", func(t *testing.T) {
		result := h.planner.Holidays(ctx, HolidayQuery{Year: intPtr(2027)})
		if len(result.Periods) != 1 || result.Periods[0].ID != "herbst-2027" {
			t.Fatalf("unexpected periods %+v", result.Periods)
		}
		if len(result.AvailableYears) != 2 {
			t.Fatalf("expected years taken before year filter, got %v", result.AvailableYears)
		}
	})

	t.Run("window disabled", func(t *testing.T) {
		result := h.planner.Holidays(ctx, HolidayQuery{WindowMonths: intPtr(0)})
		if len(result.Periods) != 4 {
			t.Fatalf("expected every period, got %d", len(result.Periods))
		}
	})
}

func TestPlannerDestinationOverrides(t *testing.T) {
	ctx := context.Background()

	t.Run("update and reset", func(t *testing.T) {
		h := newPlannerHarness(t, nil)
		change, err := h.planner.UpdateDestinationField(ctx, "kreta", "lat", "35,5")
		if err != nil {
			t.Fatalf("UpdateDestinationField returned error: %v", err)
		}
		if !change.Persisted || change.Destination.Lat != 35.5 || !change.Destination.HasOverride {
			t.Fatalf("unexpected change %+v", change)
		}

		original, err := h.planner.OriginalValue("kreta", "lat")
		if err != nil || original.Value != 35.3387 {
			t.Fatalf("expected catalog latitude, got %+v (%v)", original, err)
		}

		change, err = h.planner.ResetDestination(ctx, "kreta")
		if err != nil {
			t.Fatalf("ResetDestination returned error: %v", err)
		}
		if change.Destination.Lat != 35.3387 || change.Destination.HasOverride {
			t.Fatalf("expected catalog values after reset, got %+v", change.Destination)
		}
	})

	t.Run("validation and lookup errors", func(t *testing.T) {
		h := newPlannerHarness(t, nil)
		_, err := h.planner.UpdateDestinationField(ctx, "kreta", "id", "x")
		if fields := fieldErrors(t, err); fields["field"] != msgUnknownField {
			t.Fatalf("unexpected field errors %v", fields)
		}
		_, err = h.planner.UpdateDestinationField(ctx, "kreta", "lon", "east")
		if fields := fieldErrors(t, err); fields["value"] != msgInvalidValue {
			t.Fatalf("unexpected field errors %v", fields)
		}
		if _, err := h.planner.UpdateDestinationField(ctx, "atlantis", "lat", "1"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := h.planner.Destination(ctx, "atlantis"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := h.planner.OriginalValue("atlantis", "lat"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("store failure keeps the override in memory", func(t *testing.T) {
		h := newPlannerHarness(t, rejectingKV{KeyValueStore: memory.New()})
		change, err := h.planner.UpdateDestinationField(ctx, "mallorca", "kiwiSlug", "palma-spanien")
		if err != nil {
			t.Fatalf("expected non-fatal persistence failure, got %v", err)
		}
		if change.Persisted || change.Destination.KiwiSlug != "palma-spanien" {
			t.Fatalf("unexpected change %+v", change)
		}
		dest, err := h.planner.Destination(ctx, "mallorca")
		if err != nil || dest.KiwiSlug != "palma-spanien" {
			t.Fatalf("expected in-memory override, got %+v (%v)", dest, err)
		}
	})
}

func TestPlannerSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	h := newPlannerHarness(t, nil)

	view, err := h.planner.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if view.ID != "session-1" || view.State != session.StateIdle || view.Settings != session.DefaultSettings() {
		t.Fatalf("unexpected new session %+v", view)
	}

	t.Run("generate requires destination and dates", func(t *testing.T) {
		_, err := h.planner.Generate(ctx, view.ID, "")
		fields := fieldErrors(t, err)
		if fields["destinationId"] != msgDestinationRequired || fields[session.ParamDateFrom] != msgDatesRequired {
			t.Fatalf("unexpected field errors %v", fields)
		}
	})

	t.Run("patch collects rejected fields", func(t *testing.T) {
		_, err := h.planner.UpdateSession(ctx, view.ID, SessionPatch{
			FlexDays:        intPtr(5),
			Adults:          intPtr(2),
			RadiusKm:        intPtr(450),
			DepartureCityID: strPtr("berlin"),
			DateFrom:        strPtr("1.7.2026"),
		})
		fields := fieldErrors(t, err)
		for _, field := range []string{session.ParamFlexDays, session.ParamRadius, session.ParamDepartureCity, session.ParamDateFrom} {
			if fields[field] == "" {
				t.Fatalf("expected error for %s in %v", field, fields)
			}
		}
		current, _ := h.planner.Session(ctx, view.ID)
		if current.Settings.Adults != 2 || current.Settings.FlexDays != 3 {
			t.Fatalf("expected valid fields applied and invalid kept, got %+v", current.Settings)
		}
	})

	t.Run("holiday selection and generate", func(t *testing.T) {
		updated, err := h.planner.UpdateSession(ctx, view.ID, SessionPatch{
			HolidayID:       strPtr("sommer-2026"),
			DepartureCityID: strPtr("muenchen"),
		})
		if err != nil {
			t.Fatalf("UpdateSession returned error: %v", err)
		}
		if updated.DateFrom.ISO() != "2026-06-29" || updated.DateTo.ISO() != "2026-08-07" {
			t.Fatalf("expected holiday dates, got %s..%s", updated.DateFrom, updated.DateTo)
		}
		if updated.FlexDates == nil || updated.FlexDates.Outbound.ISO() != "2026-07-02" {
			t.Fatalf("unexpected flex dates %+v", updated.FlexDates)
		}

		generated, err := h.planner.Generate(ctx, view.ID, "mallorca")
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if generated.State != session.StateHasResults || len(generated.Links) != 6 {
			t.Fatalf("unexpected generated view %+v", generated)
		}
		if !strings.Contains(generated.Links[0].URL, "/muenchen-deutschland-500km/palma-de-mallorca-spanien/2026-07-02_flex3/") {
			t.Fatalf("unexpected flight url %s", generated.Links[0].URL)
		}
	})

	t.Run("settings are remembered for new sessions", func(t *testing.T) {
		next, err := h.planner.CreateSession(ctx)
		if err != nil {
			t.Fatalf("CreateSession returned error: %v", err)
		}
		if next.Settings.DepartureCityID != "muenchen" || next.Settings.Adults != 2 {
			t.Fatalf("expected remembered settings, got %+v", next.Settings)
		}
		if !next.DateFrom.IsZero() {
			t.Fatalf("expected dates not to be remembered, got %s", next.DateFrom)
		}
	})

	t.Run("unknown holiday and destination", func(t *testing.T) {
		_, err := h.planner.UpdateSession(ctx, view.ID, SessionPatch{HolidayID: strPtr("winter-1999")})
		if fields := fieldErrors(t, err); fields["holidayId"] != msgUnknownHoliday {
			t.Fatalf("unexpected field errors %v", fields)
		}
		if _, err := h.planner.Generate(ctx, view.ID, "atlantis"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		if _, err := h.planner.Session(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
		if err := h.planner.DeleteSession(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestPlannerSettingsPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	h := newPlannerHarness(t, rejectingKV{KeyValueStore: memory.New()})

	view, _ := h.planner.CreateSession(ctx)
	updated, err := h.planner.UpdateSession(ctx, view.ID, SessionPatch{Bedrooms: intPtr(3)})
	if err != nil {
		t.Fatalf("expected non-fatal persistence failure, got %v", err)
	}
	if updated.SettingsPersisted || updated.Settings.Bedrooms != 3 {
		t.Fatalf("unexpected view %+v", updated)
	}

	dateOnly, err := h.planner.UpdateSession(ctx, view.ID, SessionPatch{DateFrom: strPtr("2026-07-01")})
	if err != nil || !dateOnly.SettingsPersisted {
		t.Fatalf("expected date change not to touch settings, got %+v (%v)", dateOnly, err)
	}
}

func TestPlannerOpenAndCopy(t *testing.T) {
	ctx := context.Background()
	h := newPlannerHarness(t, nil)

	view, _ := h.planner.CreateSession(ctx)
	if _, err := h.planner.UpdateSession(ctx, view.ID, SessionPatch{DateFrom: strPtr("2026-07-01"), DateTo: strPtr("2026-07-15")}); err != nil {
		t.Fatalf("UpdateSession returned error: %v", err)
	}

	t.Run("copy without links", func(t *testing.T) {
		result, err := h.planner.CopyLinks(ctx, view.ID)
		if err != nil || result.Copied || result.Text != "" {
			t.Fatalf("expected nothing copied, got %+v (%v)", result, err)
		}
	})

	if _, err := h.planner.Generate(ctx, view.ID, "kreta"); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	t.Run("open all reports blocked tabs", func(t *testing.T) {
		h.opener.blocked = map[int]bool{1: true, 4: true}
		result, err := h.planner.OpenAll(ctx, view.ID)
		if err != nil {
			t.Fatalf("OpenAll returned error: %v", err)
		}
		if result.Opened != 4 || result.Blocked != 2 || result.Total != 6 {
			t.Fatalf("unexpected summary %+v", result.Summary)
		}
		if result.Message != "4 von 6 Tabs geöffnet. 2 blockiert - nutze die Buttons unten." {
			t.Fatalf("unexpected message %q", result.Message)
		}
	})

	t.Run("open single", func(t *testing.T) {
		h.opener.urls = nil
		h.opener.blocked = map[int]bool{}
		result, err := h.planner.OpenLink(ctx, view.ID, 2)
		if err != nil || !result.Opened || len(h.opener.urls) != 1 || h.opener.urls[0] != result.URL {
			t.Fatalf("unexpected open result %+v (%v)", result, err)
		}
		if _, err := h.planner.OpenLink(ctx, view.ID, 6); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for out of range index, got %v", err)
		}

		h.opener.blocked = map[int]bool{1: true}
		blocked, err := h.planner.OpenLink(ctx, view.ID, 0)
		if err != nil || blocked.Opened || blocked.Message != msgBlocked {
			t.Fatalf("expected blocked result, got %+v (%v)", blocked, err)
		}
	})

	t.Run("copy", func(t *testing.T) {
		result, err := h.planner.CopyLinks(ctx, view.ID)
		if err != nil || !result.Copied || h.clipboard.text != result.Text {
			t.Fatalf("unexpected copy result %+v (%v)", result, err)
		}
		if strings.Count(result.Text, "\n\n") != 5 {
			t.Fatalf("expected six blocks, got %q", result.Text)
		}

		h.clipboard.err = errors.New("no display")
		failed, err := h.planner.CopyLinks(ctx, view.ID)
		if err != nil || failed.Copied || failed.Text == "" || failed.Message != msgCopyFailed {
			t.Fatalf("expected fallback text, got %+v (%v)", failed, err)
		}
	})
}
