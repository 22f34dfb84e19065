// Package session holds the interactive search state: the user's selections,
// the derived flex dates, the last generated links and the sequenced bulk
// open and copy operations.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/trip-linker/internal/dates"
	"github.com/example/trip-linker/internal/destinations"
	"github.com/example/trip-linker/internal/holidays"
	"github.com/example/trip-linker/internal/links"
	"github.com/example/trip-linker/internal/persistence"
)

// DefaultOpenDelay is the pause inserted before every open request of OpenAll.
const DefaultOpenDelay = 300 * time.Millisecond

var (
	// ErrBlocked is returned when the opener refuses or fails to open a link.
	ErrBlocked = errors.New("session: open request blocked")
	// ErrClipboard is returned when the clipboard rejects the text.
	ErrClipboard = errors.New("session: clipboard write failed")
	// ErrSettingsNotPersisted marks settings kept in memory only.
	ErrSettingsNotPersisted = errors.New("session: settings not persisted")
)

// Opener opens a URL in a browser window. A non-nil error means the request
// was blocked.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// Clipboard receives text for the system clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// State is the position of a session in its lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateReady      State = "ready"
	StateHasResults State = "has-results"
)

// Summary is the outcome of OpenAll.
type Summary struct {
	Opened  int `json:"opened"`
	Blocked int `json:"blocked"`
	Total   int `json:"total"`
}

// Message renders the summary for display.
func (s Summary) Message() string {
	if s.Blocked == 0 {
		return fmt.Sprintf("Alle %d Tabs geöffnet!", s.Opened)
	}
	return fmt.Sprintf("%d von %d Tabs geöffnet. %d blockiert - nutze die Buttons unten.", s.Opened, s.Total, s.Blocked)
}

// Config wires the collaborators of a Session. Every field is optional.
type Config struct {
	Opener    Opener
	Clipboard Clipboard
	Store     persistence.KeyValueStore
	Cities    CityChecker
	OpenDelay time.Duration
	Sleep     func(time.Duration)
	Logger    *slog.Logger
}

// Session owns the selections of one user. Setters never regenerate links:
// results produced by Generate stay available, marked stale, until the next
// explicit Generate.
type Session struct {
	mu sync.Mutex
	// openMu serialises open requests across OpenSingle and OpenAll.
	openMu sync.Mutex

	settings    Settings
	dateFrom    dates.Date
	dateTo      dates.Date
	destination *destinations.Record
	links       []links.Descriptor
	stale       bool

	opener    Opener
	clipboard Clipboard
	store     persistence.KeyValueStore
	cities    CityChecker
	delay     time.Duration
	sleep     func(time.Duration)
	logger    *slog.Logger
}

// New creates a session with the remembered settings restored from the
// store. Missing or malformed settings fall back to the defaults and never
// fail the call.
func New(ctx context.Context, cfg Config) *Session {
	s := &Session{
		opener:    cfg.Opener,
		clipboard: cfg.Clipboard,
		store:     cfg.Store,
		cities:    cfg.Cities,
		delay:     cfg.OpenDelay,
		sleep:     cfg.Sleep,
		logger:    cfg.Logger,
	}
	if s.delay <= 0 {
		s.delay = DefaultOpenDelay
	}
	if s.sleep == nil {
		s.sleep = time.Sleep
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "search_session")

	restored, err := persistence.GetJSON(ctx, s.store, SettingsKey, DefaultSettings())
	if err != nil {
		s.logger.WarnContext(ctx, "failed to restore search settings, using defaults", "error", err)
	}
	s.settings = restored.sanitize(s.cities)
	return s
}

// Settings returns the current party and logistics selections.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SaveSettings writes the current settings to the store. Failures are logged
// and returned wrapped in ErrSettingsNotPersisted; the session keeps working.
func (s *Session) SaveSettings(ctx context.Context) error {
	settings := s.Settings()
	if err := persistence.SetJSON(ctx, s.store, SettingsKey, settings); err != nil {
		s.logger.WarnContext(ctx, "failed to persist search settings", "error", err)
		return fmt.Errorf("%w: %v", ErrSettingsNotPersisted, err)
	}
	return nil
}

// Dates returns the selected travel range. Unset ends are zero.
func (s *Session) Dates() (from, to dates.Date) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dateFrom, s.dateTo
}

// SetDateFrom sets the first travel day. It must not lie after a set dateTo.
func (s *Session) SetDateFrom(d dates.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !d.IsZero() && !s.dateTo.IsZero() && d.After(s.dateTo) {
		return &FieldError{Field: ParamDateFrom, Message: "must not be after the return date"}
	}
	s.dateFrom = d
	s.touchLocked()
	return nil
}

// SetDateTo sets the last travel day. It must not lie before a set dateFrom.
func (s *Session) SetDateTo(d dates.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !d.IsZero() && !s.dateFrom.IsZero() && d.Before(s.dateFrom) {
		return &FieldError{Field: ParamDateTo, Message: "must not be before the departure date"}
	}
	s.dateTo = d
	s.touchLocked()
	return nil
}

// SetDates replaces both ends of the travel range at once.
func (s *Session) SetDates(from, to dates.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return &FieldError{Field: ParamDateTo, Message: "must not be before the departure date"}
	}
	s.dateFrom, s.dateTo = from, to
	s.touchLocked()
	return nil
}

// SetHolidayDates selects the range of a holiday period.
func (s *Session) SetHolidayDates(p holidays.Period) error {
	return s.SetDates(p.From, p.To)
}

// SetFlexDays sets the flight flexibility, 1 to 4 days.
func (s *Session) SetFlexDays(n int) error {
	return s.setInt(validateFlexDays(n), func(st *Settings) { st.FlexDays = n })
}

// SetAdults sets the number of travelers.
func (s *Session) SetAdults(n int) error {
	return s.setInt(validateAdults(n), func(st *Settings) { st.Adults = n })
}

// SetBedrooms sets the minimum number of bedrooms.
func (s *Session) SetBedrooms(n int) error {
	return s.setInt(validateBedrooms(n), func(st *Settings) { st.Bedrooms = n })
}

// SetCheckedBags sets the number of checked bags. Values above the number of
// adults are accepted and clamped when links are derived.
func (s *Session) SetCheckedBags(n int) error {
	return s.setInt(validateCheckedBags(n), func(st *Settings) { st.CheckedBags = n })
}

// SetDepartureCity selects the departure hub.
func (s *Session) SetDepartureCity(id string) error {
	return s.setInt(validateDepartureCity(id, s.cities), func(st *Settings) { st.DepartureCityID = id })
}

// SetRadius sets the search radius around the departure hub.
func (s *Session) SetRadius(km int) error {
	return s.setInt(validateRadius(km), func(st *Settings) { st.RadiusKm = km })
}

// SetDriverAge sets the age of the rental car driver, 18 to 99.
func (s *Session) SetDriverAge(age int) error {
	return s.setInt(validateDriverAge(age), func(st *Settings) { st.DriverAge = age })
}

func (s *Session) setInt(validationErr error, apply func(*Settings)) error {
	if validationErr != nil {
		return validationErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(&s.settings)
	s.touchLocked()
	return nil
}

// touchLocked marks existing results as stale.
func (s *Session) touchLocked() {
	if s.links != nil {
		s.stale = true
	}
}

// FlexDates returns the flex-narrowed flight dates; ok is false until both
// travel dates are set.
func (s *Session) FlexDates() (dates.FlexDates, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flexDatesLocked()
}

func (s *Session) flexDatesLocked() (dates.FlexDates, bool) {
	if s.dateFrom.IsZero() || s.dateTo.IsZero() {
		return dates.FlexDates{}, false
	}
	return dates.CalculateFlexDates(s.dateFrom, s.dateTo, s.settings.FlexDays), true
}

// Select remembers the destination without generating links.
func (s *Session) Select(dest destinations.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destination == nil || s.destination.ID != dest.ID {
		s.touchLocked()
	}
	s.destination = &dest
}

// State reports the lifecycle position of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	switch {
	case s.links != nil && !s.stale:
		return StateHasResults
	case s.destination != nil && !s.dateFrom.IsZero() && !s.dateTo.IsZero():
		return StateReady
	default:
		return StateIdle
	}
}

// Generate derives the links for dest from the current selections. Without a
// destination or without both dates it returns nil and leaves the session
// untouched.
func (s *Session) Generate(ctx context.Context, dest *destinations.Record) []links.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dest == nil || s.dateFrom.IsZero() || s.dateTo.IsZero() {
		s.logger.DebugContext(ctx, "generate skipped, destination or dates missing")
		return nil
	}

	selected := *dest
	s.destination = &selected
	s.links = links.Generate(s.paramsLocked())
	s.stale = false

	s.logger.DebugContext(ctx, "links generated", "destination_id", selected.ID, "count", len(s.links))
	return cloneLinks(s.links)
}

// Params returns the bundle the next Generate would derive from.
func (s *Session) Params() (links.Params, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destination == nil || s.dateFrom.IsZero() || s.dateTo.IsZero() {
		return links.Params{}, false
	}
	return s.paramsLocked(), true
}

func (s *Session) paramsLocked() links.Params {
	var dest destinations.Record
	if s.destination != nil {
		dest = *s.destination
	}
	return links.Params{
		Destination:     dest,
		DateFrom:        s.dateFrom,
		DateTo:          s.dateTo,
		FlexDays:        s.settings.FlexDays,
		Adults:          s.settings.Adults,
		Bedrooms:        s.settings.Bedrooms,
		CheckedBags:     s.settings.CheckedBags,
		DepartureCityID: s.settings.DepartureCityID,
		RadiusKm:        s.settings.RadiusKm,
		DriverAge:       s.settings.DriverAge,
	}
}

// Links returns the last generated links, which may be stale.
func (s *Session) Links() []links.Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLinks(s.links)
}

// OpenSingle opens the link at index. An index out of range is a no-op and
// reports false with a nil error.
func (s *Session) OpenSingle(ctx context.Context, index int) (bool, error) {
	current := s.Links()
	if index < 0 || index >= len(current) {
		return false, nil
	}

	s.openMu.Lock()
	defer s.openMu.Unlock()

	if err := s.open(ctx, current[index].URL); err != nil {
		s.logger.InfoContext(ctx, "open request blocked", "index", index, "error", err)
		return false, fmt.Errorf("%w: %v", ErrBlocked, err)
	}
	return true, nil
}

// OpenAll opens every link in order, one at a time, sleeping the configured
// delay before each request including the first. Failed and panicking
// requests count as blocked. The run is not cancelled with ctx.
func (s *Session) OpenAll(ctx context.Context) Summary {
	current := s.Links()
	ctx = context.WithoutCancel(ctx)

	s.openMu.Lock()
	defer s.openMu.Unlock()

	summary := Summary{Total: len(current)}
	for i, link := range current {
		s.sleep(s.delay)
		if err := s.open(ctx, link.URL); err != nil {
			summary.Blocked++
			s.logger.DebugContext(ctx, "open request blocked", "index", i, "error", err)
			continue
		}
		summary.Opened++
	}

	s.logger.InfoContext(ctx, "bulk open finished", "opened", summary.Opened, "blocked", summary.Blocked, "total", summary.Total)
	return summary
}

func (s *Session) open(ctx context.Context, url string) (err error) {
	if s.opener == nil {
		return errors.New("no opener configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("opener panicked: %v", r)
		}
	}()
	return s.opener.Open(ctx, url)
}

// CopyAll hands the text form of the current links to the clipboard and
// returns it. Without links nothing is copied.
func (s *Session) CopyAll(ctx context.Context) (string, error) {
	current := s.Links()
	if len(current) == 0 {
		return "", nil
	}

	text := links.Text(current)
	if s.clipboard == nil {
		return text, fmt.Errorf("%w: no clipboard configured", ErrClipboard)
	}
	if err := s.clipboard.WriteText(ctx, text); err != nil {
		s.logger.WarnContext(ctx, "clipboard write failed", "error", err)
		return text, fmt.Errorf("%w: %v", ErrClipboard, err)
	}
	return text, nil
}

// Snapshot is a read-only view of the session.
type Snapshot struct {
	State         State              `json:"state"`
	Settings      Settings           `json:"settings"`
	DateFrom      dates.Date         `json:"dateFrom"`
	DateTo        dates.Date         `json:"dateTo"`
	FlexDates     *dates.FlexDates   `json:"flexDates,omitempty"`
	DestinationID string             `json:"destinationId,omitempty"`
	Links         []links.Descriptor `json:"links"`
	Stale         bool               `json:"stale"`
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:    s.stateLocked(),
		Settings: s.settings,
		DateFrom: s.dateFrom,
		DateTo:   s.dateTo,
		Links:    cloneLinks(s.links),
		Stale:    s.stale,
	}
	if flex, ok := s.flexDatesLocked(); ok {
		snap.FlexDates = &flex
	}
	if s.destination != nil {
		snap.DestinationID = s.destination.ID
	}
	if snap.Links == nil {
		snap.Links = []links.Descriptor{}
	}
	return snap
}

func cloneLinks(in []links.Descriptor) []links.Descriptor {
	if in == nil {
		return nil
	}
	return append([]links.Descriptor(nil), in...)
}
