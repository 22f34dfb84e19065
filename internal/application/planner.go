package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/trip-linker/internal/dates"
	"github.com/example/trip-linker/internal/destinations"
	"github.com/example/trip-linker/internal/holidays"
	"github.com/example/trip-linker/internal/persistence"
	"github.com/example/trip-linker/internal/session"
)

const (
	msgDestinationRequired = "destination is required"
	msgDatesRequired       = "travel dates are required"
	msgInvalidDate         = "must be a date in YYYY-MM-DD form"
	msgUnknownHoliday      = "unknown holiday period"
	msgUnknownField        = "field is not editable"
	msgUnknownDestination  = "destination does not exist"
	msgInvalidValue        = "value is invalid"
	msgCopied              = "URLs in Zwischenablage kopiert!"
	msgCopyFailed          = "Zwischenablage nicht verfügbar - Links bitte manuell kopieren."
	msgNothingToCopy       = "Keine Links vorhanden."
	msgBlocked             = "Tab wurde blockiert."
)

// PlannerConfig wires the collaborators of a Planner.
type PlannerConfig struct {
	Holidays     holidays.Catalog
	Destinations *destinations.Store
	Sessions     *SessionRegistry
	// Store keeps the remembered search settings.
	Store     persistence.KeyValueStore
	Opener    session.Opener
	Clipboard session.Clipboard
	OpenDelay time.Duration
	Sleep     func(time.Duration)
	// WindowMonths is the default holiday look-ahead. Zero selects
	// holidays.DefaultWindowMonths, negative disables the window.
	WindowMonths int
	Now          func() time.Time
}

// Planner exposes the trip planning use cases: browsing holidays and
// destinations, editing destination overrides and driving search sessions.
type Planner struct {
	holidays     holidays.Catalog
	destinations *destinations.Store
	sessions     *SessionRegistry
	store        persistence.KeyValueStore
	opener       session.Opener
	clipboard    session.Clipboard
	openDelay    time.Duration
	sleep        func(time.Duration)
	windowMonths int
	now          func() time.Time
	logger       *slog.Logger
}

// NewPlanner constructs a planner with the provided dependencies.
func NewPlanner(cfg PlannerConfig) *Planner {
	return NewPlannerWithLogger(cfg, nil)
}

// NewPlannerWithLogger constructs a planner with a specified logger.
func NewPlannerWithLogger(cfg PlannerConfig, logger *slog.Logger) *Planner {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sessions == nil {
		cfg.Sessions = NewSessionRegistry(0, 0, nil, cfg.Now)
	}
	if cfg.WindowMonths == 0 {
		cfg.WindowMonths = holidays.DefaultWindowMonths
	}
	return &Planner{
		holidays:     cfg.Holidays,
		destinations: cfg.Destinations,
		sessions:     cfg.Sessions,
		store:        cfg.Store,
		opener:       cfg.Opener,
		clipboard:    cfg.Clipboard,
		openDelay:    cfg.OpenDelay,
		sleep:        cfg.Sleep,
		windowMonths: cfg.WindowMonths,
		now:          cfg.Now,
		logger:       defaultLogger(logger),
	}
}

func (p *Planner) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, p.logger, "Planner", operation, attrs...)
}

// Holidays returns the holiday periods visible for q as seen today.
func (p *Planner) Holidays(ctx context.Context, q HolidayQuery) holidays.Result {
	window := p.windowMonths
	if q.WindowMonths != nil {
		window = *q.WindowMonths
	}
	result := holidays.Filter(p.holidays, p.now(), holidays.Query{WindowMonths: window, Year: q.Year})
	p.loggerWith(ctx, "Holidays").DebugContext(ctx, "holidays filtered",
		"window_months", window,
		"count", len(result.Periods),
	)
	return result
}

// DepartureCities lists the selectable departure hubs.
func (p *Planner) DepartureCities() []destinations.DepartureCity {
	if p == nil || p.destinations == nil {
		return nil
	}
	return p.destinations.DepartureCities()
}

// Destinations lists every destination with overrides applied.
func (p *Planner) Destinations(ctx context.Context) (list []destinations.Destination, err error) {
	if p == nil || p.destinations == nil {
		err = fmt.Errorf("destination store not configured")
		return
	}
	list = p.destinations.List()
	p.loggerWith(ctx, "Destinations").DebugContext(ctx, "destinations listed", "count", len(list))
	return
}

// Destination returns one destination with overrides applied.
func (p *Planner) Destination(ctx context.Context, id string) (dest destinations.Destination, err error) {
	if p == nil || p.destinations == nil {
		err = fmt.Errorf("destination store not configured")
		return
	}
	dest, err = p.destinations.Get(id)
	if err != nil {
		err = mapDestinationError(err)
	}
	return
}

// UpdateDestinationField overrides one editable field. A failed write to the
// store keeps the override in memory and reports Persisted false.
func (p *Planner) UpdateDestinationField(ctx context.Context, id, field, value string) (change DestinationChange, err error) {
	if p == nil || p.destinations == nil {
		err = fmt.Errorf("destination store not configured")
		return
	}

	logger := p.loggerWith(ctx, "UpdateDestinationField",
		"destination_id", id,
		"field", field,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update destination", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "destination override stored", "persisted", change.Persisted)
	}()

	f, parseErr := destinations.ParseField(field)
	if parseErr != nil {
		vErr := &ValidationError{}
		vErr.add("field", msgUnknownField)
		err = vErr
		return
	}

	var dest destinations.Destination
	dest, err = p.destinations.Update(ctx, id, f, value)
	change, err = destinationChange(dest, err)
	return
}

// ResetDestination removes every override of a destination.
func (p *Planner) ResetDestination(ctx context.Context, id string) (change DestinationChange, err error) {
	if p == nil || p.destinations == nil {
		err = fmt.Errorf("destination store not configured")
		return
	}

	logger := p.loggerWith(ctx, "ResetDestination", "destination_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reset destination", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "destination overrides reset", "persisted", change.Persisted)
	}()

	var dest destinations.Destination
	dest, err = p.destinations.Reset(ctx, id)
	change, err = destinationChange(dest, err)
	return
}

// OriginalValue returns the catalog value of field for a destination.
func (p *Planner) OriginalValue(id, field string) (OriginalValue, error) {
	if p == nil || p.destinations == nil {
		return OriginalValue{}, fmt.Errorf("destination store not configured")
	}
	f, err := destinations.ParseField(field)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("field", msgUnknownField)
		return OriginalValue{}, vErr
	}
	value, ok := p.destinations.OriginalValue(id, f)
	if !ok {
		return OriginalValue{}, fmt.Errorf("%w: destination %q", ErrNotFound, id)
	}
	return OriginalValue{DestinationID: id, Field: string(f), Value: value}, nil
}

func destinationChange(dest destinations.Destination, err error) (DestinationChange, error) {
	switch {
	case err == nil:
		return DestinationChange{Destination: dest, Persisted: true}, nil
	case errors.Is(err, destinations.ErrNotPersisted):
		return DestinationChange{Destination: dest, Persisted: false}, nil
	case errors.Is(err, destinations.ErrInvalidValue):
		vErr := &ValidationError{}
		vErr.add("value", msgInvalidValue)
		return DestinationChange{}, vErr
	default:
		return DestinationChange{}, mapDestinationError(err)
	}
}

func mapDestinationError(err error) error {
	if errors.Is(err, destinations.ErrUnknownDestination) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// CreateSession starts a search session with the remembered settings.
func (p *Planner) CreateSession(ctx context.Context) (view SessionView, err error) {
	if p == nil {
		err = fmt.Errorf("Planner is nil")
		return
	}

	var cities session.CityChecker
	if p.destinations != nil {
		cities = p.destinations
	}
	s := session.New(ctx, session.Config{
		Opener:    p.opener,
		Clipboard: p.clipboard,
		Store:     p.store,
		Cities:    cities,
		OpenDelay: p.openDelay,
		Sleep:     p.sleep,
		Logger:    p.logger,
	})
	id := p.sessions.Add(s)

	p.loggerWith(ctx, "CreateSession", "session_id", id).InfoContext(ctx, "search session created")
	return SessionView{ID: id, SettingsPersisted: true, Snapshot: s.Snapshot()}, nil
}

// Session returns the current view of a search session.
func (p *Planner) Session(ctx context.Context, id string) (SessionView, error) {
	s, err := p.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	return SessionView{ID: id, SettingsPersisted: true, Snapshot: s.Snapshot()}, nil
}

// DeleteSession discards a search session.
func (p *Planner) DeleteSession(ctx context.Context, id string) error {
	if p == nil || !p.sessions.Remove(id) {
		return ErrSessionNotFound
	}
	p.loggerWith(ctx, "DeleteSession", "session_id", id).InfoContext(ctx, "search session discarded")
	return nil
}

// UpdateSession applies patch field by field. Rejected fields are reported
// together in a ValidationError while accepted fields stay applied. Changed
// settings are remembered; a failed write only clears SettingsPersisted.
func (p *Planner) UpdateSession(ctx context.Context, id string, patch SessionPatch) (view SessionView, err error) {
	var s *session.Session
	s, err = p.lookup(id)
	if err != nil {
		return
	}

	logger := p.loggerWith(ctx, "UpdateSession", "session_id", id)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session update rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "session updated", "state", view.State)
	}()

	vErr := &ValidationError{}
	vErr.merge(p.applyDates(s, patch))

	apply := func(value *int, set func(int) error) {
		if value != nil {
			addFieldError(vErr, set(*value))
		}
	}
	apply(patch.FlexDays, s.SetFlexDays)
	apply(patch.Adults, s.SetAdults)
	apply(patch.Bedrooms, s.SetBedrooms)
	apply(patch.CheckedBags, s.SetCheckedBags)
	apply(patch.RadiusKm, s.SetRadius)
	apply(patch.DriverAge, s.SetDriverAge)
	if patch.DepartureCityID != nil {
		addFieldError(vErr, s.SetDepartureCity(*patch.DepartureCityID))
	}

	if patch.DestinationID != nil {
		if dest, getErr := p.destination(*patch.DestinationID); getErr != nil {
			vErr.add("destinationId", msgUnknownDestination)
		} else {
			s.Select(dest.Record)
		}
	}

	view = SessionView{ID: id, SettingsPersisted: true}
	if patch.touchesSettings() {
		if saveErr := s.SaveSettings(ctx); saveErr != nil {
			view.SettingsPersisted = false
		}
	}
	view.Snapshot = s.Snapshot()

	if vErr.HasErrors() {
		err = vErr
	}
	return
}

func (p *Planner) applyDates(s *session.Session, patch SessionPatch) *ValidationError {
	vErr := &ValidationError{}

	if patch.HolidayID != nil {
		period, ok := p.holidays.Find(*patch.HolidayID)
		if !ok {
			vErr.add("holidayId", msgUnknownHoliday)
			return vErr
		}
		addFieldError(vErr, s.SetHolidayDates(period))
		return vErr
	}

	from, fromOK := parsePatchDate(vErr, session.ParamDateFrom, patch.DateFrom)
	to, toOK := parsePatchDate(vErr, session.ParamDateTo, patch.DateTo)
	switch {
	case fromOK && toOK:
		addFieldError(vErr, s.SetDates(from, to))
	case fromOK:
		addFieldError(vErr, s.SetDateFrom(from))
	case toOK:
		addFieldError(vErr, s.SetDateTo(to))
	}
	return vErr
}

func parsePatchDate(vErr *ValidationError, field string, value *string) (dates.Date, bool) {
	if value == nil {
		return dates.Date{}, false
	}
	if *value == "" {
		return dates.Date{}, true
	}
	d, err := dates.ParseISO(*value)
	if err != nil {
		vErr.add(field, msgInvalidDate)
		return dates.Date{}, false
	}
	return d, true
}

func addFieldError(vErr *ValidationError, err error) {
	if err == nil {
		return
	}
	var fErr *session.FieldError
	if errors.As(err, &fErr) {
		vErr.add(fErr.Field, fErr.Message)
		return
	}
	vErr.add("session", err.Error())
}

// Generate derives the search links for a destination from the session's
// selections.
func (p *Planner) Generate(ctx context.Context, id, destinationID string) (view SessionView, err error) {
	var s *session.Session
	s, err = p.lookup(id)
	if err != nil {
		return
	}

	logger := p.loggerWith(ctx, "Generate",
		"session_id", id,
		"destination_id", destinationID,
	)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "link generation rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "links generated", "count", len(view.Links))
	}()

	vErr := &ValidationError{}
	var dest destinations.Destination
	if destinationID == "" {
		vErr.add("destinationId", msgDestinationRequired)
	} else if dest, err = p.destination(destinationID); err != nil {
		return
	}
	if from, to := s.Dates(); from.IsZero() || to.IsZero() {
		vErr.add(session.ParamDateFrom, msgDatesRequired)
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	s.Generate(ctx, &dest.Record)
	view = SessionView{ID: id, SettingsPersisted: true, Snapshot: s.Snapshot()}
	return
}

// OpenLink opens the link at index of the session's last results.
func (p *Planner) OpenLink(ctx context.Context, id string, index int) (OpenResult, error) {
	s, err := p.lookup(id)
	if err != nil {
		return OpenResult{}, err
	}
	current := s.Links()
	if index < 0 || index >= len(current) {
		return OpenResult{}, fmt.Errorf("%w: link %d", ErrNotFound, index)
	}

	result := OpenResult{Index: index, URL: current[index].URL}
	opened, openErr := s.OpenSingle(ctx, index)
	result.Opened = opened
	if openErr != nil {
		p.loggerWith(ctx, "OpenLink", "session_id", id).InfoContext(ctx, "open request blocked",
			"index", index,
			"error_kind", ErrorKind(openErr),
		)
		result.Message = msgBlocked
	}
	return result, nil
}

// OpenAll opens every current link of the session in order.
func (p *Planner) OpenAll(ctx context.Context, id string) (OpenAllResult, error) {
	s, err := p.lookup(id)
	if err != nil {
		return OpenAllResult{}, err
	}
	summary := s.OpenAll(ctx)
	result := OpenAllResult{Summary: summary}
	if summary.Total > 0 {
		result.Message = summary.Message()
	}
	return result, nil
}

// CopyLinks copies the text form of the session's links to the clipboard.
func (p *Planner) CopyLinks(ctx context.Context, id string) (CopyResult, error) {
	s, err := p.lookup(id)
	if err != nil {
		return CopyResult{}, err
	}
	text, copyErr := s.CopyAll(ctx)
	switch {
	case text == "":
		return CopyResult{Message: msgNothingToCopy}, nil
	case copyErr != nil:
		p.loggerWith(ctx, "CopyLinks", "session_id", id).WarnContext(ctx, "clipboard unavailable",
			"error", copyErr,
			"error_kind", ErrorKind(copyErr),
		)
		return CopyResult{Text: text, Message: msgCopyFailed}, nil
	default:
		return CopyResult{Text: text, Copied: true, Message: msgCopied}, nil
	}
}

func (p *Planner) lookup(id string) (*session.Session, error) {
	if p == nil || p.sessions == nil {
		return nil, ErrSessionNotFound
	}
	s, ok := p.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	return s, nil
}

func (p *Planner) destination(id string) (destinations.Destination, error) {
	if p.destinations == nil {
		return destinations.Destination{}, fmt.Errorf("destination store not configured")
	}
	dest, err := p.destinations.Get(id)
	if err != nil {
		return destinations.Destination{}, mapDestinationError(err)
	}
	return dest, nil
}
