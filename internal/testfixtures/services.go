package testfixtures

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/example/trip-linker/internal/application"
	"github.com/example/trip-linker/internal/desktop"
	"github.com/example/trip-linker/internal/destinations"
	"github.com/example/trip-linker/internal/holidays"
	"github.com/example/trip-linker/internal/persistence"
	"github.com/example/trip-linker/internal/persistence/memory"
	"github.com/example/trip-linker/internal/session"
)

// ServiceFactory builds application services with deterministic clocks and
// session identifiers.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a factory with a clock at ReferenceTime and
// "session" identifiers.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("session")
	}
	return factory
}

// WithClock overrides the factory clock.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the session identifier generator.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// PlannerDeps captures optional collaborators of a planner. Nil fields use
// the sample datasets, an in-memory store and a desktop.Recorder.
type PlannerDeps struct {
	Dataset   *destinations.Dataset
	Holidays  *holidays.Catalog
	Store     persistence.KeyValueStore
	Opener    session.Opener
	Clipboard session.Clipboard
	Logger    *slog.Logger
}

// PlannerFixture bundles a planner with the collaborators it was built from.
type PlannerFixture struct {
	Planner      *application.Planner
	Destinations *destinations.Store
	Store        persistence.KeyValueStore
	Recorder     *desktop.Recorder
}

// NewPlanner builds a planner whose OpenAll never sleeps.
func (f *ServiceFactory) NewPlanner(tb testing.TB, deps PlannerDeps) PlannerFixture {
	tb.Helper()

	dataset := SampleDataset()
	if deps.Dataset != nil {
		dataset = *deps.Dataset
	}
	calendar := SampleHolidays()
	if deps.Holidays != nil {
		calendar = *deps.Holidays
	}
	store := deps.Store
	if store == nil {
		store = memory.New()
	}

	fixture := PlannerFixture{Store: store, Recorder: desktop.NewRecorder(deps.Logger)}
	opener, clipboard := deps.Opener, deps.Clipboard
	if opener == nil {
		opener = fixture.Recorder
	}
	if clipboard == nil {
		clipboard = fixture.Recorder
	}

	dest, err := destinations.NewStore(context.Background(), dataset, store, deps.Logger)
	if err != nil {
		tb.Fatalf("failed to build destination store: %v", err)
	}
	fixture.Destinations = dest

	now := f.Clock.NowFunc()
	fixture.Planner = application.NewPlannerWithLogger(application.PlannerConfig{
		Holidays:     calendar,
		Destinations: dest,
		Sessions:     application.NewSessionRegistry(time.Hour, 0, f.IDGenerator.NextFunc(), now),
		Store:        store,
		Opener:       opener,
		Clipboard:    clipboard,
		Sleep:        func(time.Duration) {},
		Now:          now,
	}, deps.Logger)
	return fixture
}
