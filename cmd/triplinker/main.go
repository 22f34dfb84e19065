package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/example/trip-linker/internal/application"
	"github.com/example/trip-linker/internal/catalog"
	"github.com/example/trip-linker/internal/config"
	"github.com/example/trip-linker/internal/desktop"
	"github.com/example/trip-linker/internal/destinations"
	httptransport "github.com/example/trip-linker/internal/http"
	"github.com/example/trip-linker/internal/logging"
	"github.com/example/trip-linker/internal/persistence/sqlite"
	"github.com/example/trip-linker/internal/persistence/sqlite/migration"
	"github.com/example/trip-linker/internal/session"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger = logging.NewJSONLogger(os.Stdout, cfg.LogLevel)

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start trip linker", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// open-all paces its requests, so responses may take a while.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("trip linker listening", "addr", server.Addr, "desktop", cfg.Desktop)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// app is the wired service graph behind the HTTP API.
type app struct {
	Handler http.Handler
	Planner *application.Planner
	storage *sqlite.Store
}

func (a *app) Close() error {
	if a == nil || a.storage == nil {
		return nil
	}
	return a.storage.Close()
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	dataset, err := catalog.LoadDestinations(cfg.DestinationsFile)
	if err != nil {
		return nil, err
	}
	calendar, err := catalog.LoadHolidays(cfg.HolidaysFile)
	if err != nil {
		return nil, err
	}

	storage, err := sqlite.Open(ctx, migration.DefaultSQLiteConfig(cfg.SQLiteDSN), sqlite.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	store, err := destinations.NewStore(ctx, dataset, storage, logger)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	opener, clipboard := desktopIntegration(cfg, logger)

	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	now := func() time.Time { return time.Now().In(location) }

	window := cfg.HolidayWindowMonths
	if window == 0 {
		window = -1
	}

	planner := application.NewPlannerWithLogger(application.PlannerConfig{
		Holidays:     calendar,
		Destinations: store,
		Sessions:     application.NewSessionRegistry(cfg.SessionTTL, 0, nil, now),
		Store:        storage,
		Opener:       opener,
		Clipboard:    clipboard,
		OpenDelay:    cfg.OpenDelay,
		WindowMonths: window,
		Now:          now,
	}, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Holidays:     httptransport.NewHolidayHandler(planner, logger),
		Destinations: httptransport.NewDestinationHandler(planner, logger),
		Sessions:     httptransport.NewSessionHandler(planner, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.Recoverer(logger),
		},
	})

	logger.Info("catalog loaded",
		"destinations", len(dataset.Destinations),
		"departure_cities", len(dataset.DepartureCities),
		"holiday_periods", len(calendar.Periods),
		"region", calendar.Region,
	)
	return &app{Handler: handler, Planner: planner, storage: storage}, nil
}

// desktopIntegration returns the system browser and clipboard when running
// on a desktop, and a logging recorder otherwise.
func desktopIntegration(cfg config.Config, logger *slog.Logger) (session.Opener, session.Clipboard) {
	if cfg.Desktop {
		return desktop.NewBrowserOpener(), desktop.NewCommandClipboard()
	}
	recorder := desktop.NewRecorder(logger)
	return recorder, recorder
}
