// Package app wires configuration, the recipe cache, the remote client and
// the paging engine into a ready-to-use Repository.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/asteroid-belt/pantry/internal/cleanup"
	"github.com/asteroid-belt/pantry/internal/config"
	"github.com/asteroid-belt/pantry/internal/db"
	"github.com/asteroid-belt/pantry/internal/metrics"
	"github.com/asteroid-belt/pantry/internal/network"
	"github.com/asteroid-belt/pantry/internal/paging"
	"github.com/asteroid-belt/pantry/internal/repository"
	"github.com/asteroid-belt/pantry/internal/spoonacular"
	"github.com/asteroid-belt/pantry/pkg/version"
)

// Options override parts of the wiring.
type Options struct {
	// Offline forces cache-only operation regardless of config.
	Offline bool
	// MetricsFile, when set, receives a Prometheus textfile on Close.
	MetricsFile string

	Logger *slog.Logger
	// Remote replaces the Spoonacular client.
	Remote paging.Remote
	// Prober replaces the default reachability probe.
	Prober network.Prober
	Clock  paging.Clock
}

// App is the assembled object graph.
type App struct {
	Config   *config.Config
	DB       *db.DB
	Monitor  *network.Monitor
	Registry *prometheus.Registry
	Metrics  *metrics.Collector
	Evictor  *cleanup.Evictor
	Engine   *paging.Engine
	Repo     *repository.Repository
	Logger   *slog.Logger

	clock       paging.Clock
	metricsFile string
	events      *network.Trigger
	watcher     *network.InterfaceWatcher
	stopGauge   func()
}

// Open builds the App from cfg and probes connectivity once.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = paging.RealClock{}
	}

	paths := config.GetPaths(cfg)
	database, err := db.New(db.DefaultConfig(paths.Database))
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	stampCacheVersion(database, logger)

	remote := opts.Remote
	if remote == nil {
		remote = spoonacular.NewClient(cfg.API.APIKey,
			spoonacular.WithBaseURL(cfg.API.BaseURL),
			spoonacular.WithRateLimit(cfg.API.RateLimit),
			spoonacular.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout()}),
			spoonacular.WithLogger(logger),
		)
	}

	prober := opts.Prober
	switch {
	case opts.Offline || cfg.Offline:
		prober = network.Static(false)
	case prober == nil:
		prober = network.Chain(
			network.NewInterfaceProber(),
			network.NewDialProber(cfg.Network.ProbeAddress, cfg.Network.ProbeTimeout()),
		)
	}
	monitor := network.NewMonitor(prober, logger)
	online := monitor.Refresh(ctx)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	collector.SetOnline(online)
	updates, stopGauge := monitor.Subscribe()
	go func() {
		for online := range updates {
			collector.SetOnline(online)
		}
	}()

	evictor := cleanup.NewEvictor(database, logger, collector)
	engine := paging.NewEngine(remote, database, monitor, evictor,
		paging.WithClock(clock),
		paging.WithHorizon(cfg.Cache.Retention()),
		paging.WithObserver(collector),
		paging.WithLogger(logger),
	)
	repo := repository.New(engine, database, repository.Options{
		PageSize:        cfg.Paging.PageSize,
		InitialLoadSize: cfg.Paging.InitialLoadSize,
		Connectivity:    monitor,
	}, logger)

	var watcher *network.InterfaceWatcher
	if !opts.Offline && !cfg.Offline && cfg.Network.WatchInterval() > 0 {
		watcher = network.NewInterfaceWatcher(cfg.Network.WatchInterval(), logger)
	}

	logger.Debug("pantry opened",
		slog.String("database", paths.Database),
		slog.Bool("online", online),
	)

	return &App{
		Config:      cfg,
		DB:          database,
		Monitor:     monitor,
		Registry:    registry,
		Metrics:     collector,
		Evictor:     evictor,
		Engine:      engine,
		Repo:        repo,
		Logger:      logger,
		clock:       clock,
		metricsFile: opts.MetricsFile,
		events:      network.NewTrigger(),
		watcher:     watcher,
		stopGauge:   stopGauge,
	}, nil
}

// stampCacheVersion records the running version in the cache, unless a
// newer build wrote it last; that case is only logged.
func stampCacheVersion(database *db.DB, logger *slog.Logger) {
	state, err := database.GetUserState()
	if err != nil {
		logger.Warn("read user state failed", slog.String("error", err.Error()))
		return
	}
	if version.NewerThanCurrent(state.CacheVersion) {
		logger.Warn("cache was written by a newer pantry",
			slog.String("cache_version", state.CacheVersion),
			slog.String("version", version.Version),
		)
		return
	}
	if err := database.RecordCacheVersion(version.Version); err != nil {
		logger.Warn("record cache version failed", slog.String("error", err.Error()))
	}
}

// Watch keeps the connectivity state current until ctx is done. Interface
// changes and RecheckSoon both trigger a probe. It returns immediately.
func (a *App) Watch(ctx context.Context) {
	if a.watcher != nil {
		go a.watcher.Run(ctx, a.events)
	}
	go a.Monitor.Watch(ctx, a.events.C())
}

// RecheckSoon queues an asynchronous connectivity re-check for Watch.
func (a *App) RecheckSoon() {
	a.events.Fire()
}

// Recheck probes connectivity now and returns the new state.
func (a *App) Recheck(ctx context.Context) bool {
	return a.Monitor.Refresh(ctx)
}

// Online reports the last known connectivity state.
func (a *App) Online() bool {
	return a.Monitor.Current()
}

// Prune evicts rows older than the configured retention.
func (a *App) Prune(ctx context.Context) (int64, error) {
	return a.Evictor.Evict(ctx, a.Config.Cache.Retention(), a.clock.Now())
}

// Close writes the metrics textfile, if configured, and releases resources.
func (a *App) Close() error {
	var firstErr error
	if a.metricsFile != "" {
		if err := metrics.WriteTextfile(a.Registry, a.metricsFile); err != nil {
			a.Logger.Warn("metrics export failed", slog.String("error", err.Error()))
			firstErr = err
		}
	}
	a.stopGauge()
	a.Monitor.Close()
	if err := a.DB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Now returns the App's current time.
func (a *App) Now() time.Time {
	return a.clock.Now()
}
