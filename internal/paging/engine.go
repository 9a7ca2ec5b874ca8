// Package paging serves pages of recipes from the remote catalog when
// online and from the local cache when offline.
//
// Every remote page is written through to the cache before it is
// returned, and stale cache rows are evicted after each write. Only an
// offline connectivity reading falls back to the cache; a remote failure
// while online is classified and returned to the caller.
package paging

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/asteroid-belt/pantry/internal/models"
	"github.com/asteroid-belt/pantry/internal/spoonacular"
)

// DefaultHorizon is how long a cached recipe stays fresh.
const DefaultHorizon = 24 * time.Hour

// Remote fetches one page of the remote catalog.
type Remote interface {
	Search(ctx context.Context, p spoonacular.SearchParams) (*spoonacular.SearchResponse, error)
}

// Store is the local cache the engine reads and writes.
type Store interface {
	UpsertRecipes(ctx context.Context, recipes []models.Recipe) error
	QueryAll(ctx context.Context) ([]models.Recipe, error)
	QueryByText(ctx context.Context, text string) ([]models.Recipe, error)
	QueryByCategory(ctx context.Context, tag string) ([]models.Recipe, error)
}

// Connectivity reports the last-known reachability state without probing.
type Connectivity interface {
	Current() bool
}

// Evictor removes cache rows older than a horizon.
type Evictor interface {
	Evict(ctx context.Context, horizon time.Duration, now time.Time) (int64, error)
}

// Clock abstracts time retrieval so tests are deterministic.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Observer receives engine outcomes, typically for metrics.
type Observer interface {
	PageLoaded(loadType Variant, source Source, records int, duration time.Duration)
	PageFailed(loadType Variant, kind Kind)
}

type noopObserver struct{}

func (noopObserver) PageLoaded(Variant, Source, int, time.Duration) {}
func (noopObserver) PageFailed(Variant, Kind)                       {}

// Engine decides, per page, whether to go to the network or the cache.
// It is safe for concurrent use by independent streams.
type Engine struct {
	remote   Remote
	store    Store
	conn     Connectivity
	evictor  Evictor
	clock    Clock
	horizon  time.Duration
	observer Observer
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for freshness timestamps.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithHorizon sets the eviction horizon.
func WithHorizon(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.horizon = d
		}
	}
}

// WithObserver sets the outcome observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an engine.
func NewEngine(remote Remote, store Store, conn Connectivity, evictor Evictor, opts ...Option) *Engine {
	e := &Engine{
		remote:   remote,
		store:    store,
		conn:     conn,
		evictor:  evictor,
		clock:    RealClock{},
		horizon:  DefaultHorizon,
		observer: noopObserver{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load returns one page for req. The error is a *Error for classified
// failures, ErrInvalidRequest for a malformed request, or the context's
// error when ctx is done.
func (e *Engine) Load(ctx context.Context, req Request) (Page, error) {
	if err := req.Validate(); err != nil {
		return Page{}, err
	}

	start := time.Now()
	var (
		page Page
		err  error
	)
	if e.conn.Current() {
		page, err = e.loadRemote(ctx, req)
	} else {
		page, err = e.loadCache(ctx, req)
	}

	if err != nil {
		if ctx.Err() != nil {
			return Page{}, ctx.Err()
		}
		kind := KindOf(err)
		e.observer.PageFailed(req.Type.variant, kind)
		e.logger.Warn("page load failed",
			slog.String("load_type", req.Type.String()),
			slog.Int("index", req.Index),
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()),
		)
		return Page{}, err
	}

	e.observer.PageLoaded(req.Type.variant, page.Source, len(page.Records), time.Since(start))
	e.logger.Debug("page loaded",
		slog.String("load_type", req.Type.String()),
		slog.Int("index", req.Index),
		slog.String("source", string(page.Source)),
		slog.Int("records", len(page.Records)),
	)
	return page, nil
}

func (e *Engine) loadRemote(ctx context.Context, req Request) (Page, error) {
	params := spoonacular.SearchParams{
		Number: req.Size,
		Offset: req.Offset(),
	}
	if q, ok := req.Type.Query(); ok {
		params.Query = q
	}
	if tag, ok := req.Type.Tag(); ok {
		params.Type = tag
	}

	resp, err := e.remote.Search(ctx, params)
	if err != nil {
		return Page{}, classifyRemote(err)
	}

	now := e.clock.Now()
	records := make([]models.Recipe, len(resp.Results))
	for i, raw := range resp.Results {
		records[i] = toRecipe(raw, now, req)
	}

	if err := e.store.UpsertRecipes(ctx, records); err != nil {
		return Page{}, fetchError(err)
	}

	if deleted, err := e.evictor.Evict(ctx, e.horizon, now); err != nil {
		e.logger.Warn("cache eviction failed", slog.String("error", err.Error()))
	} else if deleted > 0 {
		e.logger.Debug("evicted stale recipes", slog.Int64("deleted_count", deleted))
	}

	prev, next := cursors(req, len(resp.Results))
	return Page{Records: records, Prev: prev, Next: next, Source: SourceRemote}, nil
}

func (e *Engine) loadCache(ctx context.Context, req Request) (Page, error) {
	var (
		all []models.Recipe
		err error
	)
	switch req.Type.variant {
	case VariantSearch:
		all, err = e.store.QueryByText(ctx, req.Type.value)
	case VariantCategory:
		all, err = e.store.QueryByCategory(ctx, req.Type.value)
	default:
		all, err = e.store.QueryAll(ctx)
	}
	if err != nil {
		return Page{}, fetchError(err)
	}

	records := window(all, req.Offset(), req.Size)
	prev, next := cursors(req, len(records))
	return Page{Records: records, Prev: prev, Next: next, Source: SourceCache}, nil
}

// window returns all[offset:offset+size], clamped to the slice bounds.
func window(all []models.Recipe, offset, size int) []models.Recipe {
	if offset >= len(all) {
		return []models.Recipe{}
	}
	end := offset + size
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// toRecipe maps a raw remote record, defaulting missing fields.
func toRecipe(raw spoonacular.RawRecipe, now time.Time, req Request) models.Recipe {
	r := models.Recipe{
		ID:        raw.ID,
		Title:     models.UntitledRecipe,
		Image:     models.StringPtr(models.Deref(raw.Image)),
		Summary:   models.StringPtr(models.Deref(raw.Summary)),
		SourceURL: models.StringPtr(models.Deref(raw.SourceURL)),
		DishTypes: append([]string(nil), raw.DishTypes...),
		FetchedAt: now,
		Page:      req.Index,
	}
	if raw.Title != nil && strings.TrimSpace(*raw.Title) != "" {
		r.Title = *raw.Title
	}
	if raw.ReadyInMinutes != nil {
		r.ReadyInMinutes = *raw.ReadyInMinutes
	}
	if raw.Servings != nil {
		r.Servings = *raw.Servings
	}
	if q, ok := req.Type.Query(); ok {
		r.SearchQuery = models.StringPtr(q)
	}
	if tag, ok := req.Type.Tag(); ok {
		r.CategoryTag = models.StringPtr(tag)
	}
	return r
}
