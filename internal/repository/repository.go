// Package repository exposes the recipe feeds as independently paginated
// streams over the paging engine, plus cache-only lookups.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/asteroid-belt/pantry/internal/models"
	"github.com/asteroid-belt/pantry/internal/paging"
)

// Default page sizes.
const (
	DefaultPageSize        = 20
	DefaultInitialLoadSize = 40
)

// Store is the part of the local cache the repository uses directly.
type Store interface {
	GetRecipe(ctx context.Context, id int64) (*models.Recipe, error)
	SetPinned(ctx context.Context, id int64, pinned bool) (bool, error)
	ListPinned(ctx context.Context) ([]models.Recipe, error)
	DeleteByQuery(ctx context.Context, query string) (int64, error)
	DeleteByCategory(ctx context.Context, tag string) (int64, error)
}

// Refresher re-checks connectivity on demand. *network.Monitor implements it.
type Refresher interface {
	Refresh(ctx context.Context) bool
}

// Options configures page sizes and the connectivity re-check.
type Options struct {
	PageSize        int
	InitialLoadSize int
	// Connectivity is re-checked before every Retry and after a transport
	// failure, so the next load can fall back to the cache. May be nil.
	Connectivity Refresher
}

// Repository hands out feed streams and serves point lookups from the cache.
type Repository struct {
	loader Loader
	store  Store
	opts   Options
	logger *slog.Logger
}

// New creates a repository. Zero sizes fall back to the defaults.
func New(loader Loader, store Store, opts Options, logger *slog.Logger) *Repository {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.InitialLoadSize <= 0 {
		opts.InitialLoadSize = DefaultInitialLoadSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{loader: loader, store: store, opts: opts, logger: logger}
}

// PageSize returns the regular page size.
func (r *Repository) PageSize() int { return r.opts.PageSize }

// All returns a new stream over every recipe.
func (r *Repository) All() *Stream { return r.Stream(paging.All()) }

// Search returns a new stream over recipes matching query.
func (r *Repository) Search(query string) *Stream { return r.Stream(paging.Search(query)) }

// ByCategory returns a new stream over recipes with the category tag.
func (r *Repository) ByCategory(tag string) *Stream { return r.Stream(paging.Category(tag)) }

// Stream returns a new stream for lt.
func (r *Repository) Stream(lt paging.LoadType) *Stream {
	return newStream(r.loader, lt, r.opts, nil)
}

// Get returns a recipe from the cache only.
func (r *Repository) Get(ctx context.Context, id int64) (*models.Recipe, error) {
	recipe, err := r.store.GetRecipe(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get recipe %d: %w", id, err)
	}
	if recipe == nil {
		return nil, fmt.Errorf("%w: %d", ErrRecipeNotFound, id)
	}
	return recipe, nil
}

// SetPinned pins or unpins a cached recipe.
func (r *Repository) SetPinned(ctx context.Context, id int64, pinned bool) error {
	found, err := r.store.SetPinned(ctx, id, pinned)
	if err != nil {
		return fmt.Errorf("set pinned %d: %w", id, err)
	}
	if !found {
		return fmt.Errorf("%w: %d", ErrRecipeNotFound, id)
	}
	r.logger.Info("recipe pin changed", slog.Int64("recipe_id", id), slog.Bool("pinned", pinned))
	return nil
}

// Pinned lists pinned recipes.
func (r *Repository) Pinned(ctx context.Context) ([]models.Recipe, error) {
	return r.store.ListPinned(ctx)
}

// Purge deletes the cached rows that belong to lt's query or category.
// The all-recipes feed has nothing to purge.
func (r *Repository) Purge(ctx context.Context, lt paging.LoadType) (int64, error) {
	var (
		n   int64
		err error
	)
	if q, ok := lt.Query(); ok {
		n, err = r.store.DeleteByQuery(ctx, q)
	} else if tag, ok := lt.Tag(); ok {
		n, err = r.store.DeleteByCategory(ctx, tag)
	}
	if err != nil {
		return 0, fmt.Errorf("purge %s: %w", lt, err)
	}
	if n > 0 {
		r.logger.Info("purged cached recipes", slog.String("load_type", lt.String()), slog.Int64("deleted_count", n))
	}
	return n, nil
}

// Refresh purges lt's cached rows and reloads its first page on a fresh stream.
func (r *Repository) Refresh(ctx context.Context, lt paging.LoadType) (*Stream, paging.Page, error) {
	if _, err := r.Purge(ctx, lt); err != nil {
		return nil, paging.Page{}, err
	}
	s := r.Stream(lt)
	page, err := s.First(ctx)
	return s, page, err
}
