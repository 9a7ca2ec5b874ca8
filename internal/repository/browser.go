package repository

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/asteroid-belt/pantry/internal/models"
	"github.com/asteroid-belt/pantry/internal/observe"
	"github.com/asteroid-belt/pantry/internal/paging"
)

// Browser holds the interactive browsing state: the search query, the
// selected category, the active feed and its stream. Each piece of state
// is observable.
type Browser struct {
	repo   *Repository
	logger *slog.Logger

	query      *observe.Value[string]
	selection  *observe.Value[models.Selection]
	loadType   *observe.Value[paging.LoadType]
	offline    *observe.Value[bool]
	quotaHit   *observe.Value[bool]
	lastErrMsg *observe.Value[string]

	mu     sync.Mutex
	stream *Stream
}

// NewBrowser creates a browser on the all-recipes feed with "all" selected.
func NewBrowser(repo *Repository) *Browser {
	b := &Browser{
		repo:       repo,
		logger:     repo.logger,
		query:      observe.NewValue(""),
		selection:  observe.NewValue(models.SelectionOf(models.Categories[0])),
		loadType:   observe.NewValue(paging.All()),
		offline:    observe.NewValue(false),
		quotaHit:   observe.NewValue(false),
		lastErrMsg: observe.NewValue(""),
	}
	b.stream = b.newStream(paging.All())
	return b
}

func (b *Browser) newStream(lt paging.LoadType) *Stream {
	return newStream(b.repo.loader, lt, b.repo.opts, b.recordResult)
}

// recordResult tracks the last error and the quota flag across loads.
func (b *Browser) recordResult(_ paging.LoadType, err error) {
	if err == nil {
		b.lastErrMsg.Set("")
		return
	}
	b.lastErrMsg.Set(err.Error())
	if errors.Is(err, paging.ErrQuotaExhausted) {
		b.quotaHit.Set(true)
	}
}

// switchTo makes lt the active feed with a fresh stream.
func (b *Browser) switchTo(lt paging.LoadType) *Stream {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stream.LoadType() != lt {
		b.stream = b.newStream(lt)
	}
	b.loadType.Set(lt)
	return b.stream
}

// SetSearchQuery switches to the search feed, or back to all recipes when
// query is blank. It returns the now-active stream.
func (b *Browser) SetSearchQuery(query string) *Stream {
	b.query.Set(query)
	if strings.TrimSpace(query) == "" {
		return b.switchTo(paging.All())
	}
	return b.switchTo(paging.Search(query))
}

// SelectCategory clears the search and switches to c's feed.
func (b *Browser) SelectCategory(c models.Category) *Stream {
	b.query.Set("")
	b.selection.Set(models.SelectionOf(c))
	return b.switchTo(paging.ForCategory(c))
}

// Active returns the active stream.
func (b *Browser) Active() *Stream {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stream
}

// Query returns the observable search query.
func (b *Browser) Query() *observe.Value[string] { return b.query }

// Selection returns the observable category selection.
func (b *Browser) Selection() *observe.Value[models.Selection] { return b.selection }

// LoadType returns the observable active feed.
func (b *Browser) LoadType() *observe.Value[paging.LoadType] { return b.loadType }

// Offline returns the observable offline flag.
func (b *Browser) Offline() *observe.Value[bool] { return b.offline }

// QuotaReached returns the observable "API quota exhausted" flag.
func (b *Browser) QuotaReached() *observe.Value[bool] { return b.quotaHit }

// LastError returns the observable message of the most recent failed load.
func (b *Browser) LastError() *observe.Value[string] { return b.lastErrMsg }

// Run follows connectivity updates until ctx is done or updates is closed.
// When the network comes back while no search is active and the active
// stream is idle, its first page is reloaded.
func (b *Browser) Run(ctx context.Context, updates <-chan bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case online, ok := <-updates:
			if !ok {
				return
			}
			wasOffline := b.offline.Get()
			b.offline.Set(!online)
			if !online || !wasOffline {
				continue
			}
			if strings.TrimSpace(b.query.Get()) != "" {
				continue
			}
			s := b.Active()
			if s.Loading() {
				continue
			}
			b.logger.Info("connectivity restored, reloading feed", slog.String("load_type", s.LoadType().String()))
			if _, err := s.First(ctx); err != nil && ctx.Err() == nil {
				b.logger.Warn("reload after reconnect failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Close releases all subscribers.
func (b *Browser) Close() {
	b.query.Close()
	b.selection.Close()
	b.loadType.Close()
	b.offline.Close()
	b.quotaHit.Close()
	b.lastErrMsg.Close()
}
