// Package cleanup removes stale rows from the recipe cache.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Deleter deletes unpinned cached recipes fetched before a cutoff.
type Deleter interface {
	DeleteOlderThan(ctx context.Context, t time.Time) (int64, error)
}

// Recorder receives eviction counts.
type Recorder interface {
	RecordEvicted(count int64)
}

// Evictor deletes cache rows older than a horizon.
//
// Pinned recipes are exempt: they stay cached past the horizon until they
// are unpinned, and only then become eligible for eviction.
type Evictor struct {
	store    Deleter
	logger   *slog.Logger
	recorder Recorder
}

// NewEvictor creates an Evictor. recorder may be nil.
func NewEvictor(store Deleter, logger *slog.Logger, recorder Recorder) *Evictor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evictor{store: store, logger: logger, recorder: recorder}
}

// Evict deletes every unpinned row whose freshness timestamp is before
// now-horizon.
// Repeating a call with the same now deletes nothing more.
func (e *Evictor) Evict(ctx context.Context, horizon time.Duration, now time.Time) (int64, error) {
	start := time.Now()
	cutoff := now.Add(-horizon)

	deleted, err := e.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		e.logger.Error("cache eviction failed",
			slog.String("error", err.Error()),
			slog.Duration("horizon", horizon),
		)
		return 0, fmt.Errorf("evict recipes older than %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if e.recorder != nil && deleted > 0 {
		e.recorder.RecordEvicted(deleted)
	}

	e.logger.Debug("cache eviction completed",
		slog.Int64("deleted_count", deleted),
		slog.Duration("horizon", horizon),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return deleted, nil
}
