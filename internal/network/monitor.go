// Package network tracks network reachability for the paging engine.
//
// A Monitor owns the process-wide online/offline state. It starts with an
// optimistic "online" guess and changes only when a platform event arrives
// (see Watch) or when Refresh is called explicitly. There is no polling.
// Reads through Current never block and never probe.
package network

import (
	"context"
	"log/slog"

	"github.com/asteroid-belt/pantry/internal/observe"
)

// Monitor exposes the reachability state as a broadcast value.
type Monitor struct {
	prober Prober
	state  *observe.Value[bool]
	logger *slog.Logger
}

// NewMonitor creates a monitor backed by prober. The initial state is online.
func NewMonitor(prober Prober, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		prober: prober,
		state:  observe.NewValue(true),
		logger: logger,
	}
}

// Current returns the last-known state without probing.
func (m *Monitor) Current() bool {
	return m.state.Get()
}

// Refresh runs a synchronous reachability check, stores and publishes the
// result, and returns it. A failing probe counts as online.
func (m *Monitor) Refresh(ctx context.Context) bool {
	online, err := m.prober.Probe(ctx)
	if err != nil {
		m.logger.Warn("reachability probe failed, assuming online",
			slog.String("error", err.Error()),
		)
		online = true
	}

	if m.state.Set(online) {
		m.logger.Info("connectivity changed", slog.Bool("online", online))
	}
	return online
}

// Subscribe delivers the current state immediately and then every change.
// Call the returned func to unsubscribe.
func (m *Monitor) Subscribe() (<-chan bool, func()) {
	return m.state.Subscribe()
}

// Watch refreshes the state once per platform event until ctx is done or
// events is closed. It blocks; run it in its own goroutine.
func (m *Monitor) Watch(ctx context.Context, events <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			m.Refresh(ctx)
		}
	}
}

// Close unsubscribes all listeners.
func (m *Monitor) Close() {
	m.state.Close()
}
