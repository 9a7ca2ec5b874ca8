package network

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strings"
	"time"
)

// Trigger is a coalescing event source for Monitor.Watch. Fire never
// blocks; events fired while one is pending collapse into it.
type Trigger struct {
	ch chan struct{}
}

// NewTrigger creates an idle trigger.
func NewTrigger() *Trigger {
	return &Trigger{ch: make(chan struct{}, 1)}
}

// Fire queues one re-check.
func (t *Trigger) Fire() {
	select {
	case t.ch <- struct{}{}:
	default:
	}
}

// C is the channel Monitor.Watch consumes.
func (t *Trigger) C() <-chan struct{} {
	return t.ch
}

// InterfaceWatcher fires a Trigger whenever the host's usable interfaces
// or their addresses change. It only reads the local interface table; the
// network itself is probed by the Monitor once per change.
type InterfaceWatcher struct {
	interval time.Duration
	snapshot func() (string, error)
	logger   *slog.Logger
}

// NewInterfaceWatcher creates a watcher that compares the interface table
// every interval.
func NewInterfaceWatcher(interval time.Duration, logger *slog.Logger) *InterfaceWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &InterfaceWatcher{interval: interval, snapshot: interfaceSnapshot, logger: logger}
}

// Run fires t on every change until ctx is done. It blocks.
func (w *InterfaceWatcher) Run(ctx context.Context, t *Trigger) {
	last, err := w.snapshot()
	if err != nil {
		w.logger.Warn("read interfaces failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur, err := w.snapshot()
			if err != nil {
				w.logger.Warn("read interfaces failed", slog.String("error", err.Error()))
				continue
			}
			if cur != last {
				w.logger.Debug("network interfaces changed")
				last = cur
				t.Fire()
			}
		}
	}
}

// interfaceSnapshot renders the up, non-loopback interfaces and their
// addresses as a stable string.
func interfaceSnapshot() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("list interfaces: %w", err)
	}
	var parts []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			parts = append(parts, iface.Name+"="+a.String())
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, ","), nil
}
