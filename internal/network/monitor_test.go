package network

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted returns the queued answers in order, repeating the last one.
type scripted struct {
	answers []bool
	errs    []error
	calls   atomic.Int32
}

func (s *scripted) Probe(context.Context) (bool, error) {
	i := int(s.calls.Add(1)) - 1
	if i >= len(s.answers) {
		i = len(s.answers) - 1
	}
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return s.answers[i], err
}

func recv(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok)
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
	return false
}

func TestMonitor_StartsOnlineWithoutProbing(t *testing.T) {
	p := &scripted{answers: []bool{false}}
	m := NewMonitor(p, nil)
	defer m.Close()

	assert.True(t, m.Current())
	assert.Equal(t, int32(0), p.calls.Load())
}

func TestMonitor_RefreshPublishesChange(t *testing.T) {
	p := &scripted{answers: []bool{false, false, true}}
	m := NewMonitor(p, nil)
	defer m.Close()

	ch, cancel := m.Subscribe()
	defer cancel()
	assert.True(t, recv(t, ch))

	assert.False(t, m.Refresh(context.Background()))
	assert.False(t, recv(t, ch))
	assert.False(t, m.Current())

	// Same state again: no emission.
	assert.False(t, m.Refresh(context.Background()))
	select {
	case v := <-ch:
		t.Fatalf("unexpected emission %v", v)
	default:
	}

	assert.True(t, m.Refresh(context.Background()))
	assert.True(t, recv(t, ch))
}

func TestMonitor_ProbeErrorCountsAsOnline(t *testing.T) {
	p := &scripted{
		answers: []bool{false, false},
		errs:    []error{nil, errors.New("boom")},
	}
	m := NewMonitor(p, nil)
	defer m.Close()

	require.False(t, m.Refresh(context.Background()))
	assert.True(t, m.Refresh(context.Background()))
	assert.True(t, m.Current())
}

func TestMonitor_WatchRefreshesPerEvent(t *testing.T) {
	p := &scripted{answers: []bool{false}}
	m := NewMonitor(p, nil)
	defer m.Close()

	ch, cancel := m.Subscribe()
	defer cancel()
	recv(t, ch)

	events := make(chan struct{})
	done := make(chan struct{})
	go func() {
		m.Watch(context.Background(), events)
		close(done)
	}()

	events <- struct{}{}
	assert.False(t, recv(t, ch))

	close(events)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after events closed")
	}
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestMonitor_WatchStopsOnContext(t *testing.T) {
	m := NewMonitor(Static(true), nil)
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Watch(ctx, make(chan struct{}))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestDialProber(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer func() { _ = ln.Close() }()
		go func() {
			for {
				c, err := ln.Accept()
				if err != nil {
					return
				}
				_ = c.Close()
			}
		}()

		ok, err := NewDialProber(ln.Addr().String(), time.Second).Probe(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("refused", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := ln.Addr().String()
		require.NoError(t, ln.Close())

		ok, err := NewDialProber(addr, time.Second).Probe(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed address", func(t *testing.T) {
		_, err := NewDialProber("no-port", time.Second).Probe(context.Background())
		assert.Error(t, err)
	})
}

func TestInterfaceProber(t *testing.T) {
	up := net.Interface{Name: "eth0", Flags: net.FlagUp}
	lo := net.Interface{Name: "lo", Flags: net.FlagUp | net.FlagLoopback}
	down := net.Interface{Name: "wlan0"}
	addr := &net.IPNet{IP: net.IPv4(10, 0, 0, 2), Mask: net.CIDRMask(24, 32)}

	tests := []struct {
		name   string
		ifaces []net.Interface
		addrs  map[string][]net.Addr
		want   bool
	}{
		{"up with address", []net.Interface{lo, up}, map[string][]net.Addr{"eth0": {addr}, "lo": {addr}}, true},
		{"loopback only", []net.Interface{lo}, map[string][]net.Addr{"lo": {addr}}, false},
		{"down", []net.Interface{down}, map[string][]net.Addr{"wlan0": {addr}}, false},
		{"up without address", []net.Interface{up}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &InterfaceProber{
				interfaces: func() ([]net.Interface, error) { return tt.ifaces, nil },
				addrs:      func(i net.Interface) ([]net.Addr, error) { return tt.addrs[i.Name], nil },
			}
			got, err := p.Probe(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChain(t *testing.T) {
	ok, err := Chain(Static(true), Static(true)).Probe(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Chain(Static(true), Static(false)).Probe(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	failing := ProberFunc(func(context.Context) (bool, error) { return false, errors.New("x") })
	_, err = Chain(Static(true), failing).Probe(context.Background())
	assert.Error(t, err)
}
