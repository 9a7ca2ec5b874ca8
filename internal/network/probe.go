package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// DefaultProbeTimeout bounds a single DialProber check.
const DefaultProbeTimeout = 3 * time.Second

// Prober performs one platform reachability check.
type Prober interface {
	Probe(ctx context.Context) (bool, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context) (bool, error)

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context) (bool, error) {
	return f(ctx)
}

// Static always reports the same state. Used for --offline.
func Static(online bool) Prober {
	return ProberFunc(func(context.Context) (bool, error) { return online, nil })
}

// DialProber reports online when a TCP connection to Address succeeds.
type DialProber struct {
	Address string
	Timeout time.Duration
	dial    func(ctx context.Context, network, address string) (net.Conn, error)
}

// NewDialProber creates a prober for address ("host:port").
func NewDialProber(address string, timeout time.Duration) *DialProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	d := &net.Dialer{}
	return &DialProber{
		Address: address,
		Timeout: timeout,
		dial:    d.DialContext,
	}
}

// Probe dials Address. Refused, unreachable and timed-out dials are a
// definite "offline"; a malformed address is an error.
func (p *DialProber) Probe(ctx context.Context) (bool, error) {
	if _, _, err := net.SplitHostPort(p.Address); err != nil {
		return false, fmt.Errorf("invalid probe address %q: %w", p.Address, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	conn, err := p.dial(ctx, "tcp", p.Address)
	if err != nil {
		var opErr *net.OpError
		var dnsErr *net.DNSError
		if errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.Is(err, context.DeadlineExceeded) {
			return false, nil
		}
		return false, fmt.Errorf("dial %s: %w", p.Address, err)
	}
	_ = conn.Close()
	return true, nil
}

// InterfaceProber reports online when any non-loopback interface is up and
// has at least one address. It never touches the network.
type InterfaceProber struct {
	interfaces func() ([]net.Interface, error)
	addrs      func(iface net.Interface) ([]net.Addr, error)
}

// NewInterfaceProber creates a prober over the host's interfaces.
func NewInterfaceProber() *InterfaceProber {
	return &InterfaceProber{
		interfaces: net.Interfaces,
		addrs:      func(iface net.Interface) ([]net.Addr, error) { return iface.Addrs() },
	}
}

// Probe inspects the interface table.
func (p *InterfaceProber) Probe(context.Context) (bool, error) {
	ifaces, err := p.interfaces()
	if err != nil {
		return false, fmt.Errorf("list interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := p.addrs(iface)
		if err != nil {
			continue
		}
		if len(addrs) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Chain reports online only when every prober does. The first error wins.
func Chain(probers ...Prober) Prober {
	return ProberFunc(func(ctx context.Context) (bool, error) {
		for _, p := range probers {
			ok, err := p.Probe(ctx)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	})
}
