// Package dns holds the builtin DNS workers: address lookup, MX and NS
// records and reverse lookup. Every worker talks through Resolver so tests
// never touch the network.
package dns

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"time"

	"reconweave/internal/core/value"
	"reconweave/internal/platform/registry"
)

// Resolver is the subset of *net.Resolver the workers use.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupNS(ctx context.Context, name string) ([]*net.NS, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

var _ Resolver = (*net.Resolver)(nil)

// ResolverFromParams returns net.DefaultResolver unless "server" names a
// host:port, in which case queries go to that server with the pure Go
// resolver.
func ResolverFromParams(params map[string]any) Resolver {
	server := registry.StringParam(params, "server", "")
	if server == "" {
		return net.DefaultResolver
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}
	dialTimeout := registry.DurationParam(params, "dial_timeout", 5*time.Second)
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			d := net.Dialer{Timeout: dialTimeout}
			return d.DialContext(ctx, network, server)
		},
	}
}

// isNotFound reports an authoritative "no such name/record" answer, which
// workers treat as an empty result rather than a failure.
func isNotFound(err error) bool {
	var de *net.DNSError
	return errors.As(err, &de) && de.IsNotFound
}

type named interface {
	value.Value
	Name() string
}

// nameOf returns the DNS name carried by a host-like value.
func nameOf(v value.Value) (string, bool) {
	n, ok := v.(named)
	if !ok {
		return "", false
	}
	return n.Name(), true
}
