package dns

import (
	"context"
	"fmt"
	"net/netip"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/cache"
	"reconweave/internal/platform/logx"
	"reconweave/internal/platform/rate"
)

// LookupOptions configures the address lookup worker.
type LookupOptions struct {
	IPv6      bool          // also query AAAA
	Timeout   time.Duration // per lookup; 0 = ctx only
	CacheSize int
	CacheTTL  time.Duration
	Limiter   *rate.Limiter // nil = unlimited
}

// Lookup resolves Domain and Host values to their addresses. Each IP is
// emitted with the queried name as its host hint.
type Lookup struct {
	resolver Resolver
	opts     LookupOptions
	cache    *cache.LRU[[]netip.Addr]
	logger   logx.Logger
}

// NewLookup builds the worker. A zero CacheSize disables caching.
func NewLookup(resolver Resolver, opts LookupOptions, logger logx.Logger) *Lookup {
	l := &Lookup{
		resolver: resolver,
		opts:     opts,
		logger:   logger,
	}
	if opts.CacheSize > 0 {
		l.cache = cache.New[[]netip.Addr](opts.CacheSize, opts.CacheTTL)
	}
	return l
}

func (l *Lookup) Process(ctx context.Context, v value.Value, emit ports.Emit) error {
	name, ok := nameOf(v)
	if !ok {
		return fmt.Errorf("%s: unsupported value %s", LookupID, v.Kind())
	}

	addrs, err := l.resolve(ctx, name)
	if err != nil {
		return err
	}
	for _, a := range addrs {
		emit(value.IPFromAddr(a).WithHost(name))
	}
	return nil
}

// resolve queries A and, when enabled, AAAA in parallel. Results are
// sorted and deduplicated.
func (l *Lookup) resolve(ctx context.Context, name string) ([]netip.Addr, error) {
	if l.cache != nil {
		if cached, ok := l.cache.Get(name); ok {
			l.logger.Debug("cache hit", "name", name, "addrs", len(cached))
			return cached, nil
		}
	}

	if err := l.opts.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	networks := []string{"ip4"}
	if l.opts.IPv6 {
		networks = append(networks, "ip6")
	}
	results := make([][]netip.Addr, len(networks))

	g, gctx := errgroup.WithContext(ctx)
	for i, network := range networks {
		g.Go(func() error {
			addrs, err := l.resolver.LookupNetIP(gctx, network, name)
			if err != nil {
				if isNotFound(err) {
					return nil
				}
				return fmt.Errorf("lookup %s %s: %w", network, name, err)
			}
			results[i] = addrs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []netip.Addr
	for _, r := range results {
		for _, a := range r {
			out = append(out, a.Unmap())
		}
	}
	slices.SortFunc(out, func(a, b netip.Addr) int { return a.Compare(b) })
	out = slices.Compact(out)

	if l.cache != nil {
		l.cache.Set(name, out)
	}
	l.logger.Debug("resolved", "name", name, "addrs", len(out))
	return out, nil
}
