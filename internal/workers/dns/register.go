package dns

import (
	"time"

	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/logx"
	"reconweave/internal/platform/rate"
	"reconweave/internal/platform/registry"
)

const (
	LookupID      = "dns/lookup"
	MailserversID = "dns/mailservers"
	NameserversID = "dns/nameservers"
	ReverseID     = "dns/reverse"
)

const (
	defaultCacheSize = 1024
	defaultCacheTTL  = 10 * time.Minute
)

// Register adds the DNS workers to reg.
//
// Params shared by all of them: server (host[:port], default system
// resolver) and dial_timeout. dns/lookup also reads ipv6, timeout, rate,
// burst, cache_size and cache_ttl.
func Register(reg *registry.WorkerRegistry) {
	reg.MustRegister(ports.WorkerSpec{
		ID:          LookupID,
		Description: "Resolve domains and hosts to A/AAAA addresses",
		Accepts:     []value.Kind{value.KindDomain, value.KindHost},
		Outputs:     []value.Kind{value.KindIP},
		Concurrency: 4,
	}, lookupFactory)

	reg.MustRegister(ports.WorkerSpec{
		ID:          MailserversID,
		Description: "Discover MX targets of a domain",
		Accepts:     []value.Kind{value.KindDomain},
		Outputs:     []value.Kind{value.KindMailserver},
	}, func(cfg ports.WorkerConfig, logger logx.Logger) (ports.Worker, error) {
		return NewMailservers(ResolverFromParams(cfg.Params), logger), nil
	})

	reg.MustRegister(ports.WorkerSpec{
		ID:          NameserversID,
		Description: "Discover NS records of a domain",
		Accepts:     []value.Kind{value.KindDomain},
		Outputs:     []value.Kind{value.KindNameserver},
	}, func(cfg ports.WorkerConfig, logger logx.Logger) (ports.Worker, error) {
		return NewNameservers(ResolverFromParams(cfg.Params), logger), nil
	})

	reg.MustRegister(ports.WorkerSpec{
		ID:          ReverseID,
		Description: "Reverse (PTR) lookup of IP addresses",
		Accepts:     []value.Kind{value.KindIP},
		Outputs:     []value.Kind{value.KindHost},
		Concurrency: 2,
	}, func(cfg ports.WorkerConfig, logger logx.Logger) (ports.Worker, error) {
		return NewReverse(ResolverFromParams(cfg.Params), logger), nil
	})
}

func lookupFactory(cfg ports.WorkerConfig, logger logx.Logger) (ports.Worker, error) {
	p := cfg.Params
	cacheSize := registry.IntParam(p, "cache_size", defaultCacheSize)
	if cacheSize < 0 {
		cacheSize = 0
	}
	opts := LookupOptions{
		IPv6:      registry.BoolParam(p, "ipv6", true),
		Timeout:   registry.DurationParam(p, "timeout", 5*time.Second),
		CacheSize: cacheSize,
		CacheTTL:  registry.DurationParam(p, "cache_ttl", defaultCacheTTL),
		Limiter:   rate.FromConfig(registry.FloatParam(p, "rate", 0), registry.IntParam(p, "burst", 1)),
	}
	return NewLookup(ResolverFromParams(p), opts, logger), nil
}
