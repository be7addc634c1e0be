package dns

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"testing"

	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/logx"
	"reconweave/internal/platform/registry"
	"reconweave/internal/testutil"
)

// fakeResolver answers from static tables; names missing from a table get
// a not-found DNSError, names in fail get a temporary error.
type fakeResolver struct {
	v4, v6 map[string][]string
	mx     map[string][]*net.MX
	ns     map[string][]*net.NS
	ptr    map[string][]string
	fail   map[string]bool

	calls atomic.Int32
}

func notFound(name string) error {
	return &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
}

func (f *fakeResolver) LookupNetIP(_ context.Context, network, host string) ([]netip.Addr, error) {
	f.calls.Add(1)
	if f.fail[host] {
		return nil, &net.DNSError{Err: "server misbehaving", Name: host, IsTemporary: true}
	}
	table := f.v4
	if network == "ip6" {
		table = f.v6
	}
	raw, ok := table[host]
	if !ok {
		return nil, notFound(host)
	}
	out := make([]netip.Addr, 0, len(raw))
	for _, s := range raw {
		out = append(out, netip.MustParseAddr(s))
	}
	return out, nil
}

func (f *fakeResolver) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	if f.fail[name] {
		return nil, errors.New("boom")
	}
	if r, ok := f.mx[name]; ok {
		return r, nil
	}
	return nil, notFound(name)
}

func (f *fakeResolver) LookupNS(_ context.Context, name string) ([]*net.NS, error) {
	if r, ok := f.ns[name]; ok {
		return r, nil
	}
	return nil, notFound(name)
}

func (f *fakeResolver) LookupAddr(_ context.Context, addr string) ([]string, error) {
	if f.fail[addr] {
		return nil, errors.New("boom")
	}
	if r, ok := f.ptr[addr]; ok {
		return r, nil
	}
	return nil, notFound(addr)
}

type collector struct {
	mu     sync.Mutex
	values []value.Value
}

func (c *collector) emit(v value.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = append(c.values, v)
}

func (c *collector) strings() []string {
	out := make([]string, 0, len(c.values))
	for _, v := range c.values {
		out = append(out, v.String())
	}
	return out
}

func newFake() *fakeResolver {
	return &fakeResolver{
		v4: map[string][]string{
			"example.com":     {"93.184.216.34"},
			"www.example.com": {"93.184.216.34", "10.0.0.2", "10.0.0.2"},
		},
		v6: map[string][]string{
			"example.com": {"2606:2800:220:1:248:1893:25c8:1946"},
		},
		mx: map[string][]*net.MX{
			"example.com": {{Host: "mail.example.com.", Pref: 10}, {Host: "bad_name!.", Pref: 20}},
			"null.test":   {{Host: ".", Pref: 0}},
		},
		ns: map[string][]*net.NS{
			"example.com": {{Host: "a.iana-servers.net."}, {Host: "b.iana-servers.net."}},
		},
		ptr: map[string][]string{
			"93.184.216.34": {"edge.example.net."},
		},
		fail: map[string]bool{
			"broken.example.com": true,
			"10.9.9.9":           true,
		},
	}
}

func TestLookup_EmitsAddressesWithHostHint(t *testing.T) {
	res := newFake()
	w := NewLookup(res, LookupOptions{IPv6: true}, logx.Discard())

	var c collector
	err := w.Process(context.Background(), value.Must(value.NewDomain("example.com")), c.emit)
	testutil.RequireNoError(t, err, "process")

	testutil.AssertSameStrings(t, c.strings(), []string{"93.184.216.34", "2606:2800:220:1:248:1893:25c8:1946"}, "A + AAAA")
	for _, v := range c.values {
		ip, ok := v.(value.IP)
		testutil.AssertTrue(t, ok, "emits IP values")
		testutil.AssertEqual(t, ip.Host(), "example.com", "host hint is the queried name")
	}
}

func TestLookup_SortsAndDedupes(t *testing.T) {
	w := NewLookup(newFake(), LookupOptions{IPv6: true}, logx.Discard())

	var c collector
	err := w.Process(context.Background(), value.Must(value.NewHost("www.example.com")), c.emit)
	testutil.RequireNoError(t, err, "process")
	testutil.AssertEqual(t, len(c.values), 2, "duplicate address collapsed")
	testutil.AssertEqual(t, c.values[0].String(), "10.0.0.2", "sorted")
}

func TestLookup_IPv4Only(t *testing.T) {
	res := newFake()
	w := NewLookup(res, LookupOptions{IPv6: false}, logx.Discard())

	var c collector
	testutil.RequireNoError(t, w.Process(context.Background(), value.Must(value.NewDomain("example.com")), c.emit), "process")
	testutil.AssertSameStrings(t, c.strings(), []string{"93.184.216.34"}, "A only")
	testutil.AssertEqual(t, res.calls.Load(), int32(1), "single query")
}

func TestLookup_NotFoundIsEmpty(t *testing.T) {
	w := NewLookup(newFake(), LookupOptions{IPv6: true}, logx.Discard())

	var c collector
	err := w.Process(context.Background(), value.Must(value.NewHost("missing.example.com")), c.emit)
	testutil.AssertNoError(t, err, "NXDOMAIN is not a failure")
	testutil.AssertEqual(t, len(c.values), 0, "nothing emitted")
}

func TestLookup_TemporaryErrorFails(t *testing.T) {
	w := NewLookup(newFake(), LookupOptions{IPv6: true}, logx.Discard())

	var c collector
	err := w.Process(context.Background(), value.Must(value.NewHost("broken.example.com")), c.emit)
	testutil.AssertError(t, err, "resolver failure surfaces")
	testutil.AssertContains(t, err.Error(), "broken.example.com", "names the query")
	testutil.AssertEqual(t, len(c.values), 0, "nothing emitted")
}

func TestLookup_Cache(t *testing.T) {
	res := newFake()
	w := NewLookup(res, LookupOptions{CacheSize: 8}, logx.Discard())
	v := value.Must(value.NewDomain("example.com"))

	var first, second collector
	testutil.RequireNoError(t, w.Process(context.Background(), v, first.emit), "first")
	testutil.RequireNoError(t, w.Process(context.Background(), v, second.emit), "second")

	testutil.AssertEqual(t, res.calls.Load(), int32(1), "second lookup served from cache")
	testutil.AssertSameStrings(t, second.strings(), first.strings(), "same answer")
}

func TestLookup_RejectsOtherKinds(t *testing.T) {
	w := NewLookup(newFake(), LookupOptions{}, logx.Discard())
	err := w.Process(context.Background(), value.Must(value.NewIP("10.0.0.1")), func(value.Value) {})
	testutil.AssertError(t, err, "ip is not resolvable by name")
}

func TestMailservers(t *testing.T) {
	w := NewMailservers(newFake(), logx.Discard())

	var c collector
	testutil.RequireNoError(t, w.Process(context.Background(), value.Must(value.NewDomain("example.com")), c.emit), "process")
	testutil.AssertSameStrings(t, c.strings(), []string{"mail.example.com"}, "invalid target skipped, dot trimmed")
	testutil.AssertEqual(t, c.values[0].Kind(), value.KindMailserver, "kind")

	var null collector
	testutil.RequireNoError(t, w.Process(context.Background(), value.Must(value.NewDomain("null.test")), null.emit), "null mx")
	testutil.AssertEqual(t, len(null.values), 0, "null MX emits nothing")

	var none collector
	testutil.AssertNoError(t, w.Process(context.Background(), value.Must(value.NewDomain("nomx.test")), none.emit), "no records")

	err := w.Process(context.Background(), value.Must(value.NewDomain("broken.example.com")), none.emit)
	testutil.AssertError(t, err, "resolver failure")
}

func TestNameservers(t *testing.T) {
	w := NewNameservers(newFake(), logx.Discard())

	var c collector
	testutil.RequireNoError(t, w.Process(context.Background(), value.Must(value.NewDomain("example.com")), c.emit), "process")
	testutil.AssertSameStrings(t, c.strings(), []string{"a.iana-servers.net", "b.iana-servers.net"}, "ns targets")
	for _, v := range c.values {
		testutil.AssertEqual(t, v.Kind(), value.KindNameserver, "kind")
	}
}

func TestReverse(t *testing.T) {
	w := NewReverse(newFake(), logx.Discard())

	var c collector
	testutil.RequireNoError(t, w.Process(context.Background(), value.Must(value.NewIP("93.184.216.34")), c.emit), "process")
	testutil.AssertSameStrings(t, c.strings(), []string{"edge.example.net"}, "ptr name")
	testutil.AssertEqual(t, c.values[0].Kind(), value.KindHost, "kind")

	var none collector
	testutil.AssertNoError(t, w.Process(context.Background(), value.Must(value.NewIP("10.1.1.1")), none.emit), "no ptr")
	testutil.AssertError(t, w.Process(context.Background(), value.Must(value.NewIP("10.9.9.9")), none.emit), "failure")
	testutil.AssertError(t, w.Process(context.Background(), value.Must(value.NewDomain("example.com")), none.emit), "wrong kind")
}

func TestResolverFromParams(t *testing.T) {
	testutil.AssertTrue(t, ResolverFromParams(nil) == Resolver(net.DefaultResolver), "system resolver by default")

	r, ok := ResolverFromParams(map[string]any{"server": "9.9.9.9"}).(*net.Resolver)
	testutil.AssertTrue(t, ok, "custom resolver")
	testutil.AssertTrue(t, r.PreferGo, "pure Go resolver")
	testutil.AssertNotNil(t, r.Dial, "custom dialer")
}

func TestRegister(t *testing.T) {
	reg := registry.New(logx.Discard())
	Register(reg)

	testutil.AssertSameStrings(t, reg.List(), []string{LookupID, MailserversID, NameserversID, ReverseID}, "ids")

	spec, ok := reg.Spec(LookupID)
	testutil.AssertTrue(t, ok, "lookup registered")
	testutil.AssertTrue(t, spec.AcceptsKind(value.KindHost), "accepts host")
	testutil.AssertFalse(t, spec.AcceptsKind(value.KindNameserver), "exact kinds only")

	bindings, err := reg.Build(nil, nil, logx.Discard())
	testutil.RequireNoError(t, err, "build all")
	testutil.AssertEqual(t, len(bindings), 4, "bindings")

	w, err := lookupFactory(ports.WorkerConfig{Params: map[string]any{"cache_size": -1, "rate": "5", "ipv6": "false"}}, logx.Discard())
	testutil.RequireNoError(t, err, "factory")
	l := w.(*Lookup)
	testutil.AssertTrue(t, l.cache == nil, "negative cache size disables cache")
	testutil.AssertFalse(t, l.opts.IPv6, "ipv6 param")
	testutil.AssertEqual(t, l.opts.Limiter.Rate(), 5.0, "rate param")
}
