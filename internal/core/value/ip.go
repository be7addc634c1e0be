package value

import (
	"net/netip"
	"strconv"
	"strings"

	"reconweave/internal/platform/validator"
)

// IP is a single address. The host hint records the name it was resolved
// from and is not part of identity.
type IP struct {
	addr netip.Addr
	host string
}

func NewIP(address string) (IP, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(address))
	if err != nil {
		return IP{}, invalid("ip address %q", address)
	}
	return IP{addr: addr.Unmap()}, nil
}

// IPFromAddr wraps an already parsed address.
func IPFromAddr(addr netip.Addr) IP {
	return IP{addr: addr.Unmap()}
}

// WithHost returns a copy carrying the host it was resolved from.
func (ip IP) WithHost(host string) IP {
	ip.host = validator.NormalizeHostname(host)
	return ip
}

func (ip IP) Addr() netip.Addr { return ip.addr }
func (ip IP) Host() string     { return ip.host }

// Version returns 4 or 6.
func (ip IP) Version() int {
	if ip.addr.Is4() {
		return 4
	}
	return 6
}

func (IP) Kind() Kind        { return KindIP }
func (ip IP) Key() string    { return key(KindIP, ip.addr.String()) }
func (ip IP) String() string { return ip.addr.String() }

func (ip IP) Fields() map[string]any {
	f := map[string]any{"type": string(KindIP), "address": ip.addr.String()}
	if ip.host != "" {
		f["host"] = ip.host
	}
	return f
}

func (ip IP) FuzzyMatches(other Value) bool { return Equal(ip, other) }

func (IP) sealed() {}

// octetSpan is an inclusive range of one IPv4 octet.
type octetSpan struct{ lo, hi uint8 }

func (s octetSpan) overlaps(o octetSpan) bool { return s.lo <= o.hi && o.lo <= s.hi }
func (s octetSpan) has(b uint8) bool          { return s.lo <= b && b <= s.hi }

// IPRange is a CIDR block ("10.0.0.0/16", "2001:db8::/32") or an IPv4
// octet glob ("10.0.*.*", "192.168.1-4.*").
// IPv4 ranges are kept as four octet spans, which represent both syntaxes.
type IPRange struct {
	text   string
	v4     bool
	octets [4]octetSpan
	prefix netip.Prefix
}

func NewIPRange(text string) (IPRange, error) {
	t := strings.TrimSpace(text)
	if strings.Contains(t, "/") {
		p, err := netip.ParsePrefix(t)
		if err != nil {
			return IPRange{}, invalid("cidr %q", text)
		}
		return rangeFromPrefix(p.Masked()), nil
	}
	return parseGlob(t)
}

// IPRangeFromPrefix wraps an already parsed prefix.
func IPRangeFromPrefix(p netip.Prefix) IPRange {
	return rangeFromPrefix(p.Masked())
}

func rangeFromPrefix(p netip.Prefix) IPRange {
	r := IPRange{text: p.String(), prefix: p}
	if !p.Addr().Is4() {
		return r
	}
	r.v4 = true
	base := p.Addr().As4()
	bits := p.Bits()
	for i := 0; i < 4; i++ {
		fixed := bits - i*8
		switch {
		case fixed >= 8:
			r.octets[i] = octetSpan{base[i], base[i]}
		case fixed <= 0:
			r.octets[i] = octetSpan{0, 255}
		default:
			free := uint8(0xff >> fixed)
			r.octets[i] = octetSpan{base[i], base[i] | free}
		}
	}
	return r
}

func parseGlob(t string) (IPRange, error) {
	parts := strings.Split(t, ".")
	if len(parts) != 4 {
		return IPRange{}, invalid("ip range %q", t)
	}
	r := IPRange{v4: true}
	for i, part := range parts {
		span, ok := parseOctetSpan(part)
		if !ok {
			return IPRange{}, invalid("ip range %q", t)
		}
		r.octets[i] = span
	}
	r.text = r.globText()
	return r, nil
}

func parseOctetSpan(part string) (octetSpan, bool) {
	if part == "*" {
		return octetSpan{0, 255}, true
	}
	loText, hiText, isRange := strings.Cut(part, "-")
	lo, err := strconv.ParseUint(loText, 10, 8)
	if err != nil {
		return octetSpan{}, false
	}
	if !isRange {
		return octetSpan{uint8(lo), uint8(lo)}, true
	}
	hi, err := strconv.ParseUint(hiText, 10, 8)
	if err != nil || hi < lo {
		return octetSpan{}, false
	}
	return octetSpan{uint8(lo), uint8(hi)}, true
}

func (r IPRange) globText() string {
	parts := make([]string, 4)
	for i, s := range r.octets {
		switch {
		case s.lo == 0 && s.hi == 255:
			parts[i] = "*"
		case s.lo == s.hi:
			parts[i] = strconv.Itoa(int(s.lo))
		default:
			parts[i] = strconv.Itoa(int(s.lo)) + "-" + strconv.Itoa(int(s.hi))
		}
	}
	return strings.Join(parts, ".")
}

// Contains reports whether addr falls inside the range.
func (r IPRange) Contains(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !r.v4 {
		return !addr.Is4() && r.prefix.Contains(addr)
	}
	if !addr.Is4() {
		return false
	}
	b := addr.As4()
	for i := range r.octets {
		if !r.octets[i].has(b[i]) {
			return false
		}
	}
	return true
}

// Overlaps reports whether r and o share at least one address.
func (r IPRange) Overlaps(o IPRange) bool {
	if r.v4 != o.v4 {
		return false
	}
	if !r.v4 {
		return r.prefix.Overlaps(o.prefix)
	}
	for i := range r.octets {
		if !r.octets[i].overlaps(o.octets[i]) {
			return false
		}
	}
	return true
}

// Size returns the number of addresses, saturating at limit.
func (r IPRange) Size(limit uint64) uint64 {
	if !r.v4 {
		free := r.prefix.Addr().BitLen() - r.prefix.Bits()
		if free >= 63 {
			return limit
		}
		return min(uint64(1)<<free, limit)
	}
	n := uint64(1)
	for _, s := range r.octets {
		n *= uint64(s.hi-s.lo) + 1
	}
	return min(n, limit)
}

// Each calls fn for every address in ascending order until fn returns false.
func (r IPRange) Each(fn func(netip.Addr) bool) {
	if !r.v4 {
		for a := r.prefix.Addr(); a.IsValid() && r.prefix.Contains(a); a = a.Next() {
			if !fn(a) {
				return
			}
		}
		return
	}
	o := r.octets
	for a := int(o[0].lo); a <= int(o[0].hi); a++ {
		for b := int(o[1].lo); b <= int(o[1].hi); b++ {
			for c := int(o[2].lo); c <= int(o[2].hi); c++ {
				for d := int(o[3].lo); d <= int(o[3].hi); d++ {
					if !fn(netip.AddrFrom4([4]byte{byte(a), byte(b), byte(c), byte(d)})) {
						return
					}
				}
			}
		}
	}
}

func (IPRange) Kind() Kind       { return KindIPRange }
func (r IPRange) Key() string    { return key(KindIPRange, r.text) }
func (r IPRange) String() string { return r.text }

func (r IPRange) Fields() map[string]any {
	return map[string]any{"type": string(KindIPRange), "range": r.text}
}

// FuzzyMatches: overlapping ranges (subsets included) and contained IPs.
func (r IPRange) FuzzyMatches(other Value) bool {
	switch o := other.(type) {
	case IPRange:
		return r.Overlaps(o)
	case IP:
		return r.Contains(o.addr)
	default:
		return false
	}
}

func (IPRange) sealed() {}
