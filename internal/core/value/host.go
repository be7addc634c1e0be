package value

import (
	"strings"

	"reconweave/internal/platform/validator"
)

// Domain is a registrable or parent domain name such as "example.com".
type Domain struct{ name string }

// Host is a fully qualified host name such as "www.example.com".
type Host struct{ name string }

// Nameserver is a host discovered as a DNS nameserver.
type Nameserver struct{ name string }

// Mailserver is a host discovered as an MX target.
type Mailserver struct{ name string }

func normalizeName(kind Kind, name string) (string, error) {
	n := validator.NormalizeHostname(name)
	if !validator.IsHostname(n) {
		return "", invalid("%s name %q", kind, name)
	}
	return n, nil
}

func NewDomain(name string) (Domain, error) {
	n, err := normalizeName(KindDomain, name)
	return Domain{name: n}, err
}

func NewHost(name string) (Host, error) {
	n, err := normalizeName(KindHost, name)
	return Host{name: n}, err
}

func NewNameserver(name string) (Nameserver, error) {
	n, err := normalizeName(KindNameserver, name)
	return Nameserver{name: n}, err
}

func NewMailserver(name string) (Mailserver, error) {
	n, err := normalizeName(KindMailserver, name)
	return Mailserver{name: n}, err
}

func (d Domain) Name() string     { return d.name }
func (h Host) Name() string       { return h.name }
func (n Nameserver) Name() string { return n.name }
func (m Mailserver) Name() string { return m.name }

func (Domain) Kind() Kind     { return KindDomain }
func (Host) Kind() Kind       { return KindHost }
func (Nameserver) Kind() Kind { return KindNameserver }
func (Mailserver) Kind() Kind { return KindMailserver }

func (d Domain) Key() string     { return key(KindDomain, d.name) }
func (h Host) Key() string       { return key(KindHost, h.name) }
func (n Nameserver) Key() string { return key(KindNameserver, n.name) }
func (m Mailserver) Key() string { return key(KindMailserver, m.name) }

func (d Domain) String() string     { return d.name }
func (h Host) String() string       { return h.name }
func (n Nameserver) String() string { return n.name }
func (m Mailserver) String() string { return m.name }

func (d Domain) Fields() map[string]any {
	return map[string]any{"type": string(KindDomain), "name": d.name}
}

func (h Host) Fields() map[string]any {
	return map[string]any{"type": string(KindHost), "name": h.name}
}

func (n Nameserver) Fields() map[string]any {
	return map[string]any{"type": string(KindNameserver), "name": n.name}
}

func (m Mailserver) Fields() map[string]any {
	return map[string]any{"type": string(KindMailserver), "name": m.name}
}

// FuzzyMatches: an equally named host-like value, any host-named value
// below the domain, or a wildcard whose every expansion falls below it.
func (d Domain) FuzzyMatches(other Value) bool {
	if w, ok := other.(Wildcard); ok {
		return d.coversWildcard(w)
	}
	o, ok := other.(Hostnamed)
	if !ok {
		return false
	}
	return o.Name() == d.name || validator.IsSubdomainOf(o.Name(), d.name)
}

// coversWildcard: el sufijo fijo empieza en un límite de label, así que
// "*.example.com" y "api-*.dev.example.com" quedan bajo example.com pero
// "*example.com" no.
func (d Domain) coversWildcard(w Wildcard) bool {
	rest, ok := strings.CutPrefix(w.suffix, ".")
	if !ok || strings.Contains(rest, "*") {
		return false
	}
	return rest == d.name || validator.IsSubdomainOf(rest, d.name)
}

func (h Host) FuzzyMatches(other Value) bool       { return matchesHostName(h.name, other) }
func (n Nameserver) FuzzyMatches(other Value) bool { return matchesHostName(n.name, other) }
func (m Mailserver) FuzzyMatches(other Value) bool { return matchesHostName(m.name, other) }

// matchesHostName backs the Host family: an equally named host-like value,
// or an IP, Website or URL whose host is name.
func matchesHostName(name string, other Value) bool {
	switch o := other.(type) {
	case Domain:
		return o.name == name
	case Host:
		return o.name == name
	case Nameserver:
		return o.name == name
	case Mailserver:
		return o.name == name
	case IP:
		return o.host != "" && o.host == name
	case Website:
		return o.host == name
	case URL:
		return o.Host() == name
	default:
		return false
	}
}

func (Domain) sealed()     {}
func (Host) sealed()       {}
func (Nameserver) sealed() {}
func (Mailserver) sealed() {}

// Wildcard is a host name template with a single "*" placeholder,
// e.g. "*.example.com".
type Wildcard struct {
	template string
	prefix   string
	suffix   string
}

func NewWildcard(template string) (Wildcard, error) {
	t := validator.NormalizeHostname(template)
	if !validator.IsWildcardTemplate(t) {
		return Wildcard{}, invalid("wildcard template %q", template)
	}
	prefix, suffix, _ := strings.Cut(t, "*")
	return Wildcard{template: t, prefix: prefix, suffix: suffix}, nil
}

func (w Wildcard) Template() string { return w.template }

// Expand replaces the placeholder with label.
func (w Wildcard) Expand(label string) (Host, error) {
	return NewHost(w.prefix + label + w.suffix)
}

func (Wildcard) Kind() Kind       { return KindWildcard }
func (w Wildcard) Key() string    { return key(KindWildcard, w.template) }
func (w Wildcard) String() string { return w.template }

func (w Wildcard) Fields() map[string]any {
	return map[string]any{"type": string(KindWildcard), "template": w.template}
}

// FuzzyMatches: the same template, host-named values that fit the
// template, and URLs or Websites whose host fits it.
func (w Wildcard) FuzzyMatches(other Value) bool {
	switch o := other.(type) {
	case Wildcard:
		return o.template == w.template
	case Hostnamed:
		return w.fits(o.Name())
	case URL:
		return w.fits(o.Host())
	case Website:
		return w.fits(o.host)
	default:
		return false
	}
}

// fits requires a non-empty replacement for the placeholder.
func (w Wildcard) fits(name string) bool {
	return len(name) > len(w.prefix)+len(w.suffix) &&
		strings.HasPrefix(name, w.prefix) &&
		strings.HasSuffix(name, w.suffix)
}

func (Wildcard) sealed() {}
