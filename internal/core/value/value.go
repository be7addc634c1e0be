// Package value defines the closed set of reconnaissance values moved
// through the engine: domains, hosts, IPs, ports, certificates, URLs...
//
// Every variant carries identity fields, which define strict equality and
// the dedup key returned by Key, and may carry descriptive fields that are
// not part of equality (an IP's host hint, a URL's response). Besides
// strict equality each variant implements FuzzyMatches, an asymmetric
// containment relation used by scope checks. Strict equality is never
// broader than fuzzy matching: Equal(a, b) implies a.FuzzyMatches(b).
package value

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrInvalid is returned by constructors and parsers for malformed input.
var ErrInvalid = errors.New("invalid value")

// Kind identifies a value variant. Routing is keyed by exact Kind.
type Kind string

const (
	KindDomain       Kind = "domain"
	KindHost         Kind = "host"
	KindNameserver   Kind = "nameserver"
	KindMailserver   Kind = "mailserver"
	KindWildcard     Kind = "wildcard"
	KindIP           Kind = "ip"
	KindIPRange      Kind = "ip_range"
	KindOpenPort     Kind = "open_port"
	KindCert         Kind = "cert"
	KindEmailAddress Kind = "email_address"
	KindURL          Kind = "url"
	KindWebsite      Kind = "website"
	KindWebSocket    Kind = "websocket"
)

var allKinds = []Kind{
	KindDomain, KindHost, KindNameserver, KindMailserver, KindWildcard,
	KindIP, KindIPRange, KindOpenPort, KindCert, KindEmailAddress,
	KindURL, KindWebsite, KindWebSocket,
}

// Kinds returns every variant kind.
func Kinds() []Kind {
	return append([]Kind(nil), allKinds...)
}

// IsValid reports whether k names a variant.
func (k Kind) IsValid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k Kind) String() string { return string(k) }

// ParseKind maps a kind name such as "host" or "ip_range" to its Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalid, s)
	}
	return k, nil
}

// Value is implemented by every variant in this package and nowhere else.
type Value interface {
	// Kind returns the variant.
	Kind() Kind

	// Key is the strict identity: kind plus identity fields.
	Key() string

	// String is the canonical string form.
	String() string

	// Fields is the structured form used by serializers; it always holds "type".
	Fields() map[string]any

	// FuzzyMatches is the scope relation; see package doc.
	FuzzyMatches(other Value) bool

	sealed()
}

// Equal is strict equality: same variant, same identity fields.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Key() == b.Key()
}

// Hostnamed is implemented by the name-carrying variants
// (Domain, Host, Nameserver, Mailserver).
type Hostnamed interface {
	Value
	Name() string
}

// IsHostLike reports whether v belongs to the host-like scope category.
func IsHostLike(v Value) bool {
	switch v.(type) {
	case Domain, Host, Nameserver, Mailserver, Wildcard:
		return true
	default:
		return false
	}
}

// IsIPLike reports whether v belongs to the IP-like scope category.
func IsIPLike(v Value) bool {
	switch v.(type) {
	case IP, IPRange:
		return true
	default:
		return false
	}
}

// IsZero reports whether v is nil or the zero value of its variant, i.e.
// it was not built by a constructor. Such values have no identity.
func IsZero(v Value) bool {
	return v == nil || reflect.ValueOf(v).IsZero()
}

// Must panics on a constructor error. Intended for tests and literals.
func Must[T Value](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func key(k Kind, parts ...string) string {
	s := string(k)
	for _, p := range parts {
		s += "|" + p
	}
	return s
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
