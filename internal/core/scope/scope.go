// internal/core/scope/scope.go
package scope

import (
	"errors"
	"fmt"

	"reconweave/internal/core/value"
)

// ErrUnsupportedScopeValue se retorna cuando una seed no pertenece a
// ninguna categoría de scope.
var ErrUnsupportedScopeValue = errors.New("unsupported scope value")

// Category agrupa los tipos de valor que comparten un bucket de scope.
type Category int

const (
	Uncategorized Category = iota
	HostLike
	IPLike
)

func (c Category) String() string {
	switch c {
	case HostLike:
		return "host"
	case IPLike:
		return "ip"
	default:
		return "uncategorized"
	}
}

// CategoryOf returns the scope bucket v falls into.
func CategoryOf(v value.Value) Category {
	switch {
	case value.IsHostLike(v):
		return HostLike
	case value.IsIPLike(v):
		return IPLike
	default:
		return Uncategorized
	}
}

// Scope decide qué valores descubiertos están dentro de los límites de la
// corrida. Se construye una vez y es inmutable.
type Scope struct {
	hosts  []value.Value
	ips    []value.Value
	ignore []value.Value
}

// New partitions seeds into the host-like and IP-like buckets. A seed of
// any other kind yields ErrUnsupportedScopeValue. The ignore list may hold
// any kind.
func New(seeds, ignore []value.Value) (*Scope, error) {
	s := &Scope{ignore: append([]value.Value(nil), ignore...)}
	for _, v := range seeds {
		switch CategoryOf(v) {
		case HostLike:
			s.hosts = append(s.hosts, v)
		case IPLike:
			s.ips = append(s.ips, v)
		default:
			return nil, fmt.Errorf("%w: %s %q", ErrUnsupportedScopeValue, v.Kind(), v.String())
		}
	}
	return s, nil
}

// Includes: any ignore entry that fuzzy-matches v excludes it; otherwise v
// must fuzzy-match an entry of its category bucket. An empty bucket or an
// uncategorized value is allowed.
func (s *Scope) Includes(v value.Value) bool {
	for _, ig := range s.ignore {
		if ig.FuzzyMatches(v) {
			return false
		}
	}

	var bucket []value.Value
	switch CategoryOf(v) {
	case HostLike:
		bucket = s.hosts
	case IPLike:
		bucket = s.ips
	default:
		return true
	}
	if len(bucket) == 0 {
		return true
	}
	for _, entry := range bucket {
		if entry.FuzzyMatches(v) {
			return true
		}
	}
	return false
}

// Hosts returns the host-like bucket.
func (s *Scope) Hosts() []value.Value { return append([]value.Value(nil), s.hosts...) }

// IPs returns the IP-like bucket.
func (s *Scope) IPs() []value.Value { return append([]value.Value(nil), s.ips...) }

// Ignored returns the ignore list.
func (s *Scope) Ignored() []value.Value { return append([]value.Value(nil), s.ignore...) }
