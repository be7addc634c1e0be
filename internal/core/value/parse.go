package value

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"
)

// Parse guesses the variant of a bare seed string:
//
//	kind:text              explicit, e.g. "host:www.example.com"
//	ws:// wss://           WebSocket
//	http:// https://       URL
//	a@b.c                  EmailAddress
//	1.2.3.0/24, 10.*.1-9.* IPRange
//	*.example.com          Wildcard
//	1.2.3.4, ::1           IP
//	anything else          Domain
func Parse(text string) (Value, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, invalid("empty value")
	}
	if prefix, rest, ok := strings.Cut(s, ":"); ok && !strings.HasPrefix(rest, "//") {
		if k := Kind(strings.ToLower(prefix)); k.IsValid() {
			return ParseAs(k, rest)
		}
	}

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "ws://"), strings.HasPrefix(lower, "wss://"):
		return NewWebSocket(s)
	case strings.Contains(lower, "://"):
		return NewURL(s)
	case strings.Contains(s, "@"):
		return NewEmailAddress(s)
	case strings.Contains(s, "/"):
		return NewIPRange(s)
	case strings.Contains(s, "*"):
		if r, err := NewIPRange(s); err == nil {
			return r, nil
		}
		return NewWildcard(s)
	}
	if _, err := netip.ParseAddr(s); err == nil {
		return NewIP(s)
	}
	if r, err := parseGlob(s); err == nil {
		return r, nil
	}
	return NewDomain(s)
}

// ParseAs builds a value of kind k from its canonical string form.
func ParseAs(k Kind, text string) (Value, error) {
	text = strings.TrimSpace(text)
	switch k {
	case KindDomain:
		return NewDomain(text)
	case KindHost:
		return NewHost(text)
	case KindNameserver:
		return NewNameserver(text)
	case KindMailserver:
		return NewMailserver(text)
	case KindWildcard:
		return NewWildcard(text)
	case KindIP:
		return NewIP(text)
	case KindIPRange:
		return NewIPRange(text)
	case KindEmailAddress:
		return NewEmailAddress(text)
	case KindURL:
		return NewURL(text)
	case KindWebSocket:
		return NewWebSocket(text)
	case KindCert:
		return NewCert(text, CertInfo{})
	case KindWebsite:
		u, err := NewURL(text)
		if err != nil {
			return nil, err
		}
		return WebsiteOf(u), nil
	case KindOpenPort:
		return parseOpenPort(text)
	default:
		return nil, invalid("unknown kind %q", k)
	}
}

// parseOpenPort reads "addr:port" with an optional "/proto" suffix.
func parseOpenPort(text string) (Value, error) {
	addrPort, proto, _ := strings.Cut(text, "/")
	ap, err := netip.ParseAddrPort(addrPort)
	if err != nil {
		return nil, invalid("open port %q", text)
	}
	return NewOpenPort(ap.Addr().String(), int(ap.Port()), PortInfo{Protocol: Protocol(proto)})
}

// FromFields rebuilds a value from the map produced by Fields. Numbers may
// arrive as float64 (JSON) or int (YAML, Go callers).
func FromFields(f map[string]any) (Value, error) {
	typ, _ := f["type"].(string)
	k, err := ParseKind(typ)
	if err != nil {
		return nil, err
	}

	switch k {
	case KindDomain, KindHost, KindNameserver, KindMailserver:
		return ParseAs(k, str(f, "name"))
	case KindWildcard:
		return NewWildcard(str(f, "template"))
	case KindIP:
		ip, err := NewIP(str(f, "address"))
		if err != nil {
			return nil, err
		}
		return ip.WithHost(str(f, "host")), nil
	case KindIPRange:
		return NewIPRange(str(f, "range"))
	case KindOpenPort:
		return NewOpenPort(str(f, "address"), num(f, "number"), PortInfo{
			Protocol: Protocol(str(f, "protocol")),
			Service:  str(f, "service"),
			SSL:      boolean(f, "ssl"),
			Host:     str(f, "host"),
		})
	case KindCert:
		return NewCert(str(f, "serial"), CertInfo{
			Subject:   str(f, "subject"),
			Issuer:    str(f, "issuer"),
			NotBefore: timestamp(f, "not_before"),
			NotAfter:  timestamp(f, "not_after"),
			Names:     strs(f, "names"),
		})
	case KindEmailAddress:
		return NewEmailAddress(str(f, "address"))
	case KindURL:
		u, err := NewURL(str(f, "url"))
		if err != nil {
			return nil, err
		}
		if status, headers, body := num(f, "status"), headerMap(f, "headers"), str(f, "body"); status != 0 || headers != nil || body != "" {
			u = u.WithResponse(status, headers, body)
		}
		return u, nil
	case KindWebsite:
		return NewWebsite(str(f, "scheme"), str(f, "host"), num(f, "port"))
	case KindWebSocket:
		return wsFromFields(f)
	default:
		return nil, invalid("unknown kind %q", k)
	}
}

func wsFromFields(f map[string]any) (Value, error) {
	scheme := str(f, "scheme")
	host := str(f, "host")
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	raw := scheme + "://" + host
	if port := num(f, "port"); port != 0 {
		raw += ":" + strconv.Itoa(port)
	}
	raw += str(f, "path")
	if q := str(f, "query"); q != "" {
		raw += "?" + q
	}
	return NewWebSocket(raw)
}

func str(f map[string]any, k string) string {
	switch v := f[k].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func num(f map[string]any, k string) int {
	switch v := f[k].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

func boolean(f map[string]any, k string) bool {
	switch v := f[k].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

func timestamp(f map[string]any, k string) time.Time {
	if t, ok := f[k].(time.Time); ok {
		return t
	}
	t, _ := time.Parse(time.RFC3339, str(f, k))
	return t
}

func strs(f map[string]any, k string) []string {
	switch v := f[k].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func headerMap(f map[string]any, k string) map[string][]string {
	switch v := f[k].(type) {
	case map[string][]string:
		return v
	case map[string]any:
		out := make(map[string][]string, len(v))
		for name, vals := range v {
			out[name] = strs(map[string]any{"v": vals}, "v")
		}
		return out
	default:
		return nil
	}
}
