package value

import (
	"maps"
	"net"
	"net/netip"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"reconweave/internal/platform/validator"
)

// URL is an absolute http(s) URI. The response fields (status, headers,
// body) describe what was fetched and are not part of identity.
type URL struct {
	uri     *url.URL
	status  int
	headers map[string][]string
	body    string
}

func NewURL(raw string) (URL, error) {
	u, err := normalizeURI(raw, "http", "https")
	if err != nil {
		return URL{}, err
	}
	return URL{uri: u}, nil
}

// WithResponse returns a copy carrying the fetch result.
func (u URL) WithResponse(status int, headers map[string][]string, body string) URL {
	u.status = status
	u.headers = maps.Clone(headers)
	u.body = body
	return u
}

// normalizeURI lower-cases scheme and host, drops default ports and the
// fragment, and defaults an empty path to "/".
func normalizeURI(raw string, schemes ...string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return nil, invalid("uri %q", raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if !slices.Contains(schemes, u.Scheme) {
		return nil, invalid("uri scheme %q", u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" {
		n, ok := validator.ParsePort(port)
		if !ok {
			return nil, invalid("uri port %q", port)
		}
		if n != validator.DefaultPort(u.Scheme) {
			host = net.JoinHostPort(host, port)
		} else if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	u.Host = host
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

// parsed devuelve la URI normalizada; un URL{} sin construir se ve vacío.
func (u URL) parsed() *url.URL {
	if u.uri == nil {
		return &url.URL{}
	}
	return u.uri
}

func (u URL) URI() string    { return u.parsed().String() }
func (u URL) Scheme() string { return u.parsed().Scheme }
func (u URL) Host() string   { return u.parsed().Hostname() }
func (u URL) Path() string   { return u.parsed().Path }
func (u URL) Query() string  { return u.parsed().RawQuery }
func (u URL) Status() int    { return u.status }
func (u URL) Body() string   { return u.body }

// Port returns the explicit port or the scheme default.
func (u URL) Port() int {
	if p, ok := validator.ParsePort(u.parsed().Port()); ok {
		return p
	}
	return validator.DefaultPort(u.parsed().Scheme)
}

func (u URL) Headers() map[string][]string { return maps.Clone(u.headers) }

func (URL) Kind() Kind       { return KindURL }
func (u URL) Key() string    { return key(KindURL, u.URI()) }
func (u URL) String() string { return u.URI() }

func (u URL) Fields() map[string]any {
	f := map[string]any{"type": string(KindURL), "url": u.URI()}
	if u.status != 0 {
		f["status"] = u.status
	}
	if len(u.headers) > 0 {
		f["headers"] = maps.Clone(u.headers)
	}
	if u.body != "" {
		f["body"] = u.body
	}
	return f
}

// FuzzyMatches: a URL with the same URI.
func (u URL) FuzzyMatches(other Value) bool {
	o, ok := other.(URL)
	return ok && o.URI() == u.URI()
}

func (URL) sealed() {}

// Website is an HTTP(S) origin: scheme, host and port.
type Website struct {
	scheme string
	host   string
	port   int
}

func NewWebsite(scheme, host string, port int) (Website, error) {
	scheme = strings.ToLower(scheme)
	if scheme != "http" && scheme != "https" {
		return Website{}, invalid("website scheme %q", scheme)
	}
	h := strings.Trim(validator.NormalizeHostname(host), "[]")
	if _, err := netip.ParseAddr(h); err != nil && !validator.IsHostname(h) {
		return Website{}, invalid("website host %q", host)
	}
	if port == 0 {
		port = validator.DefaultPort(scheme)
	}
	if !validator.IsPort(port) {
		return Website{}, invalid("website port %d", port)
	}
	return Website{scheme: scheme, host: h, port: port}, nil
}

// WebsiteOf returns the origin of a URL.
func WebsiteOf(u URL) Website {
	return Website{scheme: u.Scheme(), host: u.Host(), port: u.Port()}
}

func (w Website) Scheme() string { return w.scheme }
func (w Website) Host() string   { return w.host }
func (w Website) Port() int      { return w.port }

// URL returns the website's URL for path.
func (w Website) URL(path string) (URL, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return NewURL(w.String() + path)
}

func (Website) Kind() Kind { return KindWebsite }

func (w Website) Key() string {
	return key(KindWebsite, w.scheme, w.host, strconv.Itoa(w.port))
}

func (w Website) String() string {
	return w.scheme + "://" + originHost(w.host, w.port, w.scheme)
}

func (w Website) Fields() map[string]any {
	return map[string]any{
		"type":   string(KindWebsite),
		"scheme": w.scheme,
		"host":   w.host,
		"port":   w.port,
	}
}

// FuzzyMatches: the same origin, or a URL served from it.
func (w Website) FuzzyMatches(other Value) bool {
	switch o := other.(type) {
	case Website:
		return o == w
	case URL:
		return o.Scheme() == w.scheme && o.Host() == w.host && o.Port() == w.port
	default:
		return false
	}
}

func (Website) sealed() {}

// WebSocket is a ws(s) endpoint identified by scheme, host, port, path and query.
type WebSocket struct {
	scheme string
	host   string
	port   int
	path   string
	query  string
}

func NewWebSocket(raw string) (WebSocket, error) {
	u, err := normalizeURI(raw, "ws", "wss")
	if err != nil {
		return WebSocket{}, err
	}
	port := validator.DefaultPort(u.Scheme)
	if p, ok := validator.ParsePort(u.Port()); ok {
		port = p
	}
	return WebSocket{
		scheme: u.Scheme,
		host:   u.Hostname(),
		port:   port,
		path:   u.Path,
		query:  u.RawQuery,
	}, nil
}

func (s WebSocket) Scheme() string { return s.scheme }
func (s WebSocket) Host() string   { return s.host }
func (s WebSocket) Port() int      { return s.port }
func (s WebSocket) Path() string   { return s.path }
func (s WebSocket) Query() string  { return s.query }

func (WebSocket) Kind() Kind { return KindWebSocket }

func (s WebSocket) Key() string {
	return key(KindWebSocket, s.scheme, s.host, strconv.Itoa(s.port), s.path, s.query)
}

func (s WebSocket) String() string {
	out := s.scheme + "://" + originHost(s.host, s.port, s.scheme) + s.path
	if s.query != "" {
		out += "?" + s.query
	}
	return out
}

func (s WebSocket) Fields() map[string]any {
	f := map[string]any{
		"type":   string(KindWebSocket),
		"scheme": s.scheme,
		"host":   s.host,
		"port":   s.port,
		"path":   s.path,
	}
	if s.query != "" {
		f["query"] = s.query
	}
	return f
}

func (s WebSocket) FuzzyMatches(other Value) bool { return Equal(s, other) }

func (WebSocket) sealed() {}

func originHost(host string, port int, scheme string) string {
	if port == validator.DefaultPort(scheme) {
		if strings.Contains(host, ":") {
			return "[" + host + "]"
		}
		return host
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
