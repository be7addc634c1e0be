// internal/testutil/fixtures.go
package testutil

// Fixture data para tests (solo strings, sin dependencias de value).

// FixtureHostnames contiene nombres de host válidos.
var FixtureHostnames = []string{
	"example.com",
	"www.example.com",
	"dev.example.com",
	"staging.example.com",
}

// FixtureInvalidHostnames contiene nombres inválidos.
var FixtureInvalidHostnames = []string{
	"",
	"not a host",
	"-invalid.com",
	"invalid-.com",
	"example..com",
}

// FixtureIPs contiene IPs de prueba.
var FixtureIPs = []string{
	"93.184.215.14",
	"10.0.0.1",
	"192.168.1.1",
	"2001:db8::1",
}

// FixtureSeeds covers every seed syntax the value parser understands.
var FixtureSeeds = map[string]string{
	"example.com":               "domain",
	"*.example.com":             "wildcard",
	"93.184.215.14":             "ip",
	"10.0.0.0/24":               "ip_range",
	"10.0.*.*":                  "ip_range",
	"https://www.example.com":   "url",
	"admin@example.com":         "email_address",
	"wss://ws.example.com/feed": "websocket",
}
