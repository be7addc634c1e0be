package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"strconv"
	"testing"
	"time"

	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/httpclient"
	"reconweave/internal/platform/logx"
	"reconweave/internal/platform/registry"
	"reconweave/internal/testutil"
)

func run(t *testing.T, w ports.Worker, v value.Value) ([]value.Value, error) {
	t.Helper()
	var out []value.Value
	err := w.Process(context.Background(), v, func(nv value.Value) { out = append(out, nv) })
	return out, err
}

func testClient() *httpclient.Client {
	return httpclient.New(httpclient.Config{Timeout: 2 * time.Second}, logx.Discard())
}

func TestPortWebsite(t *testing.T) {
	w := NewPortWebsite(nil, nil, logx.Discard())

	tests := []struct {
		name string
		port value.OpenPort
		want string // "" = nothing
	}{
		{"http by number", value.Must(value.NewOpenPort("10.0.0.1", 80, value.PortInfo{})), "http://10.0.0.1"},
		{"https by number", value.Must(value.NewOpenPort("10.0.0.1", 443, value.PortInfo{})), "https://10.0.0.1"},
		{"alt port with host hint", value.Must(value.NewOpenPort("10.0.0.1", 8080, value.PortInfo{Host: "www.example.com"})), "http://www.example.com:8080"},
		{"ssl flag upgrades", value.Must(value.NewOpenPort("10.0.0.1", 8080, value.PortInfo{SSL: true})), "https://10.0.0.1:8080"},
		{"service name wins", value.Must(value.NewOpenPort("10.0.0.1", 3000, value.PortInfo{Service: "http"})), "http://10.0.0.1:3000"},
		{"https service", value.Must(value.NewOpenPort("10.0.0.1", 4443, value.PortInfo{Service: "https"})), "https://10.0.0.1:4443"},
		{"non-http service", value.Must(value.NewOpenPort("10.0.0.1", 80, value.PortInfo{Service: "ssh"})), ""},
		{"unknown port", value.Must(value.NewOpenPort("10.0.0.1", 22, value.PortInfo{})), ""},
		{"udp skipped", value.Must(value.NewOpenPort("10.0.0.1", 80, value.PortInfo{Protocol: value.UDP})), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, w, tt.port)
			testutil.RequireNoError(t, err, "process")
			if tt.want == "" {
				testutil.AssertEqual(t, len(out), 0, "nothing emitted")
				return
			}
			testutil.AssertEqual(t, len(out), 1, "one website")
			testutil.AssertEqual(t, out[0].Kind(), value.KindWebsite, "kind")
			testutil.AssertEqual(t, out[0].String(), tt.want, "origin")
		})
	}
}

func TestPortWebsite_CustomPorts(t *testing.T) {
	w := NewPortWebsite([]int{3000}, []int{4443}, logx.Discard())

	out, err := run(t, w, value.Must(value.NewOpenPort("10.0.0.1", 3000, value.PortInfo{})))
	testutil.RequireNoError(t, err, "process")
	testutil.AssertEqual(t, len(out), 1, "custom http port")

	out, err = run(t, w, value.Must(value.NewOpenPort("10.0.0.1", 80, value.PortInfo{})))
	testutil.RequireNoError(t, err, "process")
	testutil.AssertEqual(t, len(out), 0, "defaults replaced")
}

const crtshBody = `[
  {"issuer_name":"C=US, O=Let's Encrypt, CN=R3","common_name":"example.com","name_value":"example.com\nwww.example.com","not_before":"2024-01-01T00:00:00","not_after":"2024-04-01T00:00:00","serial_number":"04a1b2c3d4"},
  {"issuer_name":"C=US, O=Let's Encrypt, CN=R3","common_name":"*.example.com","name_value":"*.example.com\nWWW.example.com\nother.org","not_before":"2024-02-01T00:00:00","not_after":"2024-05-01T00:00:00","serial_number":"0b0c0d"},
  {"issuer_name":"X","common_name":"other.org","name_value":"other.org","not_before":"","not_after":"","serial_number":"ff"}
]`

func TestCRT(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.URL.Query().Get("q"), "%.example.com", "query")
		testutil.AssertEqual(t, r.URL.Query().Get("output"), "json", "output")
		w.Write([]byte(crtshBody))
	}))
	defer server.Close()

	w := NewCRT(testClient(), server.URL+"/", true, logx.Discard())
	out, err := run(t, w, value.Must(value.NewDomain("example.com")))
	testutil.RequireNoError(t, err, "process")

	byKind := map[value.Kind][]string{}
	for _, v := range out {
		byKind[v.Kind()] = append(byKind[v.Kind()], v.String())
	}
	testutil.AssertSameStrings(t, byKind[value.KindHost], []string{"example.com", "www.example.com"}, "hosts deduplicated, out-of-domain dropped")
	testutil.AssertSameStrings(t, byKind[value.KindWildcard], []string{"*.example.com"}, "wildcard")
	testutil.AssertSameStrings(t, byKind[value.KindCert], []string{"04a1b2c3d4", "0b0c0d"}, "certs of in-domain records only")

	for _, v := range out {
		if c, ok := v.(value.Cert); ok && c.Serial() == "04a1b2c3d4" {
			testutil.AssertEqual(t, c.NotAfter(), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "not after parsed")
			testutil.AssertSameStrings(t, c.Names(), []string{"example.com", "www.example.com"}, "names")
		}
	}
}

func TestCRT_NoCerts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(crtshBody))
	}))
	defer server.Close()

	out, err := run(t, NewCRT(testClient(), server.URL, false, logx.Discard()), value.Must(value.NewDomain("example.com")))
	testutil.RequireNoError(t, err, "process")
	for _, v := range out {
		testutil.AssertNotEqual(t, v.Kind(), value.KindCert, "certs disabled")
	}
}

func TestCRT_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "%.html.test" {
			w.Write([]byte("<html>busy</html>"))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	w := NewCRT(testClient(), server.URL, true, logx.Discard())

	_, err := run(t, w, value.Must(value.NewDomain("html.test")))
	testutil.AssertError(t, err, "html response")
	testutil.AssertContains(t, err.Error(), "parse response", "parse failure")

	_, err = run(t, w, value.Must(value.NewDomain("down.test")))
	testutil.AssertError(t, err, "500")

	_, err = run(t, w, value.Must(value.NewHost("www.example.com")))
	testutil.AssertError(t, err, "hosts not accepted")
}

func websiteOf(t *testing.T, server *httptest.Server) value.Website {
	t.Helper()
	u, err := url.Parse(server.URL)
	testutil.RequireNoError(t, err, "parse server url")
	port, _ := strconv.Atoi(u.Port())
	addr := netip.MustParseAddr(u.Hostname())
	return value.Must(value.NewWebsite("http", addr.String(), port))
}

func TestProbe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Location", "/login")
			w.WriteHeader(http.StatusFound)
		default:
			w.Header().Set("Server", "test")
			w.Write([]byte("hello"))
		}
	}))
	defer server.Close()

	site := websiteOf(t, server)

	out, err := run(t, NewProbe(testClient(), "/", logx.Discard()), site)
	testutil.RequireNoError(t, err, "probe root")
	testutil.AssertEqual(t, len(out), 2, "root plus redirect target")

	root := out[0].(value.URL)
	testutil.AssertEqual(t, root.Status(), http.StatusFound, "redirect not followed")
	testutil.AssertEqual(t, root.Path(), "/", "root path")
	testutil.AssertEqual(t, out[1].(value.URL).Path(), "/login", "location resolved against request")
	testutil.AssertEqual(t, out[1].(value.URL).Status(), 0, "redirect target not fetched")

	out, err = run(t, NewProbe(testClient(), "/about", logx.Discard()), site)
	testutil.RequireNoError(t, err, "probe path")
	testutil.AssertEqual(t, len(out), 1, "no redirect")
	page := out[0].(value.URL)
	testutil.AssertEqual(t, page.Status(), http.StatusOK, "status")
	testutil.AssertEqual(t, page.Body(), "hello", "body")
	testutil.AssertEqual(t, page.Headers()["Server"][0], "test", "headers kept")
}

func TestProbe_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	site := websiteOf(t, server)
	server.Close()

	_, err := run(t, NewProbe(testClient(), "/", logx.Discard()), site)
	testutil.AssertError(t, err, "connection refused")
}

func TestRegister(t *testing.T) {
	reg := registry.New(logx.Discard())
	Register(reg)
	testutil.AssertSameStrings(t, reg.List(), []string{PortWebsiteID, CrtshID, ProbeID}, "ids")

	spec, _ := reg.Spec(ProbeID)
	testutil.AssertEqual(t, spec.Mode, ports.ModeActive, "probe touches targets")

	bindings, err := reg.Build(nil, map[string]ports.WorkerConfig{
		PortWebsiteID: {Params: map[string]any{"http_ports": []any{3000}}},
	}, logx.Discard())
	testutil.RequireNoError(t, err, "build")
	testutil.AssertEqual(t, len(bindings), 3, "bindings")
}
