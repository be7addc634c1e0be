// Package web holds the HTTP-facing workers: open ports to websites,
// certificate transparency search and website probing.
package web

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/logx"
)

var (
	defaultHTTPPorts  = []int{80, 8000, 8008, 8080, 8888}
	defaultHTTPSPorts = []int{443, 8443, 9443}
)

// PortWebsite turns an http-like OpenPort into its Website origin.
type PortWebsite struct {
	httpPorts  []int
	httpsPorts []int
	logger     logx.Logger
}

func NewPortWebsite(httpPorts, httpsPorts []int, logger logx.Logger) *PortWebsite {
	if len(httpPorts) == 0 {
		httpPorts = defaultHTTPPorts
	}
	if len(httpsPorts) == 0 {
		httpsPorts = defaultHTTPSPorts
	}
	return &PortWebsite{httpPorts: httpPorts, httpsPorts: httpsPorts, logger: logger}
}

func (w *PortWebsite) Process(_ context.Context, v value.Value, emit ports.Emit) error {
	p, ok := v.(value.OpenPort)
	if !ok {
		return fmt.Errorf("%s: unsupported value %s", PortWebsiteID, v.Kind())
	}
	if p.Protocol() != value.TCP {
		return nil
	}

	scheme, ok := w.scheme(p)
	if !ok {
		return nil
	}

	host := p.Host()
	if host == "" {
		host = p.Addr().String()
	}
	site, err := value.NewWebsite(scheme, host, p.Number())
	if err != nil {
		// hint inválido: caer a la dirección
		site, err = value.NewWebsite(scheme, p.Addr().String(), p.Number())
		if err != nil {
			return err
		}
	}
	emit(site)
	return nil
}

// scheme decides whether p speaks HTTP and over which scheme. The service
// name wins over the port number.
func (w *PortWebsite) scheme(p value.OpenPort) (string, bool) {
	svc := strings.ToLower(p.Service())
	switch {
	case strings.Contains(svc, "https"), svc == "ssl/http":
		return "https", true
	case strings.Contains(svc, "http"):
		if p.SSL() {
			return "https", true
		}
		return "http", true
	case svc != "" && svc != "unknown":
		return "", false
	}

	switch {
	case slices.Contains(w.httpsPorts, p.Number()):
		return "https", true
	case slices.Contains(w.httpPorts, p.Number()):
		if p.SSL() {
			return "https", true
		}
		return "http", true
	}
	return "", false
}
