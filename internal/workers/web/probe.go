package web

import (
	"context"
	"fmt"
	"net/http"

	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/httpclient"
	"reconweave/internal/platform/logx"
)

// Probe fetches the root of a Website and emits it as a URL carrying the
// response. A redirect is not followed; its Location is emitted as a URL
// of its own.
type Probe struct {
	client *httpclient.Client
	path   string
	logger logx.Logger
}

func NewProbe(client *httpclient.Client, path string, logger logx.Logger) *Probe {
	if path == "" {
		path = "/"
	}
	client.SetRedirectPolicy(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	})
	return &Probe{client: client, path: path, logger: logger}
}

func (p *Probe) Process(ctx context.Context, v value.Value, emit ports.Emit) error {
	site, ok := v.(value.Website)
	if !ok {
		return fmt.Errorf("%s: unsupported value %s", ProbeID, v.Kind())
	}
	target, err := site.URL(p.path)
	if err != nil {
		return err
	}

	resp, err := p.client.Get(ctx, target.URI(), nil)
	if err != nil {
		return fmt.Errorf("probe %s: %w", target.URI(), err)
	}
	body, err := p.client.ReadBody(resp)
	if err != nil {
		return fmt.Errorf("probe %s: %w", target.URI(), err)
	}

	emit(target.WithResponse(resp.StatusCode, resp.Header, string(body)))

	if loc, err := resp.Location(); err == nil {
		next, err := value.NewURL(loc.String())
		switch {
		case err != nil:
			p.logger.Debug("ignoring redirect", "from", target.URI(), "location", loc.String())
		case !value.Equal(next, target):
			emit(next)
		}
	}
	return nil
}
