package web

import (
	"time"

	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/httpclient"
	"reconweave/internal/platform/logx"
	"reconweave/internal/platform/registry"
	"reconweave/internal/platform/resilience"
)

const (
	PortWebsiteID = "web/port_website"
	CrtshID       = "web/crtsh"
	ProbeID       = "web/probe"
)

// Register adds the web workers to reg.
func Register(reg *registry.WorkerRegistry) {
	reg.MustRegister(ports.WorkerSpec{
		ID:          PortWebsiteID,
		Description: "Website origin of http-like open ports",
		Accepts:     []value.Kind{value.KindOpenPort},
		Outputs:     []value.Kind{value.KindWebsite},
	}, func(cfg ports.WorkerConfig, logger logx.Logger) (ports.Worker, error) {
		return NewPortWebsite(
			registry.IntsParam(cfg.Params, "http_ports", nil),
			registry.IntsParam(cfg.Params, "https_ports", nil),
			logger,
		), nil
	})

	reg.MustRegister(ports.WorkerSpec{
		ID:          CrtshID,
		Description: "Certificate Transparency log search via crt.sh",
		Accepts:     []value.Kind{value.KindDomain},
		Outputs:     []value.Kind{value.KindHost, value.KindWildcard, value.KindCert},
		Concurrency: 1,
		Mode:        ports.ModePassive,
	}, func(cfg ports.WorkerConfig, logger logx.Logger) (ports.Worker, error) {
		client := newClient(cfg.Params, 60*time.Second, 2, 5, logger)
		return NewCRT(
			client,
			registry.StringParam(cfg.Params, "endpoint", defaultCrtshEndpoint),
			registry.BoolParam(cfg.Params, "certs", true),
			logger,
		), nil
	})

	reg.MustRegister(ports.WorkerSpec{
		ID:          ProbeID,
		Description: "Fetch the root page of websites",
		Accepts:     []value.Kind{value.KindWebsite},
		Outputs:     []value.Kind{value.KindURL},
		Concurrency: 4,
		Mode:        ports.ModeActive,
	}, func(cfg ports.WorkerConfig, logger logx.Logger) (ports.Worker, error) {
		client := newClient(cfg.Params, 10*time.Second, 0, 0, logger)
		return NewProbe(client, registry.StringParam(cfg.Params, "path", "/"), logger), nil
	})
}

// newClient reads the shared HTTP params: timeout, retries, rate, burst,
// user_agent, max_body, breaker_threshold and breaker_cooldown.
func newClient(params map[string]any, timeout time.Duration, retries, breaker int, logger logx.Logger) *httpclient.Client {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = registry.DurationParam(params, "timeout", timeout)
	cfg.MaxRetries = registry.IntParam(params, "retries", retries)
	cfg.RetryBackoff = registry.DurationParam(params, "retry_backoff", 2*time.Second)
	cfg.RateLimit = registry.FloatParam(params, "rate", 0)
	cfg.RateLimitBurst = registry.IntParam(params, "burst", 1)
	cfg.UserAgent = registry.StringParam(params, "user_agent", httpclient.DefaultUserAgent)
	cfg.MaxBodyBytes = int64(registry.IntParam(params, "max_body", 1<<20))
	cfg.Breaker = resilience.NewBreaker(
		registry.IntParam(params, "breaker_threshold", breaker),
		registry.DurationParam(params, "breaker_cooldown", time.Minute),
	)
	return httpclient.New(cfg, logger)
}
