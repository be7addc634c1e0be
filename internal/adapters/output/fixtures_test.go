// internal/adapters/output/fixtures_test.go
package output

import (
	"time"

	"reconweave/internal/core/graph"
	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
)

var (
	seed    = value.Must(value.NewDomain("example.com"))
	www     = value.Must(value.NewHost("www.example.com"))
	api     = value.Must(value.NewHost("api.example.com"))
	address = value.Must(value.NewIP("93.184.215.14")).WithHost("www.example.com")
	cert    = value.Must(value.NewCert("0a1b2c", value.CertInfo{
		Subject:   "CN=www.example.com",
		NotBefore: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:  time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		Names:     []string{"www.example.com", "example.com"},
	}))
)

// sampleReport arma una corrida chica: example.com -> {www, api},
// www -> ip, {www, api} -> cert.
func sampleReport() *ports.Report {
	g := graph.New()
	g.AddSeed(seed)
	g.AddEdge(www, seed)
	g.AddEdge(api, seed)
	g.AddEdge(address, www)
	g.AddEdge(cert, www)
	g.AddEdge(cert, api)

	start := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	return &ports.Report{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Seeds:      []value.Value{seed},
		Workers: []ports.WorkerSpec{{
			ID:          "dns/lookup",
			Description: "resolve hosts",
			Accepts:     []value.Kind{value.KindHost},
			Concurrency: 4,
			Mode:        ports.ModePassive,
		}},
		Graph:         g,
		JobsCompleted: 5,
		JobsFailed:    1,
	}
}
