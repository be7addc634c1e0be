// internal/core/ports/exporter.go
package ports

import (
	"context"
	"time"

	"reconweave/internal/core/graph"
	"reconweave/internal/core/value"
)

// Report es el resultado de una corrida terminada tal como lo consumen los
// exporters. Solo expone el grafo y los metadatos de la corrida.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Seeds      []value.Value
	Workers    []WorkerSpec
	Graph      *graph.Graph

	JobsCompleted int
	JobsFailed    int
	Cancelled     bool
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Exporter es el port para exportar resultados en diferentes formatos.
type Exporter interface {
	// Name retorna el nombre del exporter (ej: "json", "table", "sqlite")
	Name() string

	// Export escribe el reporte en su destino
	Export(ctx context.Context, r *Report) error
}
