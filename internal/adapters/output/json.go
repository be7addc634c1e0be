// internal/adapters/output/json.go
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"reconweave/internal/core/graph"
	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
)

// Document es la forma serializada de un Report.
type Document struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	DurationMS int64         `json:"duration_ms"`
	Cancelled  bool          `json:"cancelled"`
	Seeds      []string      `json:"seeds"`
	Workers    []WorkerEntry `json:"workers"`
	Summary    Summary       `json:"summary"`
	Nodes      []NodeEntry   `json:"nodes"`
	Edges      []EdgeEntry   `json:"edges"`
}

// WorkerEntry describe un worker configurado en la corrida.
type WorkerEntry struct {
	ID          string   `json:"id"`
	Description string   `json:"description,omitempty"`
	Accepts     []string `json:"accepts"`
	Concurrency int      `json:"concurrency"`
	Mode        string   `json:"mode"`
}

// Summary representa un resumen del grafo y de los jobs.
type Summary struct {
	Nodes         int            `json:"nodes"`
	Edges         int            `json:"edges"`
	Roots         int            `json:"roots"`
	ByKind        map[string]int `json:"by_kind"`
	JobsCompleted int            `json:"jobs_completed"`
	JobsFailed    int            `json:"jobs_failed"`
}

// NodeEntry es un valor del grafo. ID es su clave de identidad.
type NodeEntry struct {
	ID     string         `json:"id"`
	Kind   string         `json:"kind"`
	Value  string         `json:"value"`
	Seed   bool           `json:"seed,omitempty"`
	Fields map[string]any `json:"fields"`
}

// EdgeEntry enlaza un hijo con uno de sus padres, por ID.
type EdgeEntry struct {
	Child  string `json:"child"`
	Parent string `json:"parent"`
}

// BuildDocument convierte un Report en su Document.
func BuildDocument(r *ports.Report) Document {
	stats := r.Graph.Stats()
	byKind := make(map[string]int, len(stats.ByKind))
	for k, n := range stats.ByKind {
		byKind[string(k)] = n
	}

	doc := Document{
		RunID:      r.RunID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DurationMS: r.Duration().Milliseconds(),
		Cancelled:  r.Cancelled,
		Seeds:      make([]string, 0, len(r.Seeds)),
		Workers:    make([]WorkerEntry, 0, len(r.Workers)),
		Summary: Summary{
			Nodes:         stats.Nodes,
			Edges:         stats.Edges,
			Roots:         stats.Roots,
			ByKind:        byKind,
			JobsCompleted: r.JobsCompleted,
			JobsFailed:    r.JobsFailed,
		},
		Nodes: make([]NodeEntry, 0, stats.Nodes),
		Edges: make([]EdgeEntry, 0, stats.Edges),
	}
	for _, s := range r.Seeds {
		doc.Seeds = append(doc.Seeds, s.String())
	}
	for _, w := range r.Workers {
		accepts := make([]string, 0, len(w.Accepts))
		for _, k := range w.Accepts {
			accepts = append(accepts, string(k))
		}
		doc.Workers = append(doc.Workers, WorkerEntry{
			ID:          w.ID,
			Description: w.Description,
			Accepts:     accepts,
			Concurrency: w.Concurrency,
			Mode:        string(w.Mode),
		})
	}
	for _, v := range r.Graph.Nodes() {
		doc.Nodes = append(doc.Nodes, NodeEntry{
			ID:     v.Key(),
			Kind:   string(v.Kind()),
			Value:  v.String(),
			Seed:   r.Graph.IsSeed(v),
			Fields: v.Fields(),
		})
	}
	for _, e := range r.Graph.Edges() {
		doc.Edges = append(doc.Edges, EdgeEntry{Child: e.Child.Key(), Parent: e.Parent.Key()})
	}
	return doc
}

// WriteJSON codifica el reporte con indentación en w.
func WriteJSON(w io.Writer, r *ports.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(BuildDocument(r)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ReadGraph reconstruye el grafo de un documento JSON. Los nodos se
// reconstruyen desde sus field maps y las aristas por ID.
func ReadGraph(rd io.Reader) (*graph.Graph, Document, error) {
	var doc Document
	if err := json.NewDecoder(rd).Decode(&doc); err != nil {
		return nil, doc, fmt.Errorf("failed to decode JSON: %w", err)
	}

	g := graph.New()
	byID := make(map[string]value.Value, len(doc.Nodes))
	for _, n := range doc.Nodes {
		v, err := value.FromFields(n.Fields)
		if err != nil {
			return nil, doc, fmt.Errorf("node %s: %w", n.ID, err)
		}
		byID[n.ID] = v
		if n.Seed {
			g.AddSeed(v)
		} else {
			g.AddNode(v)
		}
	}
	for _, e := range doc.Edges {
		child, ok1 := byID[e.Child]
		parent, ok2 := byID[e.Parent]
		if !ok1 || !ok2 {
			return nil, doc, fmt.Errorf("edge %s -> %s references unknown node", e.Child, e.Parent)
		}
		g.AddEdge(child, parent)
	}
	return g, doc, nil
}

// JSONExporter escribe el reporte como archivo JSON en
// <dir>/<seed>/reconweave_<seed>_<timestamp>.json.
type JSONExporter struct {
	Dir string

	// LastPath es la ruta del último archivo escrito.
	LastPath string
}

func NewJSONExporter(dir string) *JSONExporter {
	return &JSONExporter{Dir: dir}
}

func (e *JSONExporter) Name() string { return "json" }

func (e *JSONExporter) Export(_ context.Context, r *ports.Report) error {
	dir := e.Dir
	if dir == "" {
		dir = "."
	}

	label := reportLabel(r)
	fullDir := filepath.Join(dir, sanitizeName(label))
	if err := os.MkdirAll(fullDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	stamp := r.StartedAt.Format("20060102_150405")
	path := filepath.Join(fullDir, fmt.Sprintf("reconweave_%s_%s.json", sanitizeName(label), stamp))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := WriteJSON(f, r); err != nil {
		return err
	}
	e.LastPath = path
	return nil
}

// reportLabel nombra la corrida por su primera seed (orden alfabético).
func reportLabel(r *ports.Report) string {
	if len(r.Seeds) == 0 {
		return "run"
	}
	names := make([]string, 0, len(r.Seeds))
	for _, s := range r.Seeds {
		names = append(names, s.String())
	}
	sort.Strings(names)
	return names[0]
}

// sanitizeName convierte un valor en un nombre de archivo válido.
// Ejemplo: "example.com" -> "example_com", "10.0.0.0/24" -> "10_0_0_0_24"
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, s)
}
