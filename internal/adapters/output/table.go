// internal/adapters/output/table.go
package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
)

// maxParents limita cuántos padres se listan por fila.
const maxParents = 3

// TableExporter imprime el grafo como tabla legible en terminal.
type TableExporter struct {
	w io.Writer
}

// NewTableExporter crea un exporter que escribe en w (stdout si es nil).
func NewTableExporter(w io.Writer) *TableExporter {
	if w == nil {
		w = os.Stdout
	}
	return &TableExporter{w: w}
}

func (e *TableExporter) Name() string { return "table" }

func (e *TableExporter) Export(_ context.Context, r *ports.Report) error {
	seeds := make([]string, 0, len(r.Seeds))
	for _, s := range r.Seeds {
		seeds = append(seeds, s.String())
	}

	fmt.Fprintf(e.w, "\n=== reconweave run %s ===\n", r.RunID)
	fmt.Fprintf(e.w, "Seeds:     %s\n", strings.Join(seeds, ", "))
	fmt.Fprintf(e.w, "Duration:  %s\n", r.Duration().Round(time.Millisecond))
	fmt.Fprintf(e.w, "Values:    %d\n", r.Graph.Len())
	fmt.Fprintf(e.w, "Jobs:      %d completed, %d failed\n", r.JobsCompleted, r.JobsFailed)
	if r.Cancelled {
		fmt.Fprintln(e.w, "Status:    cancelled")
	}
	fmt.Fprintln(e.w)

	nodes := r.Graph.Nodes()
	if len(nodes) == 0 {
		fmt.Fprintln(e.w, "No values discovered.")
		return nil
	}

	data := pterm.TableData{{"TYPE", "VALUE", "PARENTS", "SEED"}}
	for _, v := range nodes {
		parents, _ := r.Graph.ParentsOf(v)
		names := make([]string, 0, min(len(parents), maxParents))
		for i, p := range parents {
			if i == maxParents {
				names = append(names, fmt.Sprintf("+%d", len(parents)-maxParents))
				break
			}
			names = append(names, p.String())
		}

		seed := "-"
		if path := r.Graph.PathToSeed(v); len(path) > 1 {
			seed = path[len(path)-1].String()
		}
		data = append(data, []string{string(v.Kind()), v.String(), strings.Join(names, ", "), seed})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	fmt.Fprintln(e.w, out)

	// Stats summary
	stats := r.Graph.Stats()
	kinds := make([]string, 0, len(stats.ByKind))
	for k := range stats.ByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	fmt.Fprintln(e.w, "\nStatistics by Type:")
	for _, k := range kinds {
		fmt.Fprintf(e.w, "  - %s: %d\n", k, stats.ByKind[value.Kind(k)])
	}
	fmt.Fprintln(e.w)
	return nil
}
