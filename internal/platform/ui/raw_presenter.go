// internal/platform/ui/raw_presenter.go
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"reconweave/internal/core/engine"
)

// LogFormat define el formato de salida para el modo raw
type LogFormat string

const (
	LogFormatText LogFormat = "text" // Formato logfmt (default)
	LogFormatJSON LogFormat = "json" // Formato JSON estructurado
)

// RawPresenter escribe una línea por evento, sin formato visual. Pensado
// para pipes y logs de CI.
type RawPresenter struct {
	w      io.Writer
	format LogFormat
	mu     sync.Mutex
	now    func() time.Time
}

func NewRawPresenter(w io.Writer, format LogFormat) *RawPresenter {
	return &RawPresenter{w: w, format: format, now: time.Now}
}

func (r *RawPresenter) log(level, message string, fields map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timestamp := r.now().UTC().Format(time.RFC3339)
	if r.format == LogFormatJSON {
		r.logJSON(timestamp, level, message, fields)
	} else {
		r.logText(timestamp, level, message, fields)
	}
}

// logText escribe en formato logfmt: timestamp LEVEL message key=value key2=value2
func (r *RawPresenter) logText(timestamp, level, message string, fields map[string]any) {
	parts := []string{timestamp, fmt.Sprintf("%-5s", level), message}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, formatValue(fields[k])))
	}
	fmt.Fprintln(r.w, strings.Join(parts, " "))
}

func (r *RawPresenter) logJSON(timestamp, level, message string, fields map[string]any) {
	entry := map[string]any{
		"timestamp": timestamp,
		"level":     level,
		"message":   message,
	}
	if len(fields) > 0 {
		entry["data"] = fields
	}
	data, _ := json.Marshal(entry)
	fmt.Fprintln(r.w, string(data))
}

// formatValue entrecomilla strings con espacios o comillas.
func formatValue(v any) string {
	s := fmt.Sprint(v)
	if strings.ContainsAny(s, " \t\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

func (r *RawPresenter) Start(info RunInfo) {
	r.log("INFO", "run started", map[string]any{
		"run_id":    info.RunID,
		"seeds":     strings.Join(info.Seeds, ","),
		"workers":   len(info.Workers),
		"max_depth": info.MaxDepth,
	})
}

func (r *RawPresenter) Observe(e engine.Event) {
	fields := map[string]any{"worker": e.Worker, "depth": e.Depth}
	if e.Value != nil {
		fields["kind"] = string(e.Value.Kind())
		fields["value"] = e.Value.String()
	}
	if e.Parent != nil {
		fields["parent"] = e.Parent.String()
	}

	switch e.Kind {
	case engine.JobFailed:
		fields["error"] = fmt.Sprint(e.Err)
		r.log("WARN", e.Kind.String(), fields)
	case engine.JobStarted, engine.JobCompleted:
		r.log("DEBUG", e.Kind.String(), fields)
	default:
		r.log("INFO", e.Kind.String(), fields)
	}
}

func (r *RawPresenter) Finish(sum Summary) {
	r.log("INFO", "run finished", map[string]any{
		"duration_ms":    sum.Duration.Milliseconds(),
		"values":         sum.Values,
		"edges":          sum.Edges,
		"jobs_completed": sum.JobsCompleted,
		"jobs_failed":    sum.JobsFailed,
		"cancelled":      sum.Cancelled,
	})
}

func (r *RawPresenter) Close() error { return nil }
