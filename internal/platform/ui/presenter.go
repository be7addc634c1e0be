// internal/platform/ui/presenter.go
package ui

import (
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"reconweave/internal/core/engine"
)

// Mode define el modo de visualización
type Mode string

const (
	ModeCompact Mode = "compact" // Contadores en vivo y resumen final (default)
	ModeQuiet   Mode = "quiet"   // Sin UI visual
	ModeRaw     Mode = "raw"     // Una línea logfmt por evento
)

// Presenter presenta el progreso de una corrida a partir de los eventos
// del engine. Observe corre en la goroutine del coordinador y no bloquea.
type Presenter interface {
	// Start muestra la configuración de la corrida
	Start(info RunInfo)

	// Observe procesa un evento del engine
	Observe(e engine.Event)

	// Finish muestra el resumen final
	Finish(summary Summary)

	// Close libera recursos (spinners, buffers)
	Close() error
}

// RunInfo contiene información inicial de la corrida
type RunInfo struct {
	RunID    string
	Seeds    []string
	Workers  []string
	MaxDepth int
	Timeout  time.Duration
}

// Summary contiene las estadísticas finales
type Summary struct {
	Duration      time.Duration
	Values        int
	Edges         int
	ByKind        map[string]int
	JobsCompleted int
	JobsFailed    int
	Cancelled     bool
	Outputs       []string
}

// New crea el presenter para mode. Un modo desconocido usa compact.
func New(mode Mode, w io.Writer) Presenter {
	if w == nil {
		w = os.Stderr
	}
	switch mode {
	case ModeQuiet:
		return NewQuietPresenter()
	case ModeRaw:
		return NewRawPresenter(w, LogFormatText)
	default:
		return NewCompactPresenter(w, isTerminal(w))
	}
}

// isTerminal reporta si w es una terminal; el spinner solo se usa ahí.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Attach suscribe p a todos los eventos de e.
func Attach(e *engine.Engine, p Presenter) {
	for _, k := range []engine.EventKind{
		engine.ValueDiscovered,
		engine.ConnectionDiscovered,
		engine.JobStarted,
		engine.JobCompleted,
		engine.JobFailed,
	} {
		e.On(k, p.Observe)
	}
}
