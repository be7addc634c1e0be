// internal/platform/ui/symbols.go
package ui

import "github.com/pterm/pterm"

// Status es el estado visible de un worker, derivado de sus contadores
// (ver WorkerProgress.Status).
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSuccess
	StatusWarning
	StatusError
)

type statusLook struct {
	name   string
	symbol string
	color  pterm.Color
}

var statusLooks = [...]statusLook{
	StatusPending: {"pending", "⏸", pterm.FgGray},
	StatusRunning: {"running", "⣾", pterm.FgCyan},
	StatusSuccess: {"success", "✓", pterm.FgGreen},
	StatusWarning: {"warning", "⚠", pterm.FgYellow},
	StatusError:   {"error", "✗", pterm.FgRed},
}

func (s Status) look() statusLook {
	if s < 0 || int(s) >= len(statusLooks) {
		return statusLook{"unknown", "?", pterm.FgDefault}
	}
	return statusLooks[s]
}

func (s Status) String() string { return s.look().name }

// Symbol es el glifo de la columna de estado en la tabla de workers.
func (s Status) Symbol() string { return s.look().symbol }

func (s Status) Style() *pterm.Style { return pterm.NewStyle(s.look().color) }

// Iconos de la cabecera y del resumen
var (
	IconSeed    = "🎯"
	IconInfo    = "ℹ"
	IconWarning = "⚠"
	IconError   = "✗"
	IconSuccess = "✓"
	IconStats   = "📊"
	IconTime    = "⏱"
	IconValues  = "📦"
	IconWorkers = "⚙️"
)
