// internal/core/engine/events.go
package engine

import "reconweave/internal/core/value"

// EventKind identifica los eventos que el engine expone a observadores.
type EventKind int

const (
	ValueDiscovered EventKind = iota
	ConnectionDiscovered
	JobStarted
	JobCompleted
	JobFailed
)

var eventNames = [...]string{
	ValueDiscovered:      "value_discovered",
	ConnectionDiscovered: "connection_discovered",
	JobStarted:           "job_started",
	JobCompleted:         "job_completed",
	JobFailed:            "job_failed",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// Event es el único registro que reciben los handlers; cada tipo de
// evento rellena los campos que le aplican.
//
//	ValueDiscovered       Worker, Value, Parent, Depth
//	ConnectionDiscovered  Worker, Value, Parent, Depth
//	JobStarted            Worker, Value, Depth
//	JobCompleted          Worker, Value, Depth
//	JobFailed             Worker, Value, Depth, Err
type Event struct {
	Kind   EventKind
	Worker string
	Value  value.Value
	Parent value.Value
	Depth  int
	Err    error
}

// Handler observa eventos. Corre en la goroutine del coordinador y no debe
// bloquear ni llamar de vuelta al engine.
type Handler func(Event)

type handlers [len(eventNames)][]Handler

func (h *handlers) add(kind EventKind, fn Handler) {
	h[kind] = append(h[kind], fn)
}

func (h *handlers) fire(e Event) {
	for _, fn := range h[e.Kind] {
		fn(e)
	}
}
