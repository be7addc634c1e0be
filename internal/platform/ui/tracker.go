// internal/platform/ui/tracker.go
package ui

import (
	"sort"
	"sync"

	"reconweave/internal/core/engine"
)

// WorkerProgress acumula los contadores de un worker. Completed cuenta
// solo los jobs terminados sin error.
type WorkerProgress struct {
	ID        string
	Running   int
	Completed int
	Failed    int
	Emitted   int
}

// Status deriva el estado visible del worker a partir de sus contadores.
func (w WorkerProgress) Status() Status {
	switch {
	case w.Running > 0:
		return StatusRunning
	case w.Failed > 0 && w.Completed == 0:
		return StatusError
	case w.Failed > 0:
		return StatusWarning
	case w.Completed > 0:
		return StatusSuccess
	default:
		return StatusPending
	}
}

// Tracker cuenta eventos del engine. Es seguro para uso concurrente.
type Tracker struct {
	mu      sync.Mutex
	workers map[string]*WorkerProgress
	jobs    map[string]jobMark // worker + value key
	kinds   map[string]int
	values  int
	edges   int
}

// jobMark recuerda qué vio el tracker de un job en curso. El engine emite
// JobFailed antes de JobCompleted, y un job cancelado no tiene JobStarted.
type jobMark struct {
	started bool
	failed  bool
}

func NewTracker() *Tracker {
	return &Tracker{
		workers: make(map[string]*WorkerProgress),
		jobs:    make(map[string]jobMark),
		kinds:   make(map[string]int),
	}
}

func jobKey(e engine.Event) string {
	if e.Value == nil {
		return e.Worker
	}
	return e.Worker + "\x00" + e.Value.Key()
}

// Observe actualiza los contadores con e.
func (t *Tracker) Observe(e engine.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var w *WorkerProgress
	if e.Worker != "" {
		w = t.workers[e.Worker]
		if w == nil {
			w = &WorkerProgress{ID: e.Worker}
			t.workers[e.Worker] = w
		}
	}

	switch e.Kind {
	case engine.ValueDiscovered:
		t.values++
		if e.Value != nil {
			t.kinds[string(e.Value.Kind())]++
		}
		// la arista llega aparte como ConnectionDiscovered
		if w != nil {
			w.Emitted++
		}
	case engine.ConnectionDiscovered:
		t.edges++
	case engine.JobStarted:
		if w != nil {
			w.Running++
			t.jobs[jobKey(e)] = jobMark{started: true}
		}
	case engine.JobFailed:
		if w != nil {
			w.Failed++
			m := t.jobs[jobKey(e)]
			m.failed = true
			t.jobs[jobKey(e)] = m
		}
	case engine.JobCompleted:
		if w != nil {
			k := jobKey(e)
			m := t.jobs[k]
			delete(t.jobs, k)
			if m.started {
				w.Running--
			}
			if !m.failed {
				w.Completed++
			}
		}
	}
}

// Snapshot es una copia consistente de los contadores.
type Snapshot struct {
	Values  int
	Edges   int
	Running int
	Done    int
	Failed  int
	ByKind  map[string]int
	Workers []WorkerProgress // ordenados por ID
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		Values:  t.values,
		Edges:   t.edges,
		ByKind:  make(map[string]int, len(t.kinds)),
		Workers: make([]WorkerProgress, 0, len(t.workers)),
	}
	for k, n := range t.kinds {
		s.ByKind[k] = n
	}
	for _, w := range t.workers {
		s.Running += w.Running
		s.Done += w.Completed
		s.Failed += w.Failed
		s.Workers = append(s.Workers, *w)
	}
	sort.Slice(s.Workers, func(i, j int) bool { return s.Workers[i].ID < s.Workers[j].ID })
	return s
}
