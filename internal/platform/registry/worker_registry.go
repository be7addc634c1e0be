// internal/platform/registry/worker_registry.go
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"reconweave/internal/core/engine"
	"reconweave/internal/core/ports"
	"reconweave/internal/platform/logx"
)

var (
	// ErrUnknownWorker se retorna al habilitar un id no registrado.
	ErrUnknownWorker = errors.New("unknown worker")

	// ErrDuplicateWorker se retorna al registrar dos veces el mismo id.
	ErrDuplicateWorker = errors.New("worker already registered")
)

// WorkerRegistry es la tabla compilada id → factory. Se arma al arrancar,
// antes de leer la configuración, y luego solo se consulta.
type WorkerRegistry struct {
	mu        sync.RWMutex
	factories map[string]ports.WorkerFactory
	specs     map[string]ports.WorkerSpec
	logger    logx.Logger
}

// New crea un registry vacío.
func New(logger logx.Logger) *WorkerRegistry {
	return &WorkerRegistry{
		factories: make(map[string]ports.WorkerFactory),
		specs:     make(map[string]ports.WorkerSpec),
		logger:    logger.With("component", "worker-registry"),
	}
}

// Register registra una factory con su spec. La spec se normaliza aquí,
// una sola vez.
func (r *WorkerRegistry) Register(spec ports.WorkerSpec, factory ports.WorkerFactory) error {
	if factory == nil {
		return fmt.Errorf("factory cannot be nil for worker %s", spec.ID)
	}
	spec, err := spec.Normalize()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[spec.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateWorker, spec.ID)
	}
	r.factories[spec.ID] = factory
	r.specs[spec.ID] = spec
	r.logger.Debug("worker registered", "id", spec.ID, "accepts", len(spec.Accepts), "mode", spec.Mode)
	return nil
}

// MustRegister is Register for the compiled-in table; it panics on error.
func (r *WorkerRegistry) MustRegister(spec ports.WorkerSpec, factory ports.WorkerFactory) {
	if err := r.Register(spec, factory); err != nil {
		panic(err)
	}
}

// Build instancia los workers habilitados, en el orden dado. Con enabled
// vacío se construyen todos los registrados, en orden alfabético. Cualquier
// id desconocido o factory fallida aborta la construcción.
func (r *WorkerRegistry) Build(enabled []string, configs map[string]ports.WorkerConfig, logger logx.Logger) ([]engine.Binding, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := enabled
	if len(ids) == 0 {
		ids = r.sortedIDs()
	}

	bindings := make([]engine.Binding, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		factory, ok := r.factories[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownWorker, id)
		}
		cfg := configs[id]
		if cfg.Concurrency < 0 {
			return nil, fmt.Errorf("worker %s: concurrency cannot be negative, got %d", id, cfg.Concurrency)
		}

		w, err := factory(cfg, logger.With("worker", id))
		if err != nil {
			return nil, fmt.Errorf("failed to build worker %s: %w", id, err)
		}

		spec := r.specs[id]
		units := spec.Concurrency
		if cfg.Concurrency > 0 {
			units = cfg.Concurrency
		}
		bindings = append(bindings, engine.Binding{Spec: spec, Worker: w, Concurrency: cfg.Concurrency})
		logger.Debug("worker built", "id", id, "concurrency", units)
	}

	logger.Info("workers built", "count", len(bindings))
	return bindings, nil
}

// List retorna los ids registrados en orden alfabético.
func (r *WorkerRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedIDs()
}

// Spec retorna la spec de un worker.
func (r *WorkerRegistry) Spec(id string) (ports.WorkerSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[id]
	return spec, ok
}

// Specs retorna todas las specs ordenadas por id.
func (r *WorkerRegistry) Specs() []ports.WorkerSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ports.WorkerSpec, 0, len(r.specs))
	for _, id := range r.sortedIDs() {
		out = append(out, r.specs[id])
	}
	return out
}

// IsRegistered verifica si un worker está registrado.
func (r *WorkerRegistry) IsRegistered(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[id]
	return ok
}

func (r *WorkerRegistry) sortedIDs() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
