// internal/core/ports/worker.go
package ports

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"reconweave/internal/core/value"
	"reconweave/internal/platform/logx"
)

// ErrInvalidSpec se retorna cuando un WorkerSpec no cumple el contrato.
var ErrInvalidSpec = errors.New("invalid worker spec")

// Emit publica un valor descubierto. Es seguro llamarlo desde cualquier
// goroutine, pero solo mientras Process no haya retornado.
type Emit func(value.Value)

// Worker es el port primario para todas las unidades de descubrimiento.
// Una misma instancia es compartida por todas las unidades de su pool,
// por lo que Process debe tolerar llamadas concurrentes.
type Worker interface {
	// Process consume un valor de un tipo aceptado y emite cero o más valores nuevos.
	// Un error retornado se reporta como fallo del job; nunca aborta la ejecución.
	Process(ctx context.Context, v value.Value, emit Emit) error
}

// WorkerFunc adapta una función al contrato Worker.
type WorkerFunc func(ctx context.Context, v value.Value, emit Emit) error

func (f WorkerFunc) Process(ctx context.Context, v value.Value, emit Emit) error {
	return f(ctx, v, emit)
}

// SourceMode indica si un worker toca la infraestructura objetivo.
type SourceMode string

const (
	ModePassive SourceMode = "passive"
	ModeActive  SourceMode = "active"
)

// WorkerSpec es la declaración inmutable de un worker, resuelta una sola vez
// al registrarlo.
type WorkerSpec struct {
	ID          string
	Description string

	// Accepts lista los tipos exactos que el worker consume (no vacío).
	Accepts []value.Kind

	// Outputs es solo documentación; el core no lo verifica.
	Outputs []value.Kind

	// Concurrency es el número de unidades por defecto (>= 1).
	Concurrency int

	Mode SourceMode
}

// Normalize devuelve una copia con defaults aplicados y valida el contrato.
func (s WorkerSpec) Normalize() (WorkerSpec, error) {
	if s.ID == "" {
		return s, fmt.Errorf("%w: empty id", ErrInvalidSpec)
	}
	if len(s.Accepts) == 0 {
		return s, fmt.Errorf("%w: %s accepts nothing", ErrInvalidSpec, s.ID)
	}
	for _, k := range s.Accepts {
		if !k.IsValid() {
			return s, fmt.Errorf("%w: %s accepts unknown kind %q", ErrInvalidSpec, s.ID, k)
		}
	}
	if s.Concurrency == 0 {
		s.Concurrency = 1
	}
	if s.Concurrency < 0 {
		return s, fmt.Errorf("%w: %s concurrency %d", ErrInvalidSpec, s.ID, s.Concurrency)
	}
	if s.Mode == "" {
		s.Mode = ModePassive
	}
	s.Accepts = slices.Clone(s.Accepts)
	slices.Sort(s.Accepts)
	s.Accepts = slices.Compact(s.Accepts)
	s.Outputs = slices.Clone(s.Outputs)
	return s, nil
}

// AcceptsKind reports whether k is one of the accepted kinds.
func (s WorkerSpec) AcceptsKind(k value.Kind) bool {
	return slices.Contains(s.Accepts, k)
}

// WorkerConfig contiene la configuración específica de un worker.
type WorkerConfig struct {
	// Concurrency sobreescribe WorkerSpec.Concurrency cuando es > 0.
	Concurrency int

	// Params es el mapa de parámetros del worker (paths, límites, etc.).
	Params map[string]any
}

// WorkerFactory crea una instancia de Worker a partir de su configuración.
type WorkerFactory func(cfg WorkerConfig, logger logx.Logger) (Worker, error)
