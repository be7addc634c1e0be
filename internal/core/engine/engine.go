// internal/core/engine/engine.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"reconweave/internal/core/graph"
	"reconweave/internal/core/ports"
	"reconweave/internal/core/scope"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/logx"
)

var (
	// ErrNoSeeds se retorna cuando se construye un engine sin seeds.
	ErrNoSeeds = errors.New("no seeds")

	// ErrInvalidBinding se retorna para workers mal configurados.
	ErrInvalidBinding = errors.New("invalid worker binding")

	// ErrUnknownMessage indica un tipo de mensaje fuera del protocolo.
	// Es un error de programación y llega siempre como panic.
	ErrUnknownMessage = errors.New("unknown message")

	// ErrWorkerPanic envuelve un panic recuperado dentro de Process.
	ErrWorkerPanic = errors.New("worker panic")

	// ErrAlreadyRan se retorna al llamar Run por segunda vez.
	ErrAlreadyRan = errors.New("engine already ran")
)

// Binding es un worker resuelto: su spec, la instancia compartida y un
// override opcional de concurrencia.
type Binding struct {
	Spec        ports.WorkerSpec
	Worker      ports.Worker
	Concurrency int // > 0 sobreescribe Spec.Concurrency
}

// Options configura el Engine.
type Options struct {
	Workers []Binding
	Seeds   []value.Value
	Ignore  []value.Value

	// MaxDepth limita la expansión: un valor a profundidad d solo genera
	// jobs nuevos si d < MaxDepth. Negativo = sin límite.
	MaxDepth int

	Logger logx.Logger
}

// RunStats resume una corrida. Lo mantiene el coordinador.
type RunStats struct {
	Seeds         int
	Pools         int
	Units         int
	JobsStarted   int
	JobsCompleted int
	JobsFailed    int
	Values        int // nodos nuevos, sin contar seeds
	OutOfScope    int
	Edges         int
	Duration      time.Duration
}

// Engine es el coordinador: enruta valores a los pools, deduplica en el
// grafo, aplica scope y profundidad y detecta quiescencia. Todo cambio de
// estado ocurre en una sola goroutine que consume la cola de salida.
type Engine struct {
	logger   logx.Logger
	seeds    []value.Value
	maxDepth int

	graph  *graph.Graph
	scope  *scope.Scope
	status *valueStatus

	out    *queue[message]
	pools  []*pool
	routes map[value.Kind][]*pool

	handlers handlers
	live     int
	stats    RunStats
	ran      atomic.Bool
}

// New valida la configuración y arma la tabla de ruteo por tipo exacto.
func New(opts Options) (*Engine, error) {
	if len(opts.Seeds) == 0 {
		return nil, ErrNoSeeds
	}
	if opts.Logger == nil {
		opts.Logger = logx.New()
	}

	sc, err := scope.New(opts.Seeds, opts.Ignore)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		logger:   opts.Logger.With("component", "engine"),
		seeds:    append([]value.Value(nil), opts.Seeds...),
		maxDepth: opts.MaxDepth,
		graph:    graph.New(),
		scope:    sc,
		status:   newValueStatus(),
		out:      newQueue[message](),
		routes:   make(map[value.Kind][]*pool),
	}

	seen := make(map[string]bool, len(opts.Workers))
	for _, b := range opts.Workers {
		if b.Worker == nil {
			return nil, fmt.Errorf("%w: %s has no worker instance", ErrInvalidBinding, b.Spec.ID)
		}
		if b.Concurrency < 0 {
			return nil, fmt.Errorf("%w: %s concurrency %d", ErrInvalidBinding, b.Spec.ID, b.Concurrency)
		}
		spec, err := b.Spec.Normalize()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidBinding, err)
		}
		if seen[spec.ID] {
			return nil, fmt.Errorf("%w: duplicate worker %s", ErrInvalidBinding, spec.ID)
		}
		seen[spec.ID] = true

		b.Spec = spec
		p := newPool(b, e.out, opts.Logger)
		e.pools = append(e.pools, p)
		for _, k := range spec.Accepts {
			e.routes[k] = append(e.routes[k], p)
		}
		e.stats.Units += p.units
	}
	e.stats.Pools = len(e.pools)

	return e, nil
}

// On registra un handler. Debe llamarse antes de Run; los handlers de un
// mismo tipo corren en orden de registro.
func (e *Engine) On(kind EventKind, h Handler) {
	if kind < 0 || int(kind) >= len(e.handlers) {
		panic(fmt.Sprintf("engine: unknown event kind %d", kind))
	}
	e.handlers.add(kind, h)
}

// Run ejecuta la corrida hasta quiescencia. Los fallos de workers se
// reportan como eventos y nunca se retornan. Si ctx se cancela, los valores
// pendientes se registran pero ya no se despachan; Run drena igualmente y
// retorna ctx.Err().
func (e *Engine) Run(ctx context.Context) error {
	if e.ran.Swap(true) {
		return ErrAlreadyRan
	}
	start := time.Now()

	e.logger.Info("engine starting",
		"seeds", len(e.seeds),
		"pools", len(e.pools),
		"units", e.stats.Units,
		"max_depth", e.maxDepth,
	)

	for _, seed := range e.seeds {
		if !e.graph.AddSeed(seed) {
			e.logger.Debug("duplicate seed skipped", "value", seed.String())
			continue
		}
		e.stats.Seeds++
		e.dispatch(ctx, job{value: seed})
	}

	for _, p := range e.pools {
		p.Start(ctx)
	}

	e.coordinate(ctx)

	for _, p := range e.pools {
		p.Wait()
	}

	e.stats.Edges = e.graph.EdgeCount()
	e.stats.Duration = time.Since(start)
	e.logger.Info("engine finished",
		"values", e.graph.Len(),
		"edges", e.stats.Edges,
		"jobs", e.stats.JobsCompleted,
		"failed", e.stats.JobsFailed,
		"out_of_scope", e.stats.OutOfScope,
		"duration_ms", e.stats.Duration.Milliseconds(),
	)

	return ctx.Err()
}

// coordinate consume la cola de salida hasta que no queda trabajo, difunde
// el shutdown y drena hasta que todas las unidades se detuvieron.
func (e *Engine) coordinate(ctx context.Context) {
	for !(e.status.IsEmpty() && e.out.Len() == 0) {
		e.handle(ctx, e.out.Pop())
	}

	e.logger.Debug("quiescent, shutting down pools", "live_units", e.live)
	for _, p := range e.pools {
		p.Shutdown()
	}
	for e.live > 0 {
		e.handle(ctx, e.out.Pop())
	}
}

func (e *Engine) handle(ctx context.Context, m message) {
	switch m := m.(type) {
	case poolStarted:
		e.live += m.units

	case poolUnitStopped:
		e.live--

	case jobStarted:
		e.status.JobStarted(m.worker, m.job.value)
		e.stats.JobsStarted++
		e.handlers.fire(Event{Kind: JobStarted, Worker: m.worker, Value: m.job.value, Depth: m.job.depth})

	case jobFailed:
		e.status.JobFailed(m.worker, m.job.value)
		e.stats.JobsFailed++
		if ctx.Err() == nil {
			e.logger.Warn("job failed", "worker", m.worker, "value", m.job.value.String(), "error", m.err.Error())
		}
		e.handlers.fire(Event{Kind: JobFailed, Worker: m.worker, Value: m.job.value, Depth: m.job.depth, Err: m.err})

	case jobCompleted:
		e.status.JobCompleted(m.worker, m.job.value)
		e.stats.JobsCompleted++
		e.handlers.fire(Event{Kind: JobCompleted, Worker: m.worker, Value: m.job.value, Depth: m.job.depth})

	case valueMessage:
		e.discovered(ctx, m.job)

	default:
		panic(fmt.Errorf("%w: %T", ErrUnknownMessage, m))
	}
}

// discovered registra un valor emitido. Un nodo nuevo bajo el límite de
// profundidad se vuelve a despachar con la misma profundidad; la arista se
// registra aunque el nodo ya existiera.
func (e *Engine) discovered(ctx context.Context, j job) {
	if !e.scope.Includes(j.value) {
		e.stats.OutOfScope++
		return
	}

	if e.graph.AddNode(j.value) {
		e.stats.Values++
		e.handlers.fire(Event{Kind: ValueDiscovered, Worker: j.producer, Value: j.value, Parent: j.parent, Depth: j.depth})
		if e.maxDepth < 0 || j.depth < e.maxDepth {
			e.dispatch(ctx, j)
		}
	}

	if e.graph.AddEdge(j.value, j.parent) {
		e.handlers.fire(Event{Kind: ConnectionDiscovered, Worker: j.producer, Value: j.value, Parent: j.parent, Depth: j.depth})
	}
}

// dispatch enqueues j on every pool registered for its exact kind.
func (e *Engine) dispatch(ctx context.Context, j job) {
	if ctx.Err() != nil {
		return
	}
	for _, p := range e.routes[j.value.Kind()] {
		e.status.ValueEnqueued(p.ID(), j.value)
		p.Enqueue(j)
	}
}

// Graph devuelve el grafo de la corrida. Seguro de leer tras Run.
func (e *Engine) Graph() *graph.Graph { return e.graph }

// Scope devuelve el scope de la corrida.
func (e *Engine) Scope() *scope.Scope { return e.scope }

// Stats devuelve las estadísticas. Seguro de leer tras Run.
func (e *Engine) Stats() RunStats { return e.stats }

// Workers returns the specs of the configured pools in configuration order.
func (e *Engine) Workers() []ports.WorkerSpec {
	out := make([]ports.WorkerSpec, 0, len(e.pools))
	for _, p := range e.pools {
		out = append(out, p.spec)
	}
	return out
}

// Routes returns the ids of the pools that receive values of kind k.
func (e *Engine) Routes(k value.Kind) []string {
	ids := make([]string, 0, len(e.routes[k]))
	for _, p := range e.routes[k] {
		ids = append(ids, p.ID())
	}
	return ids
}
