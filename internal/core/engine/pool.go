// internal/core/engine/pool.go
package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/logx"
)

// pool ejecuta N unidades concurrentes de un único Worker contra su cola de
// entrada privada y publica todos sus mensajes en la cola compartida del
// coordinador.
type pool struct {
	spec   ports.WorkerSpec
	worker ports.Worker
	units  int
	logger logx.Logger

	in  *queue[message]
	out *queue[message]

	wg sync.WaitGroup
}

func newPool(b Binding, out *queue[message], logger logx.Logger) *pool {
	units := b.Spec.Concurrency
	if b.Concurrency > 0 {
		units = b.Concurrency
	}
	return &pool{
		spec:   b.Spec,
		worker: b.Worker,
		units:  units,
		logger: logger.With("component", "worker-pool", "worker", b.Spec.ID),
		in:     newQueue[message](),
		out:    out,
	}
}

func (p *pool) ID() string { return p.spec.ID }

// Enqueue pushes a job onto the pool's input queue.
func (p *pool) Enqueue(j job) {
	p.in.Push(jobMessage{j})
}

// Shutdown pushes one sentinel per unit.
func (p *pool) Shutdown() {
	sentinels := make([]message, p.units)
	for i := range sentinels {
		sentinels[i] = shutdown{}
	}
	p.in.Push(sentinels...)
}

// Start publica poolStarted antes de lanzar las unidades, de modo que el
// coordinador conoce cada unidad antes de recibir su poolUnitStopped.
func (p *pool) Start(ctx context.Context) {
	p.out.Push(poolStarted{worker: p.spec.ID, units: p.units})
	p.logger.Debug("starting worker pool", "units", p.units)

	for i := 0; i < p.units; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
}

// Wait blocks until every unit has exited.
func (p *pool) Wait() {
	p.wg.Wait()
}

// run es el loop de una unidad de ejecución.
func (p *pool) run(ctx context.Context, unit int) {
	defer p.wg.Done()

	for {
		switch m := p.in.Pop().(type) {
		case shutdown:
			p.logger.Debug("unit stopped", "unit", unit)
			p.out.Push(poolUnitStopped{worker: p.spec.ID, unit: unit})
			return
		case jobMessage:
			p.execute(ctx, unit, m.job)
		default:
			panic(fmt.Errorf("%w: %T on pool input", ErrUnknownMessage, m))
		}
	}
}

// execute corre un job y siempre termina con jobCompleted, precedido de
// jobFailed si el worker falló. Con el contexto cancelado el job se descarta
// sin llamar al worker.
func (p *pool) execute(ctx context.Context, unit int, j job) {
	if err := ctx.Err(); err != nil {
		p.out.Push(jobFailed{worker: p.spec.ID, job: j, err: err})
		p.out.Push(jobCompleted{worker: p.spec.ID, job: j})
		return
	}

	p.out.Push(jobStarted{worker: p.spec.ID, job: j})
	start := time.Now()

	err := p.process(ctx, j)

	p.logger.Debug("job finished",
		"unit", unit,
		"value", j.value.String(),
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)
	if err != nil {
		p.out.Push(jobFailed{worker: p.spec.ID, job: j, err: err})
	}
	p.out.Push(jobCompleted{worker: p.spec.ID, job: j})
}

// process invokes the worker and turns a panic into an error.
func (p *pool) process(ctx context.Context, j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrWorkerPanic, r)
			p.logger.Err(err, "value", j.value.String())
			p.logger.Debug("worker panic stack", "stack", string(debug.Stack()))
		}
	}()

	emit := func(v value.Value) {
		if value.IsZero(v) {
			if v != nil {
				p.logger.Warn("zero value dropped", "kind", string(v.Kind()), "value", j.value.String())
			}
			return
		}
		p.out.Push(valueMessage{job{
			value:    v,
			producer: p.spec.ID,
			parent:   j.value,
			depth:    j.depth + 1,
		}})
	}
	return p.worker.Process(ctx, j.value, emit)
}
