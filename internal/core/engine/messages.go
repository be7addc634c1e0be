// internal/core/engine/messages.go
package engine

import (
	"reconweave/internal/core/value"
)

// message es el sobre que circula por las colas. El conjunto es cerrado:
// cualquier otro tipo que llegue al coordinador es un error de programación.
type message interface {
	message()
}

// job describes one unit of work or one discovered value.
type job struct {
	value    value.Value
	producer string      // worker que descubrió el valor; "" para seeds
	parent   value.Value // nil para seeds
	depth    int
}

// jobMessage va del engine a la cola de entrada de un pool.
type jobMessage struct{ job }

// valueMessage va de una unidad al coordinador con un valor emitido.
type valueMessage struct{ job }

type jobStarted struct {
	worker string
	job    job
}

type jobCompleted struct {
	worker string
	job    job
}

type jobFailed struct {
	worker string
	job    job
	err    error
}

// poolStarted carries the number of units that will later each send one
// poolUnitStopped.
type poolStarted struct {
	worker string
	units  int
}

type poolUnitStopped struct {
	worker string
	unit   int
}

// shutdown is pushed once per unit; each unit exits on its own copy.
type shutdown struct{}

func (jobMessage) message()      {}
func (valueMessage) message()    {}
func (jobStarted) message()      {}
func (jobCompleted) message()    {}
func (jobFailed) message()       {}
func (poolStarted) message()     {}
func (poolUnitStopped) message() {}
func (shutdown) message()        {}
