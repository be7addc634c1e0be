// internal/platform/resilience/breaker.go
package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen se retorna mientras el breaker rechaza llamadas.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State representa el estado del circuit breaker.
type State int

const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Failing, rejecting requests
	StateHalfOpen              // Testing if service recovered
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker corta las llamadas a un servicio remoto tras una racha de
// fallos consecutivos. Un *Breaker nil deja pasar todo.
type Breaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	probes      int
	openedAt    time.Time
	threshold   int
	cooldown    time.Duration
	halfOpenMax int
	now         func() time.Time
}

// NewBreaker crea un breaker que abre tras threshold fallos seguidos y
// prueba de nuevo tras cooldown. threshold <= 0 devuelve nil (desactivado).
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		return nil
	}
	if cooldown <= 0 {
		cooldown = 60 * time.Second
	}
	return &Breaker{
		threshold:   threshold,
		cooldown:    cooldown,
		halfOpenMax: 1,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (b *Breaker) WithClock(now func() time.Time) *Breaker {
	if b != nil {
		b.now = now
	}
	return b
}

// Allow reporta si una llamada puede pasar. En half-open deja pasar una
// sola llamada de prueba a la vez.
func (b *Breaker) Allow() bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = StateHalfOpen
		b.probes = 0
		fallthrough
	case StateHalfOpen:
		if b.probes >= b.halfOpenMax {
			return false
		}
		b.probes++
		return true
	default:
		return true
	}
}

// Success cierra el breaker y reinicia la racha.
func (b *Breaker) Success() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.probes = 0
}

// Failure cuenta un fallo; en half-open reabre de inmediato.
func (b *Breaker) Failure() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.threshold {
		b.state = StateOpen
		b.openedAt = b.now()
		b.probes = 0
	}
}

// State retorna el estado actual.
func (b *Breaker) State() State {
	if b == nil {
		return StateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
