// internal/core/engine/status.go
package engine

import "reconweave/internal/core/value"

type jobState uint8

const (
	stateEnqueued jobState = iota + 1
	stateWorking
)

func (s jobState) String() string {
	switch s {
	case stateEnqueued:
		return "enqueued"
	case stateWorking:
		return "working"
	default:
		return "unknown"
	}
}

// valueStatus tracks, per value, which workers still hold a job for it.
// Only the coordinator touches it.
type valueStatus struct {
	// entries[valueKey][workerID]
	entries map[string]map[string]jobState
}

func newValueStatus() *valueStatus {
	return &valueStatus{entries: make(map[string]map[string]jobState)}
}

func (s *valueStatus) ValueEnqueued(worker string, v value.Value) {
	s.set(worker, v, stateEnqueued)
}

func (s *valueStatus) JobStarted(worker string, v value.Value) {
	s.set(worker, v, stateWorking)
}

func (s *valueStatus) JobCompleted(worker string, v value.Value) {
	s.remove(worker, v)
}

func (s *valueStatus) JobFailed(worker string, v value.Value) {
	s.remove(worker, v)
}

// IsEmpty reports whether no job is enqueued or in flight.
func (s *valueStatus) IsEmpty() bool { return len(s.entries) == 0 }

// Len returns the number of values with outstanding jobs.
func (s *valueStatus) Len() int { return len(s.entries) }

// State returns the state of worker's job for v, if any.
func (s *valueStatus) State(worker string, v value.Value) (jobState, bool) {
	st, ok := s.entries[v.Key()][worker]
	return st, ok
}

func (s *valueStatus) set(worker string, v value.Value, st jobState) {
	k := v.Key()
	workers, ok := s.entries[k]
	if !ok {
		workers = make(map[string]jobState, 1)
		s.entries[k] = workers
	}
	workers[worker] = st
}

func (s *valueStatus) remove(worker string, v value.Value) {
	k := v.Key()
	workers, ok := s.entries[k]
	if !ok {
		return
	}
	delete(workers, worker)
	if len(workers) == 0 {
		delete(s.entries, k)
	}
}
