// internal/adapters/output/stream.go
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"reconweave/internal/core/engine"
	"reconweave/internal/platform/logx"
)

// StreamRecord es una línea del archivo de eventos (JSON Lines).
type StreamRecord struct {
	Time   time.Time      `json:"time"`
	Event  string         `json:"event"`
	Worker string         `json:"worker,omitempty"`
	Value  map[string]any `json:"value,omitempty"`
	Parent string         `json:"parent,omitempty"`
	Depth  int            `json:"depth"`
	Error  string         `json:"error,omitempty"`
}

// StreamWriter escribe los eventos del engine a medida que ocurren, una
// línea JSON por evento. Permite seguir una corrida larga sin esperar
// al reporte final.
type StreamWriter struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	closer io.Closer
	err    error
	count  int
	now    func() time.Time
	logger logx.Logger
}

// NewStreamWriter crea un writer sobre w.
func NewStreamWriter(w io.Writer, logger logx.Logger) *StreamWriter {
	sw := &StreamWriter{
		buf:    bufio.NewWriter(w),
		now:    time.Now,
		logger: logger.With("component", "stream-writer"),
	}
	if c, ok := w.(io.Closer); ok {
		sw.closer = c
	}
	return sw
}

// CreateStreamFile abre <dir>/reconweave_<runID>_events.jsonl.
func CreateStreamFile(dir, runID string, logger logx.Logger) (*StreamWriter, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("reconweave_%s_events.jsonl", sanitizeName(runID)))
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create stream file: %w", err)
	}
	return NewStreamWriter(f, logger), path, nil
}

// Attach registra el writer para todos los tipos de evento.
func (s *StreamWriter) Attach(e *engine.Engine) {
	for _, k := range []engine.EventKind{
		engine.ValueDiscovered,
		engine.ConnectionDiscovered,
		engine.JobStarted,
		engine.JobCompleted,
		engine.JobFailed,
	} {
		e.On(k, s.Handle)
	}
}

// Handle escribe un evento. Tras el primer error de escritura los
// siguientes eventos se descartan.
func (s *StreamWriter) Handle(ev engine.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}

	rec := StreamRecord{
		Time:   s.now().UTC(),
		Event:  ev.Kind.String(),
		Worker: ev.Worker,
		Depth:  ev.Depth,
	}
	if ev.Value != nil {
		rec.Value = ev.Value.Fields()
	}
	if ev.Parent != nil {
		rec.Parent = ev.Parent.Key()
	}
	if ev.Err != nil {
		rec.Error = ev.Err.Error()
	}

	line, err := json.Marshal(rec)
	if err == nil {
		line = append(line, '\n')
		_, err = s.buf.Write(line)
	}
	if err != nil {
		s.err = fmt.Errorf("failed to write event: %w", err)
		s.logger.Warn("event stream disabled", "error", err.Error())
		return
	}
	s.count++
}

// Count devuelve cuántos eventos se escribieron.
func (s *StreamWriter) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Close vacía el buffer y cierra el destino si corresponde. Devuelve el
// primer error de escritura, si hubo.
func (s *StreamWriter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.buf.Flush(); err != nil && s.err == nil {
		s.err = fmt.Errorf("failed to flush events: %w", err)
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil && s.err == nil {
			s.err = fmt.Errorf("failed to close stream: %w", err)
		}
		s.closer = nil
	}
	s.logger.Debug("event stream closed", "events", s.count)
	return s.err
}
