// internal/adapters/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"reconweave/internal/core/ports"
	"reconweave/internal/platform/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	started_at     TEXT NOT NULL,
	finished_at    TEXT NOT NULL,
	cancelled      INTEGER NOT NULL DEFAULT 0,
	seeds          TEXT NOT NULL,
	jobs_completed INTEGER NOT NULL DEFAULT 0,
	jobs_failed    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS nodes (
	run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	seq    INTEGER NOT NULL,
	key    TEXT NOT NULL,
	kind   TEXT NOT NULL,
	value  TEXT NOT NULL,
	fields TEXT NOT NULL,
	PRIMARY KEY (run_id, key)
);

CREATE TABLE IF NOT EXISTS edges (
	run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	seq    INTEGER NOT NULL,
	child  TEXT NOT NULL,
	parent TEXT NOT NULL,
	PRIMARY KEY (run_id, child, parent)
);

CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(run_id, kind);
`

// Store escribe los grafos de las corridas terminadas en una base SQLite.
// Es solo de escritura: el engine nunca lee de vuelta una corrida previa.
type Store struct {
	db   *sql.DB
	path string
}

// Open abre (o crea) la base en path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Un solo writer; sqlite serializa de todas formas
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

// SaveReport escribe la corrida completa en una transacción. Guardar de
// nuevo el mismo RunID reemplaza la corrida anterior.
func (s *Store) SaveReport(ctx context.Context, r *ports.Report) error {
	if r.RunID == "" {
		return errors.Wrap(errors.ErrInvalidInput, "report without run id")
	}

	seeds := make([]string, 0, len(r.Seeds))
	for _, v := range r.Seeds {
		seeds = append(seeds, v.String())
	}
	seedsJSON, err := json.Marshal(seeds)
	if err != nil {
		return fmt.Errorf("failed to encode seeds: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"edges", "nodes", "runs"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", r.RunID); err != nil {
			return fmt.Errorf("failed to clear run: %w", err)
		}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, started_at, finished_at, cancelled, seeds, jobs_completed, jobs_failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RunID,
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.FinishedAt.UTC().Format(time.RFC3339Nano),
		r.Cancelled,
		string(seedsJSON),
		r.JobsCompleted,
		r.JobsFailed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (run_id, seq, key, kind, value, fields) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	for i, v := range r.Graph.Nodes() {
		fields, err := json.Marshal(v.Fields())
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", v, err)
		}
		if _, err := nodeStmt.ExecContext(ctx, r.RunID, i, v.Key(), string(v.Kind()), v.String(), string(fields)); err != nil {
			return fmt.Errorf("failed to insert node %s: %w", v, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (run_id, seq, child, parent) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer edgeStmt.Close()

	for i, e := range r.Graph.Edges() {
		if _, err := edgeStmt.ExecContext(ctx, r.RunID, i, e.Child.Key(), e.Parent.Key()); err != nil {
			return fmt.Errorf("failed to insert edge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Exporter guarda cada reporte en la base de Path.
type Exporter struct {
	Path string
}

func NewExporter(path string) *Exporter { return &Exporter{Path: path} }

func (e *Exporter) Name() string { return "sqlite" }

func (e *Exporter) Export(ctx context.Context, r *ports.Report) error {
	s, err := Open(e.Path)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.SaveReport(ctx, r)
}
