// internal/adapters/store/sqlite_test.go
package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"reconweave/internal/core/graph"
	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/errors"
	"reconweave/internal/testutil"
)

var (
	seed    = value.Must(value.NewDomain("example.com"))
	www     = value.Must(value.NewHost("www.example.com"))
	mx      = value.Must(value.NewMailserver("mx.example.com"))
	address = value.Must(value.NewIP("93.184.215.14")).WithHost("www.example.com")
)

func report(id string, start time.Time) *ports.Report {
	g := graph.New()
	g.AddNode(seed)
	g.AddEdge(www, seed)
	g.AddEdge(mx, seed)
	g.AddEdge(address, www)
	g.AddEdge(address, mx)
	return &ports.Report{
		RunID:         id,
		StartedAt:     start,
		FinishedAt:    start.Add(2 * time.Second),
		Seeds:         []value.Value{seed},
		Graph:         g,
		JobsCompleted: 4,
		JobsFailed:    1,
	}
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "reconweave.db"))
	testutil.RequireNoError(t, err, "open")
	t.Cleanup(func() { s.Close() })
	return s
}

func count(t *testing.T, s *Store, table, runID string) int {
	t.Helper()
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE run_id = ?", runID).Scan(&n)
	testutil.RequireNoError(t, err, "count "+table)
	return n
}

func TestStore_SaveReport(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	r := report("run-1", time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))

	testutil.RequireNoError(t, s.SaveReport(ctx, r), "save")
	testutil.AssertEqual(t, count(t, s, "runs", "run-1"), 1, "run row")
	testutil.AssertEqual(t, count(t, s, "nodes", "run-1"), 4, "node rows")
	testutil.AssertEqual(t, count(t, s, "edges", "run-1"), 4, "edge rows")

	var (
		started, seeds string
		failed         int
		cancelled      bool
	)
	err := s.db.QueryRow(`SELECT started_at, seeds, jobs_failed, cancelled FROM runs WHERE run_id = ?`, "run-1").
		Scan(&started, &seeds, &failed, &cancelled)
	testutil.RequireNoError(t, err, "run row")
	testutil.AssertEqual(t, started, "2026-10-14T09:00:00Z", "start time")
	testutil.AssertEqual(t, seeds, `["example.com"]`, "seeds json")
	testutil.AssertEqual(t, failed, 1, "jobs failed")
	testutil.AssertFalse(t, cancelled, "not cancelled")
}

func TestStore_NodeRows(t *testing.T) {
	s := openTemp(t)
	r := report("run-1", time.Now())
	testutil.RequireNoError(t, s.SaveReport(context.Background(), r), "save")

	rows, err := s.db.Query(`SELECT key, kind, value, fields FROM nodes WHERE run_id = ? ORDER BY seq`, "run-1")
	testutil.RequireNoError(t, err, "query")
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key, kind, text, raw string
		testutil.RequireNoError(t, rows.Scan(&key, &kind, &text, &raw), "scan")
		keys = append(keys, key)

		var fields map[string]any
		testutil.RequireNoError(t, json.Unmarshal([]byte(raw), &fields), "fields json")
		v, err := value.FromFields(fields)
		testutil.RequireNoError(t, err, "fields rebuild a value")
		testutil.AssertEqual(t, v.Key(), key, "key matches fields")
		testutil.AssertEqual(t, string(v.Kind()), kind, "kind column")
		testutil.AssertEqual(t, v.String(), text, "value column")
	}
	testutil.RequireNoError(t, rows.Err(), "rows")
	testutil.AssertLen(t, keys, 4, "nodes")
	testutil.AssertEqual(t, keys[0], seed.Key(), "discovery order")
}

func TestStore_SaveReplacesRun(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	start := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	testutil.RequireNoError(t, s.SaveReport(ctx, report("run-1", start)), "first save")

	smaller := report("run-1", start)
	smaller.Graph = graph.New()
	smaller.Graph.AddNode(seed)
	testutil.RequireNoError(t, s.SaveReport(ctx, smaller), "second save")

	testutil.AssertEqual(t, count(t, s, "runs", "run-1"), 1, "single run row")
	testutil.AssertEqual(t, count(t, s, "nodes", "run-1"), 1, "old nodes replaced")
	testutil.AssertEqual(t, count(t, s, "edges", "run-1"), 0, "old edges replaced")
}

func TestStore_RunsAreIndependent(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	testutil.RequireNoError(t, s.SaveReport(ctx, report("run-a", time.Now())), "save a")
	testutil.RequireNoError(t, s.SaveReport(ctx, report("run-b", time.Now())), "save b")

	testutil.AssertEqual(t, count(t, s, "nodes", "run-a"), 4, "run a nodes")
	testutil.AssertEqual(t, count(t, s, "nodes", "run-b"), 4, "run b nodes")
}

func TestStore_SaveRequiresRunID(t *testing.T) {
	s := openTemp(t)
	err := s.SaveReport(context.Background(), report("", time.Now()))
	testutil.AssertTrue(t, errors.Is(err, errors.ErrInvalidInput), "invalid input")
}

func TestExporter_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	exp := NewExporter(path)
	testutil.AssertEqual(t, exp.Name(), "sqlite", "name")

	testutil.RequireNoError(t, exp.Export(context.Background(), report("run-x", time.Now())), "export")

	s, err := Open(path)
	testutil.RequireNoError(t, err, "reopen")
	defer s.Close()
	testutil.AssertEqual(t, s.Path(), path, "path")
	testutil.AssertEqual(t, count(t, s, "edges", "run-x"), 4, "edges persisted")
}
