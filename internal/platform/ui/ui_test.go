// internal/platform/ui/ui_test.go
package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pterm/pterm"

	"reconweave/internal/core/engine"
	"reconweave/internal/core/ports"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/logx"
	"reconweave/internal/testutil"
)

var (
	seed = value.Must(value.NewDomain("example.com"))
	www  = value.Must(value.NewHost("www.example.com"))
	ip   = value.Must(value.NewIP("93.184.215.14"))
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	m.Run()
}

func events() []engine.Event {
	return []engine.Event{
		{Kind: engine.JobStarted, Worker: "dns/lookup", Value: www, Depth: 1},
		{Kind: engine.ValueDiscovered, Worker: "dns/lookup", Value: ip, Parent: www, Depth: 2},
		{Kind: engine.ConnectionDiscovered, Worker: "dns/lookup", Value: ip, Parent: www, Depth: 2},
		{Kind: engine.JobCompleted, Worker: "dns/lookup", Value: www, Depth: 1},
		{Kind: engine.JobStarted, Worker: "web/probe", Value: www, Depth: 1},
		{Kind: engine.JobFailed, Worker: "web/probe", Value: www, Depth: 1, Err: errors.New("connection refused")},
		{Kind: engine.ConnectionDiscovered, Worker: "net/apex", Value: seed, Parent: www, Depth: 2},
		{Kind: engine.JobCompleted, Worker: "web/probe", Value: www, Depth: 1},
	}
}

func TestTracker_Snapshot(t *testing.T) {
	tr := NewTracker()
	for _, e := range events() {
		tr.Observe(e)
	}
	s := tr.Snapshot()

	testutil.AssertEqual(t, s.Values, 1, "values")
	testutil.AssertEqual(t, s.Edges, 2, "edges")
	testutil.AssertEqual(t, s.Running, 0, "running")
	testutil.AssertEqual(t, s.Done, 1, "done")
	testutil.AssertEqual(t, s.Failed, 1, "failed")
	testutil.AssertEqual(t, s.ByKind["ip"], 1, "by kind")
	testutil.AssertLen(t, s.Workers, 3, "workers")
	testutil.AssertEqual(t, s.Workers[0].ID, "dns/lookup", "sorted by id")
	testutil.AssertEqual(t, s.Workers[0].Emitted, 1, "emitted")
	testutil.AssertEqual(t, s.Workers[0].Status(), StatusSuccess, "lookup status")
	testutil.AssertEqual(t, s.Workers[2].Status(), StatusError, "probe status")
	testutil.AssertEqual(t, s.Workers[2].Completed, 0, "failed job is not a completion")
}

func TestTracker_MatchesEngineGraph(t *testing.T) {
	host := value.Must(value.NewHost("www.example.com"))
	worker := ports.WorkerFunc(func(_ context.Context, v value.Value, emit ports.Emit) error {
		if value.Equal(v, seed) {
			emit(host)
			emit(ip)
		}
		return nil
	})
	e, err := engine.New(engine.Options{
		Workers:  []engine.Binding{{Spec: ports.WorkerSpec{ID: "enum", Accepts: []value.Kind{value.KindDomain}}, Worker: worker}},
		Seeds:    []value.Value{seed},
		MaxDepth: -1,
		Logger:   logx.Discard(),
	})
	testutil.RequireNoError(t, err, "engine")

	tr := NewTracker()
	for _, k := range []engine.EventKind{engine.ValueDiscovered, engine.ConnectionDiscovered, engine.JobStarted, engine.JobCompleted, engine.JobFailed} {
		e.On(k, tr.Observe)
	}
	testutil.RequireNoError(t, e.Run(context.Background()), "run")

	s := tr.Snapshot()
	testutil.AssertEqual(t, s.Edges, e.Graph().EdgeCount(), "edges agree with graph")
	testutil.AssertEqual(t, s.Values, 2, "values")
	testutil.AssertEqual(t, s.Done, 1, "one job")
}

func TestTracker_CancelledJob(t *testing.T) {
	tr := NewTracker()
	tr.Observe(engine.Event{Kind: engine.JobStarted, Worker: "dns/lookup", Value: www})
	// job cancelado antes de arrancar: failed + completed sin started
	tr.Observe(engine.Event{Kind: engine.JobFailed, Worker: "dns/lookup", Value: seed, Err: errors.New("context canceled")})
	tr.Observe(engine.Event{Kind: engine.JobCompleted, Worker: "dns/lookup", Value: seed})

	s := tr.Snapshot()
	testutil.AssertEqual(t, s.Running, 1, "www still running")
	testutil.AssertEqual(t, s.Failed, 1, "cancelled counts as failed")
	testutil.AssertEqual(t, s.Done, 0, "no completions")
}

func TestWorkerProgress_Status(t *testing.T) {
	tests := []struct {
		w    WorkerProgress
		want Status
	}{
		{WorkerProgress{}, StatusPending},
		{WorkerProgress{Running: 1, Failed: 3}, StatusRunning},
		{WorkerProgress{Failed: 1}, StatusError},
		{WorkerProgress{Failed: 1, Completed: 2}, StatusWarning},
		{WorkerProgress{Completed: 2}, StatusSuccess},
	}
	for _, tt := range tests {
		testutil.AssertEqual(t, tt.w.Status(), tt.want, tt.want.String())
	}
}

func TestRawPresenter_Text(t *testing.T) {
	var buf bytes.Buffer
	p := NewRawPresenter(&buf, LogFormatText)
	p.now = func() time.Time { return time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC) }

	p.Start(RunInfo{RunID: "r1", Seeds: []string{"example.com"}, MaxDepth: -1})
	for _, e := range events() {
		p.Observe(e)
	}
	p.Finish(Summary{Values: 2, JobsFailed: 1})
	testutil.AssertNoError(t, p.Close(), "close")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	testutil.AssertLen(t, lines, 10, "start, eight events, finish")
	testutil.AssertContains(t, lines[0], "2026-10-14T09:00:00Z INFO  run started", "start line")
	testutil.AssertContains(t, lines[2], "kind=ip parent=www.example.com value=93.184.215.14 worker=dns/lookup", "sorted fields")
	testutil.AssertContains(t, lines[6], `WARN  job_failed depth=1 error="connection refused"`, "quoted error")
	testutil.AssertContains(t, lines[9], "jobs_failed=1", "finish line")
}

func TestRawPresenter_JSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewRawPresenter(&buf, LogFormatJSON)
	p.Observe(events()[1])

	var entry map[string]any
	testutil.RequireNoError(t, json.Unmarshal(buf.Bytes(), &entry), "decode")
	testutil.AssertEqual(t, entry["message"], "value_discovered", "message")
	data := entry["data"].(map[string]any)
	testutil.AssertEqual(t, data["value"], "93.184.215.14", "value")
}

func TestCompactPresenter(t *testing.T) {
	var buf bytes.Buffer
	p := NewCompactPresenter(&buf, false)

	p.Start(RunInfo{RunID: "r1", Seeds: []string{"example.com"}, Workers: []string{"dns/lookup"}, MaxDepth: 2, Timeout: time.Minute})
	for _, e := range events() {
		p.Observe(e)
	}
	p.Finish(Summary{
		Duration:      1500 * time.Millisecond,
		Values:        2,
		Edges:         2,
		ByKind:        map[string]int{"domain": 1, "ip": 1},
		JobsCompleted: 1,
		JobsFailed:    1,
		Outputs:       []string{"json: out/run.json"},
	})
	testutil.AssertNoError(t, p.Close(), "close")

	out := buf.String()
	testutil.AssertContains(t, out, "reconweave", "header")
	testutil.AssertContains(t, out, "Seeds: example.com", "seeds")
	testutil.AssertContains(t, out, "Max depth: 2", "depth")
	testutil.AssertContains(t, out, "web/probe www.example.com: connection refused", "failure line")
	testutil.AssertContains(t, out, "Run complete", "summary box")
	testutil.AssertContains(t, out, "Duration: 1.5s", "duration")
	testutil.AssertContains(t, out, "dns/lookup", "worker table")
	testutil.AssertContains(t, out, "  - ip: 1", "by kind")
	testutil.AssertContains(t, out, "json: out/run.json", "outputs")
	testutil.AssertEqual(t, p.Tracker().Snapshot().Failed, 1, "tracker fed")
}

func TestCompactPresenter_Cancelled(t *testing.T) {
	var buf bytes.Buffer
	p := NewCompactPresenter(&buf, false)
	p.Start(RunInfo{RunID: "r2", MaxDepth: -1})
	p.Finish(Summary{Cancelled: true})

	testutil.AssertContains(t, buf.String(), "Max depth: unlimited", "unlimited depth")
	testutil.AssertContains(t, buf.String(), "Run cancelled", "cancel title")
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	_, ok := New(ModeQuiet, &buf).(*QuietPresenter)
	testutil.AssertTrue(t, ok, "quiet")
	_, ok = New(ModeRaw, &buf).(*RawPresenter)
	testutil.AssertTrue(t, ok, "raw")
	_, ok = New(Mode("bogus"), &buf).(*CompactPresenter)
	testutil.AssertTrue(t, ok, "fallback to compact")
}

func TestFormatDuration(t *testing.T) {
	testutil.AssertEqual(t, formatDuration(250*time.Millisecond), "250ms", "ms")
	testutil.AssertEqual(t, formatDuration(1500*time.Millisecond), "1.5s", "seconds")
	testutil.AssertEqual(t, formatDuration(125*time.Second), "2m5s", "minutes")
}

func TestStatus_Look(t *testing.T) {
	testutil.AssertEqual(t, StatusError.String(), "error", "name")
	testutil.AssertEqual(t, StatusSuccess.Symbol(), "✓", "symbol")
	testutil.AssertEqual(t, Status(42).String(), "unknown", "out of range")
	testutil.AssertEqual(t, Status(-1).Symbol(), "?", "negative")
	testutil.AssertNotNil(t, StatusRunning.Style(), "style")
}
