// internal/adapters/output/stream_test.go
package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"reconweave/internal/core/engine"
	"reconweave/internal/core/value"
	"reconweave/internal/platform/logx"
	"reconweave/internal/testutil"
)

func hostValue(t *testing.T, name string) value.Host {
	t.Helper()
	h, err := value.NewHost(name)
	testutil.RequireNoError(t, err, "host "+name)
	return h
}

func TestStreamWriter_Handle(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStreamWriter(&buf, logx.NewSilent())
	sw.now = func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC) }

	sw.Handle(engine.Event{Kind: engine.ValueDiscovered, Worker: "dns/lookup", Value: address, Parent: www, Depth: 2})
	sw.Handle(engine.Event{Kind: engine.JobFailed, Worker: "web/probe", Value: www, Depth: 1, Err: errors.New("boom")})
	testutil.RequireNoError(t, sw.Close(), "close")
	testutil.AssertEqual(t, sw.Count(), 2, "count")

	var records []StreamRecord
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var rec StreamRecord
		testutil.RequireNoError(t, json.Unmarshal(sc.Bytes(), &rec), "decode line")
		records = append(records, rec)
	}
	testutil.AssertLen(t, records, 2, "lines")

	testutil.AssertEqual(t, records[0].Event, "value_discovered", "event name")
	testutil.AssertEqual(t, records[0].Worker, "dns/lookup", "worker")
	testutil.AssertEqual(t, records[0].Parent, www.Key(), "parent key")
	testutil.AssertEqual(t, records[0].Depth, 2, "depth")
	testutil.AssertEqual(t, records[0].Value["address"], "93.184.215.14", "value fields")
	testutil.AssertTrue(t, records[0].Time.Equal(time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)), "time")

	testutil.AssertEqual(t, records[1].Event, "job_failed", "failure event")
	testutil.AssertEqual(t, records[1].Error, "boom", "error text")
	testutil.AssertEqual(t, records[1].Parent, "", "no parent")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestStreamWriter_WriteErrorIsSticky(t *testing.T) {
	sw := NewStreamWriter(failingWriter{}, logx.NewSilent())
	for i := 0; i < 3; i++ {
		sw.Handle(engine.Event{Kind: engine.JobStarted, Worker: "w", Value: www})
	}
	err := sw.Close()
	testutil.AssertError(t, err, "flush error surfaces")
	testutil.AssertContains(t, err.Error(), "disk full", "cause kept")
}

func TestCreateStreamFile(t *testing.T) {
	dir := t.TempDir()
	sw, path, err := CreateStreamFile(dir, "run/1", logx.NewSilent())
	testutil.RequireNoError(t, err, "create")
	testutil.AssertContains(t, path, "reconweave_run_1_events.jsonl", "file name")

	sw.Handle(engine.Event{Kind: engine.JobCompleted, Worker: "w", Value: seed})
	testutil.RequireNoError(t, sw.Close(), "close")

	data, err := os.ReadFile(path)
	testutil.RequireNoError(t, err, "read")
	testutil.AssertContains(t, string(data), `"event":"job_completed"`, "written")
}
