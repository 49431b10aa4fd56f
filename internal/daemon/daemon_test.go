package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ecufiler/internal/history"
	"ecufiler/internal/logging"
	"ecufiler/internal/notifications"
	"ecufiler/internal/services"
	"ecufiler/internal/testsupport"
	"ecufiler/internal/watcher"
)

const (
	completeName   = "Audi_A4_20190101_EDC17_CP14_150hp_Bench.bin"
	completeFolder = "Audi_A4_20190101_EDC17_CP14_Bench"
	flexName       = "fomoco-bosch-EDC17C70-20250512093045-obd.bin"
)

func TestPipelineFilesCompleteRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	p := NewPipeline(cfg, logging.NewNop(), store, "session-a")

	src := testsupport.WriteDump(t, cfg.Paths.MonitorDir, completeName, make([]byte, 1024))
	out := p.Handle(context.Background(), src)
	if out.Status != history.StatusFiled || out.Err != nil {
		t.Fatalf("outcome = %s, %v", out.Status, out.Err)
	}
	want := filepath.Join(cfg.Paths.DestinationDir, "Audi", completeFolder, completeName)
	if out.Filing.DestPath != want {
		t.Fatalf("dest = %q, want %q", out.Filing.DestPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("filed dump missing: %v", err)
	}

	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Status != history.StatusFiled || e.DestPath != want || e.FolderName != completeFolder || e.SessionID != "session-a" {
		t.Fatalf("unexpected history entry %#v", e)
	}
	if e.Record.ECU != "EDC17 CP14" {
		t.Fatalf("recorded ecu = %q", e.Record.ECU)
	}
}

func TestPipelineLeavesIncompleteRecordPending(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	p := NewPipeline(cfg, logging.NewNop(), store, "")

	src := testsupport.WriteDump(t, cfg.Paths.MonitorDir, flexName, []byte("no identifiers"))
	out := p.Handle(context.Background(), src)
	if out.Status != history.StatusPending {
		t.Fatalf("status = %s, want pending", out.Status)
	}
	if !errors.Is(out.Err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", out.Err)
	}
	if out.Record.Make != "Ford" {
		t.Fatalf("make = %q", out.Record.Make)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("dump should stay in monitor dir: %v", err)
	}

	entries, err := store.Search(context.Background(), history.Filter{Status: history.StatusPending})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Error == "" {
		t.Fatalf("expected pending entry with reason, got %#v", entries)
	}
}

func TestPipelineAutoFileDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAutoFile(false))
	p := NewPipeline(cfg, logging.NewNop(), nil, "")

	src := testsupport.WriteDump(t, cfg.Paths.MonitorDir, completeName, []byte("x"))
	out := p.Handle(context.Background(), src)
	if out.Status != history.StatusPending || out.Err != nil {
		t.Fatalf("outcome = %s, %v", out.Status, out.Err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("dump should not be moved: %v", err)
	}
}

func TestPipelineFileWithOverrides(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p := NewPipeline(cfg, logging.NewNop(), nil, "")
	ctx := context.Background()

	src := testsupport.WriteDump(t, cfg.Paths.MonitorDir, flexName, []byte("payload"))
	id := p.Identifier().IdentifyFile(ctx, src)
	rec := id.Record
	rec.Model = "Focus"
	rec.Registration = "FO12 CUS"

	out := p.File(ctx, id, rec)
	if out.Status != history.StatusFiled {
		t.Fatalf("status = %s (%v)", out.Status, out.Err)
	}
	if !strings.HasPrefix(out.Filing.FolderName, "Ford_Focus_20250512_Bosch_EDC17C70_OBD") ||
		!strings.HasSuffix(out.Filing.FolderName, "_FO12_CUS") {
		t.Fatalf("folder = %q", out.Filing.FolderName)
	}
}

func TestPipelineReadFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	p := NewPipeline(cfg, logging.NewNop(), store, "")

	out := p.Handle(context.Background(), filepath.Join(cfg.Paths.MonitorDir, completeName))
	if out.Status != history.StatusFailed {
		t.Fatalf("status = %s, want failed", out.Status)
	}
	if !services.IsRetryable(out.Err) {
		t.Fatalf("expected retryable error, got %v", out.Err)
	}
	if out.Record.Make != "Audi" {
		t.Fatalf("filename fields should still be parsed, got %+v", out.Record)
	}
}

func TestHandleBoundsRetries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := New(cfg, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	missing := filepath.Join(cfg.Paths.MonitorDir, "gone.bin")
	for i := 0; i < maxAttempts+1; i++ {
		d.handle(context.Background(), watcher.Event{Path: missing})
	}
	if got := d.attempts[missing]; got != maxAttempts+1 {
		t.Fatalf("attempts = %d", got)
	}
	st := d.Status()
	if st.Failed != int64(maxAttempts+1) || st.LastStatus != string(history.StatusFailed) {
		t.Fatalf("unexpected status %#v", st)
	}
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := New(cfg, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !d.Status().Running {
		t.Fatal("expected daemon to report running")
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	other, err := New(cfg, logging.NewNop(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := other.Start(ctx); err == nil {
		other.Stop()
		t.Fatal("expected lock contention to prevent a second daemon")
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}
	if err := other.Start(ctx); err != nil {
		t.Fatalf("expected lock to be released, got %v", err)
	}
	other.Stop()
}

func TestDaemonFilesArrivingDump(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	d, err := New(cfg, logging.NewNop(), store)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	testsupport.WriteDump(t, cfg.Paths.MonitorDir, completeName, make([]byte, 512))
	want := filepath.Join(cfg.Paths.DestinationDir, "Audi", completeFolder, completeName)

	deadline := time.Now().Add(10 * time.Second)
	for {
		if _, err := os.Stat(want); err == nil && d.Status().Filed == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("dump was not filed; status %#v", d.Status())
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestStatusServer(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Watch.MetricsBind = "127.0.0.1:0"
	store := testsupport.MustOpenHistory(t, cfg)
	if err := store.Record(context.Background(), &history.Entry{SourcePath: "/a.bin", Status: history.StatusFiled}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	d, err := New(cfg, logging.NewNop(), store)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	base := "http://" + d.server.Addr()
	get := func(path string) (int, []byte) {
		t.Helper()
		resp, err := http.Get(base + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		return resp.StatusCode, body
	}

	code, body := get("/api/status")
	if code != http.StatusOK {
		t.Fatalf("status code = %d", code)
	}
	var st Status
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !st.Running || st.SessionID != d.SessionID() {
		t.Fatalf("unexpected status %#v", st)
	}

	code, body = get("/api/history?limit=5")
	if code != http.StatusOK || !strings.Contains(string(body), `"/a.bin"`) {
		t.Fatalf("history response %d: %s", code, body)
	}
	if code, _ = get("/api/history?limit=zero"); code != http.StatusBadRequest {
		t.Fatalf("expected bad request for invalid limit, got %d", code)
	}

	code, body = get("/metrics")
	if code != http.StatusOK || !strings.Contains(string(body), "ecufiler_dumps_seen_total") {
		t.Fatalf("metrics response %d missing counters", code)
	}
}

type recordingNotifier struct {
	events   []notifications.Event
	payloads []notifications.Payload
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	r.events = append(r.events, event)
	r.payloads = append(r.payloads, payload)
	return nil
}

func TestPipelinePublishesOutcomes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p := NewPipeline(cfg, logging.NewNop(), nil, "")
	rec := &recordingNotifier{}
	p.notifier = rec

	filed := testsupport.WriteDump(t, cfg.Paths.MonitorDir, completeName, []byte("x"))
	pending := testsupport.WriteDump(t, cfg.Paths.MonitorDir, flexName, []byte("y"))
	p.Handle(context.Background(), filed)
	p.Handle(context.Background(), pending)

	if len(rec.events) != 2 || rec.events[0] != notifications.EventFiled || rec.events[1] != notifications.EventPending {
		t.Fatalf("events = %v", rec.events)
	}
	if rec.payloads[0]["folder"] != completeFolder || rec.payloads[0]["dump"] != completeName {
		t.Fatalf("filed payload = %#v", rec.payloads[0])
	}
	if reason, _ := rec.payloads[1]["reason"].(string); !strings.Contains(reason, "make or model") {
		t.Fatalf("pending payload = %#v", rec.payloads[1])
	}
}
