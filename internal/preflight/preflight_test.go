package preflight

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ecufiler/internal/config"
	"ecufiler/internal/history"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.MonitorDir = filepath.Join(base, "incoming")
	cfg.Paths.DestinationDir = filepath.Join(base, "filed")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	return &cfg
}

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckHistory(t *testing.T) {
	cfg := testConfig(t)

	if r := CheckHistory(cfg.HistoryPath()); !r.Passed || !strings.Contains(r.Detail, "will be created") {
		t.Fatalf("missing database should pass, got %#v", r)
	}

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	if err := store.Record(context.Background(), &history.Entry{SourcePath: "/a.bin"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	store.Close()

	if r := CheckHistory(cfg.HistoryPath()); !r.Passed {
		t.Fatalf("existing database should pass, got %#v", r)
	}
}

func TestCheckBind(t *testing.T) {
	if r := CheckBind("metrics", ""); !r.Passed || r.Detail != "disabled" {
		t.Fatalf("empty bind should be disabled, got %#v", r)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	if r := CheckBind("metrics", ln.Addr().String()); r.Passed {
		t.Fatalf("busy address should fail, got %#v", r)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testConfig(t)
	results := RunAll(cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Fatalf("check %s failed: %s", r.Name, r.Detail)
		}
	}
	if _, blocked := FirstBlocking(results); blocked {
		t.Fatal("expected no blocking failures")
	}

	cfg.Paths.MonitorDir = filepath.Join(t.TempDir(), "missing")
	r, blocked := FirstBlocking(RunAll(cfg))
	if !blocked || r.Name != "Monitor directory" {
		t.Fatalf("expected monitor directory to block, got %#v", r)
	}

	if RunAll(nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
