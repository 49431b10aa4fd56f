package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ecufiler/internal/metadata"
	"ecufiler/internal/testsupport"
)

const (
	completeName   = "Audi_A4_20190101_EDC17_CP14_150hp_Bench.bin"
	completeFolder = "Audi_A4_20190101_EDC17_CP14_Bench"
	flexName       = "fomoco-bosch-EDC17C70-20250512093045-obd.bin"
)

func TestIdentifyJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	src := testsupport.WriteDump(t, env.cfg.Paths.MonitorDir, completeName, make([]byte, 256))

	out, _, err := runCLI(t, []string{"identify", "--format", "json", "--explain", src}, env.configPath)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	var views []struct {
		Path    string            `json:"path"`
		Dialect string            `json:"dialect"`
		Size    int64             `json:"size"`
		Record  map[string]string `json:"record"`
	}
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 result, got %d", len(views))
	}
	v := views[0]
	if v.Dialect != "legacy" || v.Size != 256 {
		t.Fatalf("unexpected view %#v", v)
	}
	if v.Record["make"] != "Audi" || v.Record["ecu"] != "EDC17 CP14" || v.Record["read_method"] != "Bench" {
		t.Fatalf("unexpected record %#v", v.Record)
	}
	if _, ok := v.Record["sw_version"]; !ok {
		t.Fatalf("record should carry every key, got %#v", v.Record)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("identify must not move the dump: %v", err)
	}
}

func TestIdentifyTableReportsUnreadableFile(t *testing.T) {
	env := setupCLITestEnv(t)
	missing := filepath.Join(env.cfg.Paths.MonitorDir, completeName)

	out, _, err := runCLI(t, []string{"identify", missing}, env.configPath)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	requireContains(t, out, completeName)
	requireContains(t, out, "[ERROR]")
	requireContains(t, out, "Audi")
}

func TestParseName(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"parse-name", flexName}, env.configPath)
	if err != nil {
		t.Fatalf("parse-name: %v", err)
	}
	requireContains(t, out, "flex")
	requireContains(t, out, "Ford")
	requireContains(t, out, "20250512")

	out, _, err = runCLI(t, []string{"parse-name", "--format", "yaml", completeName}, env.configPath)
	if err != nil {
		t.Fatalf("parse-name yaml: %v", err)
	}
	requireContains(t, out, "make: Audi")
	requireContains(t, out, "dialect: legacy")
}

func TestFileDryRunLeavesDump(t *testing.T) {
	env := setupCLITestEnv(t)
	src := testsupport.WriteDump(t, env.cfg.Paths.MonitorDir, completeName, []byte("dump"))

	out, _, err := runCLI(t, []string{"file", "--dry-run", src}, env.configPath)
	if err != nil {
		t.Fatalf("file --dry-run: %v", err)
	}
	requireContains(t, out, "Would file")
	requireContains(t, out, completeFolder)
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("dry run moved the dump: %v", err)
	}
	if _, err := os.Stat(env.cfg.HistoryPath()); !os.IsNotExist(err) {
		t.Fatalf("dry run should not create history, stat err = %v", err)
	}
}

func TestFileMovesDumpAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	src := testsupport.WriteDump(t, env.cfg.Paths.MonitorDir, completeName, []byte("dump"))

	out, _, err := runCLI(t, []string{"file", src}, env.configPath)
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	requireContains(t, out, "Filed "+completeName)
	dest := filepath.Join(env.cfg.Paths.DestinationDir, "Audi", completeFolder, completeName)
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected dump at %s: %v", dest, err)
	}

	out, _, err = runCLI(t, []string{"history", "recent"}, env.configPath)
	if err != nil {
		t.Fatalf("history recent: %v", err)
	}
	requireContains(t, out, "filed")
	requireContains(t, out, completeFolder)

	out, _, err = runCLI(t, []string{"folders", "--make", "audi"}, env.configPath)
	if err != nil {
		t.Fatalf("folders: %v", err)
	}
	requireContains(t, out, completeFolder)
}

func TestFileIncompleteRecordFailsUntilOverridden(t *testing.T) {
	env := setupCLITestEnv(t)
	src := testsupport.WriteDump(t, env.cfg.Paths.MonitorDir, flexName, []byte("payload"))

	_, _, err := runCLI(t, []string{"file", src}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "pending") {
		t.Fatalf("expected pending error, got %v", err)
	}
	if _, statErr := os.Stat(src); statErr != nil {
		t.Fatalf("pending dump should stay put: %v", statErr)
	}

	out, _, err := runCLI(t, []string{"file", "--model", "Focus", "--registration", "fo12 cus", src}, env.configPath)
	if err != nil {
		t.Fatalf("file with overrides: %v", err)
	}
	requireContains(t, out, "Ford_Focus_20250512")
	requireContains(t, out, "_FO12_CUS")

	out, _, err = runCLI(t, []string{"history", "search", "--status", "pending", "--format", "json"}, env.configPath)
	if err != nil {
		t.Fatalf("history search: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode history %q: %v", out, err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one pending entry, got %#v", entries)
	}
	if reason, _ := entries[0]["error"].(string); reason == "" {
		t.Fatalf("expected one pending entry with a reason, got %#v", entries)
	}
}

func TestFileRejectsUnknownReadMethod(t *testing.T) {
	env := setupCLITestEnv(t)
	src := testsupport.WriteDump(t, env.cfg.Paths.MonitorDir, completeName, []byte("dump"))

	_, _, err := runCLI(t, []string{"file", "--read-method", "jtag", src}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "unknown read method") {
		t.Fatalf("expected read method error, got %v", err)
	}
}

func TestFoldersRequiresTerm(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"folders"}, env.configPath); err == nil {
		t.Fatal("expected error without search terms")
	}
}

func TestHistoryClearAndReset(t *testing.T) {
	env := setupCLITestEnv(t)
	src := testsupport.WriteDump(t, env.cfg.Paths.MonitorDir, completeName, []byte("dump"))
	if _, _, err := runCLI(t, []string{"file", src}, env.configPath); err != nil {
		t.Fatalf("file: %v", err)
	}

	out, _, err := runCLI(t, []string{"history", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 history entries")

	out, _, err = runCLI(t, []string{"history", "recent"}, env.configPath)
	if err != nil {
		t.Fatalf("history recent: %v", err)
	}
	requireContains(t, out, "No history entries")

	out, _, err = runCLI(t, []string{"history", "clear", "--reset"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear --reset: %v", err)
	}
	requireContains(t, out, "Removed history database")
	if _, err := os.Stat(env.cfg.HistoryPath()); !os.IsNotExist(err) {
		t.Fatalf("database should be gone, stat err = %v", err)
	}
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistoryDisabled())
	_, _, err := runCLI(t, []string{"history", "recent"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestHistorySearchRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"history", "search", "--status", "lost"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if _, _, err := runCLI(t, []string{"history", "search", "--since", "last week"}, env.configPath); err == nil {
		t.Fatal("expected error for bad --since")
	}
}

func TestParseSince(t *testing.T) {
	now := time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC)
	got, err := parseSince("48h", now)
	if err != nil || !got.Equal(now.Add(-48*time.Hour)) {
		t.Fatalf("parseSince(48h) = %v, %v", got, err)
	}
	got, err = parseSince("2024-03-01", now)
	if err != nil || got.Year() != 2024 || got.Month() != time.March || got.Day() != 1 {
		t.Fatalf("parseSince(date) = %v, %v", got, err)
	}
	got, err = parseSince("", now)
	if err != nil || !got.IsZero() {
		t.Fatalf("parseSince(empty) = %v, %v", got, err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Monitor directory")
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config exists without --overwrite")
	}
}

func TestFieldLabel(t *testing.T) {
	cases := map[string]string{
		"make":            "Make",
		"ecu":             "ECU",
		"bosch_variant":   "Bosch Variant",
		"oem_sw_number":   "OEM SW Number",
		"engine_code":     "Engine Code",
		"registration":    "Registration",
		"bosch_sw_number": "Bosch SW Number",
	}
	for field, want := range cases {
		if got := fieldLabel(metadata.Field(field)); got != want {
			t.Fatalf("fieldLabel(%q) = %q, want %q", field, got, want)
		}
	}
}

func TestTestNotify(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"test-notify"}, env.configPath); err == nil {
		t.Fatal("expected error without a topic")
	}

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	env.cfg.Notifications.NtfyTopic = server.URL
	writeTestConfig(t, env.configPath, env.cfg)
	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 ntfy call, got %d", got)
	}
}

func TestStatusShowsChecksAndRecent(t *testing.T) {
	env := setupCLITestEnv(t)
	src := testsupport.WriteDump(t, env.cfg.Paths.MonitorDir, flexName, []byte("payload"))
	if _, _, err := runCLI(t, []string{"file", src}, env.configPath); err == nil {
		t.Fatal("expected incomplete dump to stay pending")
	}

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "not running")
	requireContains(t, out, "Monitor directory")
	requireContains(t, out, "== Recent ==")
	requireContains(t, out, flexName)
	requireContains(t, out, "[WARN]")
}

func TestLogsPrintsTrailingLines(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"logs"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "No log lines")

	logPath := filepath.Join(env.cfg.LogDir(), "ecufiler.log")
	content := "INFO first\nWARN second\nINFO third\n"
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	out, _, err = runCLI(t, []string{"logs", "-n", "2", "--level", "info"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.TrimSpace(out) != "INFO first\nINFO third" {
		t.Fatalf("unexpected logs output %q", out)
	}
}
