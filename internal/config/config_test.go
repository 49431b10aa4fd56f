package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"ecufiler/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "ecufiler", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, "Desktop", "AutotunerFiles"); cfg.Paths.MonitorDir != want {
		t.Fatalf("monitor dir = %q, want %q", cfg.Paths.MonitorDir, want)
	}
	if want := filepath.Join(tempHome, "Desktop", "ECU_files"); cfg.Paths.DestinationDir != want {
		t.Fatalf("destination dir = %q, want %q", cfg.Paths.DestinationDir, want)
	}
	if cfg.PollInterval() != 2*time.Second {
		t.Fatalf("poll interval = %s", cfg.PollInterval())
	}
	if cfg.StableInterval() != 500*time.Millisecond {
		t.Fatalf("stable interval = %s", cfg.StableInterval())
	}
	if !cfg.Watch.AutoFile {
		t.Fatal("expected auto_file enabled by default")
	}
	if cfg.Organizer.LogFileName != "Log.txt" {
		t.Fatalf("log file name = %q", cfg.Organizer.LogFileName)
	}
	if cfg.HistoryPath() != filepath.Join(tempHome, ".local", "share", "ecufiler", "history.db") {
		t.Fatalf("history path = %q", cfg.HistoryPath())
	}
}

func TestLoadCustomPathNormalizesValues(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	contents := `
[paths]
monitor_dir = "~/incoming"
destination_dir = "~/archive"

[watch]
poll_interval = 0
extensions = ["BIN", ".ori", ".bin", " "]

[organizer]
log_file_name = "  "

[logging]
format = "JSON"
level = " DEBUG "
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.MonitorDir != filepath.Join(tempHome, "incoming") {
		t.Fatalf("monitor dir = %q", cfg.Paths.MonitorDir)
	}
	if cfg.Watch.PollInterval != 2 {
		t.Fatalf("poll interval = %d, want default", cfg.Watch.PollInterval)
	}
	if got := strings.Join(cfg.Watch.Extensions, ","); got != ".bin,.ori" {
		t.Fatalf("extensions = %q", got)
	}
	if !cfg.WatchesExtension(".BIN") || cfg.WatchesExtension(".txt") {
		t.Fatal("unexpected extension matching")
	}
	if cfg.Organizer.LogFileName != "Log.txt" {
		t.Fatalf("log file name = %q", cfg.Organizer.LogFileName)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nstaging_dir = \"/tmp\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() config.Config {
		cfg := config.Default()
		cfg.Paths.MonitorDir = "/data/in"
		cfg.Paths.DestinationDir = "/data/out"
		cfg.Paths.StateDir = "/data/state"
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"same dirs", func(c *config.Config) { c.Paths.DestinationDir = c.Paths.MonitorDir }, "must differ"},
		{"monitor inside destination", func(c *config.Config) { c.Paths.MonitorDir = "/data/out/in" }, "must not live inside"},
		{"metrics bind", func(c *config.Config) { c.Watch.MetricsBind = "nonsense" }, "watch.metrics_bind"},
		{"log file name", func(c *config.Config) { c.Organizer.LogFileName = "logs/Log.txt" }, "log_file_name"},
		{"log level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"ntfy topic", func(c *config.Config) { c.Notifications.NtfyTopic = "my-topic" }, "ntfy_topic"},
		{"missing destination", func(c *config.Config) { c.Paths.DestinationDir = "" }, "destination_dir"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tc.want)
			}
		})
	}

	cfg := base()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if decoded.Organizer.LogFileName != "Log.txt" {
		t.Fatalf("sample log file name = %q", decoded.Organizer.LogFileName)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample does not load: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.MonitorDir = filepath.Join(root, "in")
	cfg.Paths.DestinationDir = filepath.Join(root, "out")
	cfg.Paths.StateDir = filepath.Join(root, "state")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.MonitorDir, cfg.Paths.DestinationDir, cfg.LogDir()} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
