package testsupport

import (
	"path/filepath"
	"testing"

	"ecufiler/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Poll timings are shortened so watcher tests finish quickly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.MonitorDir = filepath.Join(base, "incoming")
	cfgVal.Paths.DestinationDir = filepath.Join(base, "filed")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Watch.PollInterval = 1
	cfgVal.Watch.StableIntervalMS = 10

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithAutoFile toggles automatic filing on the test config.
func WithAutoFile(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Watch.AutoFile = enabled
	}
}

// WithRegistrationReuse enables filing into an existing registration folder.
func WithRegistrationReuse() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organizer.ReuseRegistrationFolder = true
	}
}

// WithHistoryDisabled turns off the history store.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
