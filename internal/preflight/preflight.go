package preflight

import (
	"ecufiler/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Detail   string
	Blocking bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	monitor := CheckDirectoryAccess("Monitor directory", cfg.Paths.MonitorDir)
	monitor.Blocking = true
	state := CheckDirectoryAccess("State directory", cfg.Paths.StateDir)
	state.Blocking = true

	results := []Result{
		monitor,
		CheckDirectoryAccess("Destination directory", cfg.Paths.DestinationDir),
		state,
	}
	if cfg.History.Enabled {
		hist := CheckHistory(cfg.HistoryPath())
		hist.Blocking = true
		results = append(results, hist)
	}
	if cfg.Watch.MetricsBind != "" {
		results = append(results, CheckBind("Metrics listener", cfg.Watch.MetricsBind))
	}
	return results
}

// FirstBlocking returns the first failed check that should stop the daemon.
func FirstBlocking(results []Result) (Result, bool) {
	for _, r := range results {
		if r.Blocking && !r.Passed {
			return r, true
		}
	}
	return Result{}, false
}
