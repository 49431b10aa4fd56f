// Package logging assembles structured slog loggers and formatting helpers used
// across ecufiler.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so watch and filing code can tag
// log lines with the dump being processed, the pipeline stage, and the daemon
// session. The package also provides a no-op logger for tests and wiring code
// that cannot fail.
//
// Log output goes to stderr so command output on stdout stays machine-readable.
package logging
