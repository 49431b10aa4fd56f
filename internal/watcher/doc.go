// Package watcher polls the monitor directory for newly arrived dumps.
//
// A file is reported once its size holds still across two samples taken a
// short interval apart, which keeps half-copied dumps away from the scanner.
// Each path is reported once while it stays in the directory; a path that
// disappears and comes back is reported again. An fsnotify watch on the
// directory shortens the wait after a write but the timed scan alone is
// enough for correctness.
package watcher
