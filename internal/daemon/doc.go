// Package daemon runs the watch loop that turns arriving dumps into filed
// folders.
//
// It wires the folder poller, the identification engine, the organizer, and
// the history store into a single lifecycle with flock-based locking so only
// one watcher owns a state directory. The same Pipeline backs the one-shot
// `file` command, so a dump filed by hand and one filed by the daemon leave
// identical traces. Prometheus metrics and a small JSON status endpoint are
// served when a bind address is configured.
package daemon
