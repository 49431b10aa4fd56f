// Package history persists a record of every dump the filer has handled.
//
// The store is a single SQLite database under the configured state
// directory. Each row captures where a dump came from, where it ended up,
// the merged identification record, and whether filing succeeded. The CLI
// reads it for `history recent` and `history search`; the daemon appends to
// it after every attempt.
package history
