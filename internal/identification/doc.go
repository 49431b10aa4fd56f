// Package identification is the entry point of the extraction engine.
//
// An Identifier parses a dump's filename, scans its bytes, and merges both
// into a metadata.Record. Identification is total: an unreadable or empty
// file still produces a record carrying every key, with the binary fields
// left empty and the read error reported alongside for logging.
package identification
