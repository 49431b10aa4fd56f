// Package metadata defines the records produced by the extraction engine.
//
// Filename holds the vehicle fields recovered from a dump's filename, Binary
// holds the identification fields recovered from the dump's bytes, and Record
// is the merged view handed to the CLI, the organizer, and the history store.
// Every field is a plain string; absent values are empty strings, never nil.
package metadata
