// Package logs reads the daemon log file for `ecufiler logs`.
//
// Last returns the final N lines with bounded memory, ReadFrom resumes from a
// byte offset, and Follow streams appended lines until its context ends.
package logs
