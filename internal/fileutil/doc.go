// Package fileutil moves dumps between directories, falling back to a
// verified copy when source and destination are on different filesystems.
package fileutil
