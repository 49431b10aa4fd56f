package history

import (
	"strings"
	"time"

	"ecufiler/internal/metadata"
)

// Status is the outcome of handling one dump.
type Status string

const (
	// StatusFiled means the dump was moved into the destination tree.
	StatusFiled Status = "filed"
	// StatusPending means the dump was identified but left in place, usually
	// because make or model could not be determined.
	StatusPending Status = "pending"
	// StatusFailed means filing hit an I/O error.
	StatusFailed Status = "failed"
)

// ParseStatus accepts a status name case-insensitively. The empty string
// yields the empty status, which matches everything in a Filter.
func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return "", true
	case StatusFiled:
		return StatusFiled, true
	case StatusPending:
		return StatusPending, true
	case StatusFailed:
		return StatusFailed, true
	}
	return "", false
}

// Entry is one row of filing history.
type Entry struct {
	ID         int64
	SourcePath string
	DestPath   string
	FolderName string
	Record     metadata.Record
	Status     Status
	Error      string
	SessionID  string
	FiledAt    time.Time
}

// Filter narrows a history search. Empty fields match everything.
type Filter struct {
	// Query matches make, model, ECU, or registration as a substring.
	Query        string
	Make         string
	Registration string
	Status       Status
	Since        time.Time
	Limit        int
}
