package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Status is the workflow state of a task.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusPending
	StatusInProgress
	StatusDone
)

// Stored labels. Existing documents use these exact strings.
const (
	LabelPending    = "Belum Dikerjakan"
	LabelInProgress = "Progress"
	LabelDone       = "Selesai"
)

// Statuses lists the known states in presentation order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusDone}

// Label returns the stored label. Unknown statuses have an empty label.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return LabelPending
	case StatusInProgress:
		return LabelInProgress
	case StatusDone:
		return LabelDone
	default:
		return ""
	}
}

func (s Status) String() string {
	if l := s.Label(); l != "" {
		return l
	}
	return "unknown"
}

// Rank orders statuses for presentation: Pending < InProgress < Done < Unknown.
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInProgress:
		return 1
	case StatusDone:
		return 2
	default:
		return 3
	}
}

// IsDone reports whether the task counts as completed.
func (s Status) IsDone() bool {
	return s == StatusDone
}

// ParseStatus maps a stored label to a Status. Comparison is done on the
// normalized (trimmed, lower-cased) label; anything unrecognized is StatusUnknown.
func ParseStatus(raw string) Status {
	switch NormalizeStatus(raw) {
	case strings.ToLower(LabelPending):
		return StatusPending
	case strings.ToLower(LabelInProgress):
		return StatusInProgress
	case strings.ToLower(LabelDone):
		return StatusDone
	default:
		return StatusUnknown
	}
}

// NormalizeStatus lower-cases and trims a raw status label.
func NormalizeStatus(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Value stores the status as its label.
func (s Status) Value() (driver.Value, error) {
	return s.Label(), nil
}

// Scan reads a stored label.
func (s *Status) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = StatusUnknown
	case string:
		*s = ParseStatus(v)
	case []byte:
		*s = ParseStatus(string(v))
	default:
		return fmt.Errorf("scan status: unsupported type %T", src)
	}
	return nil
}
