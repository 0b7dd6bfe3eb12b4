package access

import (
	"errors"
	"fmt"
	"strings"
)

// SentinelTimeOut is the time-out value written by the force-close sweep.
// The backend treats "00:00" as "session ended without a proper check-out".
//
//nolint:gochecknoglobals // Shared sentinel constant, never mutated.
var SentinelTimeOut = TimeOfDay{}

// AttendanceRecord is one time-in / time-out session for a subject.
// A record with no time-out is "open": the subject is currently inside.
type AttendanceRecord struct {
	// Channel is the input channel the session was opened on.
	Channel Channel
	// SubjectKey is the raw identifier of the subject within the channel.
	SubjectKey string
	// SubjectName is the display name captured at check-in.
	SubjectName string
	// Date is the calendar date the session belongs to.
	Date Date
	// TimeIn is when the subject checked in.
	TimeIn TimeOfDay
	// TimeOut is when the subject checked out; nil while the session is open.
	TimeOut *TimeOfDay
}

// Open reports whether the record has a time-in but no time-out yet.
func (r *AttendanceRecord) Open() bool {
	return r != nil && r.TimeOut == nil
}

// RemoteStatus is the door status reported by the backend's latest log entry.
type RemoteStatus int

const (
	// StatusClose means the backend wants the door locked.
	StatusClose RemoteStatus = iota
	// StatusOpen means the backend wants the door unlocked.
	StatusOpen
)

// ErrUnknownStatus is returned when the backend reports a status label
// that is neither "open" nor "close".
var ErrUnknownStatus = errors.New("unknown remote status")

// ParseRemoteStatus maps the backend's status label to a RemoteStatus.
func ParseRemoteStatus(s string) (RemoteStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open":
		return StatusOpen, nil
	case "close":
		return StatusClose, nil
	default:
		return StatusClose, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// String returns the backend's label for the status.
func (s RemoteStatus) String() string {
	if s == StatusOpen {
		return "open"
	}

	return "close"
}
