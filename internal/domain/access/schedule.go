package access

import "strings"

// ScheduleEntry is one authorization window for a subject.
// Regular entries recur weekly and carry Weekday; makeup entries are one-off
// and carry SpecificDate.
type ScheduleEntry struct {
	// IsMakeup marks a one-off makeup session tied to a specific date.
	IsMakeup bool
	// Weekday is the weekday name for regular entries, e.g. "Tuesday".
	Weekday string
	// SpecificDate is the calendar date for makeup entries; zero otherwise.
	SpecificDate Date
	// Start is the inclusive window start.
	Start TimeOfDay
	// End is the inclusive window end.
	End TimeOfDay
}

// ScheduleMode selects which kind of entries an authorization call evaluates.
type ScheduleMode int

const (
	// ModeRegular evaluates weekday-recurring entries only.
	ModeRegular ScheduleMode = iota
	// ModeMakeup evaluates date-specific makeup entries only.
	ModeMakeup
)

// String returns a readable mode label for logs.
func (m ScheduleMode) String() string {
	if m == ModeMakeup {
		return "makeup"
	}

	return "regular"
}

// ModeFor decides the schedule mode for a subject's full entry list.
// A single makeup entry anywhere switches the subject to makeup-only
// evaluation for every authorization call.
func ModeFor(entries []ScheduleEntry) ScheduleMode {
	for _, e := range entries {
		if e.IsMakeup {
			return ModeMakeup
		}
	}

	return ModeRegular
}

// Matches reports whether the entry authorizes access at the given moment
// under the given mode. Entries of the other kind never match.
func (e ScheduleEntry) Matches(mode ScheduleMode, now Moment) bool {
	if e.IsMakeup != (mode == ModeMakeup) {
		return false
	}

	if e.IsMakeup {
		if e.SpecificDate.IsZero() || e.SpecificDate != now.Date {
			return false
		}
	} else {
		if e.Weekday == "" || !strings.EqualFold(e.Weekday, now.Weekday) {
			return false
		}
	}

	return now.Time.Within(e.Start, e.End)
}
