package access

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedTime is returned when a clock value is not a zero-padded
// 24-hour "HH:MM" string. Malformed times never authorize access.
var ErrMalformedTime = errors.New("malformed HH:MM time")

// ErrMalformedDate is returned when a calendar date is not a "YYYY-MM-DD" string.
var ErrMalformedDate = errors.New("malformed YYYY-MM-DD date")

// TimeOfDay is a minute-resolution clock value.
// The zero value is midnight, which is also the sentinel used by the
// force-close sweep.
type TimeOfDay struct {
	// minutes since midnight, 0..1439.
	minutes int
}

// ParseTimeOfDay parses a zero-padded 24-hour "HH:MM" string.
// Any deviation from the exact format yields ErrMalformedTime; values are
// never coerced.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	const layout = 5 // len("HH:MM")

	if len(s) != layout || s[2] != ':' {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return TimeOfDay{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
		}
	}

	hours := int(s[0]-'0')*10 + int(s[1]-'0')
	mins := int(s[3]-'0')*10 + int(s[4]-'0')

	if hours > 23 || mins > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	return TimeOfDay{minutes: hours*60 + mins}, nil
}

// Compare returns -1, 0 or 1 when t is before, equal to or after other.
func (t TimeOfDay) Compare(other TimeOfDay) int {
	switch {
	case t.minutes < other.minutes:
		return -1
	case t.minutes > other.minutes:
		return 1
	default:
		return 0
	}
}

// Within reports whether t falls inside [start, end], both ends inclusive.
func (t TimeOfDay) Within(start, end TimeOfDay) bool {
	return t.Compare(start) >= 0 && t.Compare(end) <= 0
}

// String renders the value back as a zero-padded "HH:MM" string.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.minutes/60, t.minutes%60)
}

// Date is a calendar date without time-of-day or location.
type Date struct {
	// Year is the four-digit year.
	Year int
	// Month is the month, 1..12.
	Month time.Month
	// Day is the day of month, 1..31.
	Day int
}

// ParseDate parses a "YYYY-MM-DD" string into a Date.
func ParseDate(s string) (Date, error) {
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}

	year, month, day := parsed.Date()

	return Date{Year: year, Month: month, Day: day}, nil
}

// DateOf extracts the calendar date from a time.Time in its location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()

	return Date{Year: year, Month: month, Day: day}
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String renders the date as "YYYY-MM-DD".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Moment is the backend's notion of "now": the calendar date, the weekday
// name as the schedule service spells it, and the wall-clock time.
type Moment struct {
	// Date is the current calendar date.
	Date Date
	// Weekday is the weekday name, e.g. "Tuesday". Compared case-insensitively.
	Weekday string
	// Time is the current wall-clock time.
	Time TimeOfDay
}
