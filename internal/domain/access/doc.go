// Package access contains core domain types for the access-control business logic.
//
// It defines Subject (a person resolved from a scan), ScheduleEntry (a
// regular or makeup authorization window), AttendanceRecord (one time-in /
// time-out session), TimeOfDay (a validated minute-resolution clock value)
// and Moment (the backend's notion of "now"). All types are plain values
// with no behavior beyond validation and comparison.
package access
