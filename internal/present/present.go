// Package present defines the outcome-presentation contract consumed by the
// scan pipelines and a console sink backed by the project logger.
//
// A graphical door panel, when attached, implements the same contract; the
// core only emits a message with a severity and, after each toggle, the
// refreshed attendance rows.
package present

import (
	"context"

	"github.com/prolock/prolock-controller/internal/domain/access"
	"github.com/prolock/prolock-controller/internal/logger"
)

// Severity classifies a presented message.
type Severity int

const (
	// SeverityInfo marks successful outcomes (check-in, check-out).
	SeverityInfo Severity = iota
	// SeverityDenied marks denials and failed matches.
	SeverityDenied
)

// String returns a readable severity label.
func (s Severity) String() string {
	if s == SeverityDenied {
		return "denied"
	}

	return "info"
}

// Presenter renders scan outcomes for the person at the door.
type Presenter interface {
	// Present shows a message with the given severity.
	Present(ctx context.Context, message string, severity Severity)

	// RenderAttendanceRows refreshes the recent-attendance table.
	RenderAttendanceRows(ctx context.Context, rows []access.AttendanceRecord)
}

// Console is a Presenter that writes to the structured log. It stands in
// for the station display when the daemon runs headless.
type Console struct{}

// Present logs the message at a level matching its severity.
func (Console) Present(ctx context.Context, message string, severity Severity) {
	if severity == SeverityDenied {
		logger.WarnKV(ctx, message, "severity", severity.String())

		return
	}

	logger.InfoKV(ctx, message, "severity", severity.String())
}

// RenderAttendanceRows logs a compact summary of the recent rows.
func (Console) RenderAttendanceRows(ctx context.Context, rows []access.AttendanceRecord) {
	for _, row := range rows {
		timeOut := "-"
		if row.TimeOut != nil {
			timeOut = row.TimeOut.String()
		}

		logger.InfoKV(ctx, "Attendance row",
			"date", row.Date.String(),
			"name", row.SubjectName,
			"time_in", row.TimeIn.String(),
			"time_out", timeOut,
		)
	}
}
