package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/prolock/prolock-controller/internal/domain/access"
	"github.com/prolock/prolock-controller/internal/journal"
	"github.com/prolock/prolock-controller/internal/logger"
	"github.com/prolock/prolock-controller/internal/present"
	"github.com/prolock/prolock-controller/internal/service/ledger"
	"github.com/prolock/prolock-controller/internal/service/schedule"
)

// Identifier resolves a raw scan to a known subject.
type Identifier interface {
	Resolve(ctx context.Context, channel access.Channel, raw string) (*access.Subject, error)
}

// Gatekeeper decides whether a subject may pass right now.
type Gatekeeper interface {
	Authorize(ctx context.Context, subject *access.Subject, now access.Moment) (schedule.Decision, error)
}

// Attendance toggles a subject between checked-in and checked-out.
type Attendance interface {
	Toggle(ctx context.Context, subject *access.Subject, now access.Moment) (ledger.ToggleResult, error)
}

// DoorControl is the slice of the lock controller the pipeline drives.
type DoorControl interface {
	AuthorizedCheckIn(ctx context.Context)
	AuthorizedCheckOut(ctx context.Context)
	RecordFailure(ctx context.Context, channel access.Channel) bool
	RecordSuccess(ctx context.Context, channel access.Channel)
}

// TimeSource provides the authoritative server clock.
type TimeSource interface {
	CurrentMoment(ctx context.Context) (access.Moment, error)
}

// Feed supplies the recent attendance rows shown after each scan.
type Feed interface {
	RecentRecords(ctx context.Context) ([]access.AttendanceRecord, error)
}

// Auditor persists scan decisions.
type Auditor interface {
	Record(ctx context.Context, entry journal.Entry) error
}

// Deps lists the collaborators a pipeline is wired with.
type Deps struct {
	// Identity resolves raw scans to subjects.
	Identity Identifier
	// Schedule authorizes subjects against their schedules.
	Schedule Gatekeeper
	// Attendance records check-ins and check-outs.
	Attendance Attendance
	// Door owns lock state, override and failure counters.
	Door DoorControl
	// Clock provides the server-side current moment.
	Clock TimeSource
	// Feed provides recent attendance rows for display.
	Feed Feed
	// Audit journals every scan decision.
	Audit Auditor
	// Presenter shows messages and attendance rows at the door.
	Presenter present.Presenter
	// Station names this controller in journal entries.
	Station string
}

// Pipeline processes scans from any number of capture channels.
type Pipeline struct {
	deps Deps
}

// New creates a pipeline with the given collaborators.
func New(deps Deps) *Pipeline {
	return &Pipeline{deps: deps}
}

// Run drives one capturer until the context is canceled. Capture faults are
// logged and retried; nothing short of cancellation stops the loop.
func (p *Pipeline) Run(ctx context.Context, capturer Capturer) error {
	channel := capturer.Channel()
	ctx = logger.WithKV(ctx, "channel", string(channel))

	logger.InfoKV(ctx, "Scan loop started", "cooldown", capturer.Cooldown().String())

	for {
		raw, err := capturer.Capture(ctx)

		switch {
		case ctx.Err() != nil:
			logger.Info(ctx, "Context canceled, exiting scan loop")
			return nil
		case errors.Is(err, ErrUnmatched):
			p.denyUnknown(ctx, channel, raw)
		case err != nil:
			logger.ErrorKV(ctx, "Capture failed", "error", err)
		default:
			p.HandleScan(ctx, channel, raw)
		}

		if err = sleepFor(ctx, capturer.Cooldown()); err != nil {
			logger.Info(ctx, "Context canceled, exiting scan loop")
			return nil
		}
	}
}

// HandleScan runs one resolved capture through the full decision sequence.
func (p *Pipeline) HandleScan(ctx context.Context, channel access.Channel, raw string) {
	subject, err := p.deps.Identity.Resolve(ctx, channel, raw)
	if err != nil {
		p.denyUnknown(ctx, channel, raw)

		return
	}

	// A recognized credential ends the channel's failure streak even if
	// the schedule later denies it.
	p.deps.Door.RecordSuccess(ctx, channel)
	ctx = logger.WithKV(ctx, "subject", subject.Key)

	now, err := p.deps.Clock.CurrentMoment(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Current moment unavailable, denying", "error", err)
		p.deny(ctx, channel, raw, subject.Name, "Time service unavailable. Try again.")

		return
	}

	decision, err := p.deps.Schedule.Authorize(ctx, subject, now)
	if err != nil {
		logger.ErrorKV(ctx, "Schedule check failed, denying", "error", err)
		p.deny(ctx, channel, raw, subject.Name, "Schedule service unavailable. Try again.")

		return
	}

	if decision != schedule.Allowed {
		p.deny(ctx, channel, raw, subject.Name, "Access denied. No active schedule.")

		return
	}

	result, err := p.deps.Attendance.Toggle(ctx, subject, now)
	if err != nil {
		logger.ErrorKV(ctx, "Attendance toggle failed, denying", "error", err)
		p.deny(ctx, channel, raw, subject.Name, "Attendance service unavailable. Try again.")

		return
	}

	var message, outcome string

	switch result {
	case ledger.CheckedIn:
		p.deps.Door.AuthorizedCheckIn(ctx)

		message = fmt.Sprintf("Welcome, %s! Door unlocked.", subject.Name)
		outcome = journal.DecisionCheckedIn
	case ledger.CheckedOut:
		p.deps.Door.AuthorizedCheckOut(ctx)

		message = fmt.Sprintf("Goodbye, %s! Door locked.", subject.Name)
		outcome = journal.DecisionCheckedOut
	}

	p.deps.Presenter.Present(ctx, message, present.SeverityInfo)
	p.audit(ctx, channel, raw, subject.Name, outcome, message)
	p.showRecent(ctx)
}

// denyUnknown handles a scan that resolved to nobody. It advances the
// channel's failure streak, which may fire the alarm.
func (p *Pipeline) denyUnknown(ctx context.Context, channel access.Channel, raw string) {
	fired := p.deps.Door.RecordFailure(ctx, channel)

	message := "Access denied. Credential not recognized."
	if fired {
		message = "Access denied. Repeated failures, alarm sounded."
	}

	p.deps.Presenter.Present(ctx, message, present.SeverityDenied)
	p.audit(ctx, channel, raw, "", journal.DecisionUnknown, message)
}

// deny refuses a recognized subject without touching the failure streak.
func (p *Pipeline) deny(ctx context.Context, channel access.Channel, raw, name, message string) {
	p.deps.Presenter.Present(ctx, message, present.SeverityDenied)
	p.audit(ctx, channel, raw, name, journal.DecisionDenied, message)
}

// audit journals one decision. Journal faults are logged, never surfaced to
// the door; the access decision has already been made.
func (p *Pipeline) audit(ctx context.Context, channel access.Channel, raw, name, decision, message string) {
	entry := journal.Entry{
		Station:     p.deps.Station,
		Channel:     channel,
		RawKey:      raw,
		SubjectName: name,
		Decision:    decision,
		Message:     message,
	}

	if err := p.deps.Audit.Record(ctx, entry); err != nil {
		logger.ErrorKV(ctx, "Journal write failed", "decision", decision, "error", err)
	}
}

// showRecent refreshes the attendance rows on the door display. Best effort.
func (p *Pipeline) showRecent(ctx context.Context) {
	rows, err := p.deps.Feed.RecentRecords(ctx)
	if err != nil {
		logger.WarnKV(ctx, "Recent records unavailable", "error", err)

		return
	}

	p.deps.Presenter.RenderAttendanceRows(ctx, rows)
}
