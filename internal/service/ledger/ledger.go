package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/prolock/prolock-controller/internal/domain/access"
	"github.com/prolock/prolock-controller/internal/logger"
)

// ToggleResult reports which way an attendance toggle went.
type ToggleResult int

const (
	// CheckedIn means a new session was opened.
	CheckedIn ToggleResult = iota + 1
	// CheckedOut means the subject's open session was closed.
	CheckedOut
)

// String returns a readable result label.
func (r ToggleResult) String() string {
	if r == CheckedOut {
		return "checked_out"
	}

	return "checked_in"
}

// Store is the subset of the backend the ledger depends on.
type Store interface {
	OpenRecord(ctx context.Context, subject *access.Subject) (*access.AttendanceRecord, error)
	RecordTimeIn(ctx context.Context, subject *access.Subject, timeIn access.TimeOfDay) error
	RecordTimeOut(ctx context.Context, channel access.Channel, key string, timeOut access.TimeOfDay) error
	OpenRecords(ctx context.Context) ([]access.AttendanceRecord, error)
}

// Ledger tracks per-subject open/closed attendance state in the remote
// store. It is the sole component issuing attendance mutations.
type Ledger struct {
	// store performs the remote attendance calls.
	store Store
	// mu serializes toggles; the open-record check and the following
	// mutation must not interleave across channels.
	mu sync.Mutex
}

// New creates a ledger backed by the provided attendance store.
func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// Toggle opens a session for the subject, or closes the open one.
//
// Closing additionally sweeps the whole system: every open record,
// whoever it belongs to, is force-closed with the sentinel time-out. One
// authorized check-out means "session ended" globally.
//
// Errors before the first mutation fail closed: nothing is written and the
// caller must deny. Sweep failures are logged but do not undo the
// already-recorded check-out.
func (l *Ledger) Toggle(ctx context.Context, subject *access.Subject, now access.Moment) (ToggleResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	open, err := l.store.OpenRecord(ctx, subject)
	if err != nil {
		return 0, fmt.Errorf("check open record: %w", err)
	}

	if !open.Open() {
		if err := l.store.RecordTimeIn(ctx, subject, now.Time); err != nil {
			return 0, fmt.Errorf("record time-in: %w", err)
		}

		logger.InfoKV(ctx, "Checked in", "name", subject.Name, "time_in", now.Time.String())

		return CheckedIn, nil
	}

	if err := l.store.RecordTimeOut(ctx, subject.Channel, subject.Key, now.Time); err != nil {
		return 0, fmt.Errorf("record time-out: %w", err)
	}

	logger.InfoKV(ctx, "Checked out", "name", subject.Name, "time_out", now.Time.String())

	l.sweep(ctx)

	return CheckedOut, nil
}

// sweep force-closes every open record system-wide with the sentinel
// time-out. Best effort: individual failures are logged and skipped.
func (l *Ledger) sweep(ctx context.Context) {
	open, err := l.store.OpenRecords(ctx)
	if err != nil {
		logger.WarnKV(ctx, "Sweep skipped, cannot list open records", "error", err)

		return
	}

	closed := 0

	for _, rec := range open {
		if err := l.store.RecordTimeOut(ctx, rec.Channel, rec.SubjectKey, access.SentinelTimeOut); err != nil {
			logger.WarnKV(ctx, "Sweep failed to close record",
				"key", rec.SubjectKey, "error", err)

			continue
		}

		closed++
	}

	if closed > 0 {
		logger.InfoKV(ctx, "Swept dangling sessions",
			"closed", closed, "sentinel", access.SentinelTimeOut.String())
	}
}
